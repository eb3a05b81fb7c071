package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminUserHandler struct {
	authUC  *usecase.AuthUsecase
	auditUC *usecase.AuditLogUsecase
}

func NewAdminUserHandler(authUC *usecase.AuthUsecase, auditUC *usecase.AuditLogUsecase) *AdminUserHandler {
	return &AdminUserHandler{authUC: authUC, auditUC: auditUC}
}

func (h *AdminUserHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	// /api/admin 配下は全部「JWT必須 + token_version一致 + ADMIN限定」
	admin := e.Group(
		"/api/admin",
		middleware.AuthJWT(cfg),
		middleware.TokenVersionGuard(userRepo),
		middleware.AdminRoleGuard(),
	)

	admin.POST("/users/:id/force-logout/", h.forceLogout)
	admin.GET("/audit-logs/", h.listAuditLogs)
}

func (h *AdminUserHandler) forceLogout(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	targetID, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	res, err := h.authUC.ForceLogout(c.Request().Context(), adminID, targetID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// ?action=&resource_type=&resource_id=&actor_user_id=&limit=&offset=
func (h *AdminUserHandler) listAuditLogs(c echo.Context) error {
	filter := repository.AuditLogFilter{Limit: 50}

	if v := c.QueryParam("action"); v != "" {
		a := model.AuditAction(v)
		filter.Action = &a
	}
	if v := c.QueryParam("resource_type"); v != "" {
		rt := model.AuditResourceType(v)
		filter.ResourceType = &rt
	}
	if v, ok := queryInt64(c, "resource_id"); ok {
		filter.ResourceID = &v
	}
	if v, ok := queryInt64(c, "actor_user_id"); ok {
		filter.ActorUserID = &v
	}
	if v, ok := queryInt64(c, "limit"); ok && v <= 200 {
		filter.Limit = int(v)
	}
	if v, ok := queryInt64(c, "offset"); ok {
		filter.Offset = int(v)
	}

	logs, err := h.auditUC.List(c.Request().Context(), filter)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}

// 0以上の整数として読めたときだけok
func queryInt64(c echo.Context, name string) (int64, bool) {
	v, err := strconv.ParseInt(c.QueryParam(name), 10, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
