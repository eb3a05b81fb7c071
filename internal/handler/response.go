package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Detail string `json:"detail"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Detail: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: "internal error"})
}

// ハンドラ外（ルーティング・ミドルウェア）で起きたエラーも同じ形で返す
func HTTPErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		msg := "internal error"

		var ee *echo.HTTPError
		if he, ok := usecase.AsHTTPError(err); ok {
			status, msg = he.Status, he.Message
		} else if errors.As(err, &ee) {
			status = ee.Code
			msg = fmt.Sprint(ee.Message)
		} else {
			log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, ErrorResponse{Detail: msg})
		}
		if werr != nil {
			log.Error("write error response failed", zap.Error(werr))
		}
	}
}

func getUserIDFromContext(c echo.Context) (int64, bool) {
	id, ok := c.Get(middleware.CtxUserIDKey).(int64)
	if !ok || id <= 0 {
		return 0, false
	}
	return id, true
}

// パスの:idを正の整数として読む。読めなければ404（存在しないリソース扱い）
func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, usecase.NewHTTPError(http.StatusNotFound, "not found")
	}
	return id, nil
}

// Bind + Validate
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return usecase.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	return nil
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{Detail: "unauthorized"})
}
