package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/config"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/products, /api/categories の公開API（レビュー投稿だけ認証必須）
type ProductHandler struct {
	uc       *usecase.ProductUsecase
	reviewUC *usecase.ReviewUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase, reviewUC *usecase.ReviewUsecase) *ProductHandler {
	return &ProductHandler{uc: uc, reviewUC: reviewUC}
}

// DRFのPageNumberPaginationと同じ形
type ProductListResponse struct {
	Count    int64                   `json:"count"`
	Next     *string                 `json:"next"`
	Previous *string                 `json:"previous"`
	Results  []usecase.ProductOutput `json:"results"`
}

type CreateReviewRequest struct {
	Rating  *int   `json:"rating"`
	Comment string `json:"comment" validate:"max=5000"`
}

// 公開商品のルートを登録
func (h *ProductHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	api := e.Group("/api")
	api.GET("/products/", h.list)
	api.GET("/products/:id/", h.detail)
	api.GET("/categories/", h.categories)

	api.POST("/products/:id/reviews/", h.createReview,
		middleware.AuthJWT(cfg),
		middleware.TokenVersionGuard(userRepo),
	)
}

func (h *ProductHandler) list(c echo.Context) error {
	// page（default 1）。数値でなければ404
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusNotFound, ErrorResponse{Detail: "invalid page"})
		}
		page = p
	}

	// page_size（不正値は無視して設定値）
	pageSize := 0
	if v := c.QueryParam("page_size"); v != "" {
		if s, err := strconv.Atoi(v); err == nil && s > 0 {
			pageSize = s
		}
	}

	out, err := h.uc.ListProducts(c.Request().Context(), usecase.ListProductsInput{
		Keyword:  c.QueryParam("keyword"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return writeError(c, err)
	}

	res := ProductListResponse{Count: out.Count, Results: out.Results}
	if out.HasNext {
		res.Next = pageURL(c, out.Page+1)
	}
	if out.HasPrev {
		res.Previous = pageURL(c, out.Page-1)
	}
	return c.JSON(http.StatusOK, res)
}

// 今のURLのpageだけ差し替えた絶対URL（1ページ目はpageを外す）
func pageURL(c echo.Context, page int) *string {
	u := *c.Request().URL
	q := u.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	s := c.Scheme() + "://" + c.Request().Host + u.RequestURI()
	return &s
}

func (h *ProductHandler) detail(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	p, err := h.uc.GetProductDetail(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) categories(c echo.Context) error {
	out, err := h.uc.ListCategories(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) createReview(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	productID, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	var req CreateReviewRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	out, err := h.reviewUC.CreateReview(c.Request().Context(), userID, productID, usecase.CreateReviewInput{
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}
