package usecase

import (
	"time"

	"storefront/internal/domain/model"
)

type CategoryOutput struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type ReviewOutput struct {
	ID        int64     `json:"id"`
	User      int64     `json:"user"`
	Product   int64     `json:"product"`
	Name      string    `json:"name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// 商品のレスポンス（priceは小数2桁の文字列）
type ProductOutput struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       string          `json:"price"`
	Stock       int64           `json:"stock"`
	Image       string          `json:"image"`
	ImageURL    *string         `json:"image_url"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	Category    *CategoryOutput `json:"category"`
	Rating      float64         `json:"rating"`
	NumReviews  int64           `json:"numReviews"`
	Reviews     []ReviewOutput  `json:"reviews"`
}

func toCategoryOutput(c model.Category) CategoryOutput {
	return CategoryOutput{ID: c.ID, Name: c.Name, Slug: c.Slug}
}

func toReviewOutput(r model.Review) ReviewOutput {
	return ReviewOutput{
		ID:        r.ID,
		User:      r.UserID,
		Product:   r.ProductID,
		Name:      r.Name,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}

func toProductOutput(p model.Product, mediaBaseURL string) ProductOutput {
	out := ProductOutput{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		Stock:       p.Stock,
		Image:       p.Image,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		Rating:      p.Rating,
		NumReviews:  p.NumReviews,
		Reviews:     make([]ReviewOutput, 0, len(p.Reviews)),
	}
	if p.Image != "" {
		url := mediaBaseURL + p.Image
		out.ImageURL = &url
	}
	if p.Category != nil {
		c := toCategoryOutput(*p.Category)
		out.Category = &c
	}
	for _, r := range p.Reviews {
		out.Reviews = append(out.Reviews, toReviewOutput(r))
	}
	return out
}
