package seed

import (
	"context"
	"fmt"

	"storefront/internal/domain/model"
	"storefront/internal/usecase"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	DevUsername = "devuser"
	DevPassword = "devpass123"

	AdminUsername = "admin"
)

type Options struct {
	// 空ならadminユーザーは作らない
	AdminPassword string
	// trueならElectronics/Gaming/Fashionのカタログも入れる
	WithCatalog bool
	// テストではbcrypt.MinCostにする
	BcryptCost int
	// 指定があればカテゴリ一覧のキャッシュを消す
	Cache usecase.CatalogCache
}

type productSeed struct {
	Name        string
	Description string
	Price       string
	Stock       int64
	Image       string
	Rating      float64
	NumReviews  int64
}

var devProducts = []productSeed{
	{Name: "Sample Phone", Description: "A sample phone", Price: "499.99", Stock: 10},
	{Name: "Sample Laptop", Description: "A sample laptop", Price: "1299.99", Stock: 5},
	{Name: "Sample Headphones", Description: "Noise cancelling headphones", Price: "199.99", Stock: 20},
}

var catalog = map[model.Category][]productSeed{
	{Name: "Electronics", Slug: "electronics"}: {
		{
			Name:        "Canon EOS R3 DSLR Camera",
			Description: "Professional mirrorless camera with high-speed shooting and advanced autofocus.",
			Price:       "449999.00", Stock: 5, Image: "products/camera.png", Rating: 4.8, NumReviews: 12,
		},
		{
			Name:        "Smart Fitness Watch Series 7",
			Description: "Advanced health features. Measure your blood oxygen level. Take an ECG anytime, anywhere.",
			Price:       "41900.00", Stock: 20, Image: "products/watch.png", Rating: 4.5, NumReviews: 28,
		},
	},
	{Name: "Gaming", Slug: "gaming"}: {
		{
			Name:        "PlayStation 5 Console",
			Description: "Experience lightning-fast loading with an ultra-high-speed SSD, deeper immersion with haptic feedback, adaptive triggers, and 3D Audio.",
			Price:       "49990.00", Stock: 10, Image: "products/console.png", Rating: 4.9, NumReviews: 45,
		},
	},
	{Name: "Fashion", Slug: "fashion"}: {
		{
			Name:        "Ultra Boost Running Shoes",
			Description: "Responsive cushioning returns energy to your stride. The Primeknit upper wraps your foot in support.",
			Price:       "14500.00", Stock: 15, Image: "products/shoes.png", Rating: 4.7, NumReviews: 34,
		},
	},
}

// Run は開発用データを入れる。何度実行しても重複しない
func Run(ctx context.Context, gdb *gorm.DB, opts Options, log *zap.Logger) error {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}

	err := gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUser(tx, DevUsername, "devuser@example.com", DevPassword, model.RoleUser, opts.BcryptCost, log); err != nil {
			return err
		}
		if opts.AdminPassword != "" {
			if err := ensureUser(tx, AdminUsername, "admin@example.com", opts.AdminPassword, model.RoleAdmin, opts.BcryptCost, log); err != nil {
				return err
			}
		}

		device, err := ensureCategory(tx, model.Category{Name: "Device", Slug: "device"})
		if err != nil {
			return err
		}
		if err := ensureProducts(tx, device, devProducts, log); err != nil {
			return err
		}

		if !opts.WithCatalog {
			return nil
		}
		for cat, products := range catalog {
			c, err := ensureCategory(tx, cat)
			if err != nil {
				return err
			}
			if err := ensureProducts(tx, c, products, log); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	//APIが持っているカテゴリ一覧は古くなる
	if opts.Cache != nil {
		if err := opts.Cache.Delete(ctx, usecase.CategoriesCacheKey); err != nil {
			log.Warn("catalog cache invalidation failed", zap.Error(err))
		}
	}
	return nil
}

func ensureUser(tx *gorm.DB, username, email, password string, role model.Role, cost int, log *zap.Logger) error {
	var existing model.User
	err := tx.Where("username = ?", username).Limit(1).Find(&existing).Error
	if err != nil {
		return fmt.Errorf("find user %s: %w", username, err)
	}
	if existing.ID != 0 {
		log.Info("user already exists", zap.String("username", username))
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u := model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
	if err := tx.Create(&u).Error; err != nil {
		return fmt.Errorf("create user %s: %w", username, err)
	}
	log.Info("created user", zap.String("username", username), zap.String("role", string(role)))
	return nil
}

func ensureCategory(tx *gorm.DB, c model.Category) (model.Category, error) {
	out := model.Category{}
	if err := tx.Where(model.Category{Slug: c.Slug}).Attrs(model.Category{Name: c.Name}).FirstOrCreate(&out).Error; err != nil {
		return model.Category{}, fmt.Errorf("category %s: %w", c.Slug, err)
	}
	return out, nil
}

// 同名の商品があればスキップ
func ensureProducts(tx *gorm.DB, cat model.Category, products []productSeed, log *zap.Logger) error {
	for _, ps := range products {
		price, err := decimal.NewFromString(ps.Price)
		if err != nil {
			return fmt.Errorf("price of %s: %w", ps.Name, err)
		}

		var count int64
		if err := tx.Model(&model.Product{}).Where("name = ?", ps.Name).Count(&count).Error; err != nil {
			return fmt.Errorf("count product %s: %w", ps.Name, err)
		}
		if count > 0 {
			log.Info("product already exists", zap.String("name", ps.Name))
			continue
		}

		catID := cat.ID
		p := model.Product{
			CategoryID:  &catID,
			Name:        ps.Name,
			Description: ps.Description,
			Price:       price,
			Stock:       ps.Stock,
			Image:       ps.Image,
			IsActive:    true,
			Rating:      ps.Rating,
			NumReviews:  ps.NumReviews,
		}
		if err := tx.Create(&p).Error; err != nil {
			return fmt.Errorf("create product %s: %w", ps.Name, err)
		}
		log.Info("created product", zap.String("name", ps.Name))
	}
	return nil
}
