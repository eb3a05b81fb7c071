package repository

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type shippingAddressGormRepository struct {
	db *gorm.DB
}

// DI
func NewShippingAddressGormRepository(db *gorm.DB) repo.ShippingAddressRepository {
	return &shippingAddressGormRepository{db: db}
}

// ユーザーの住所一覧を返す
func (r *shippingAddressGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.ShippingAddress, error) {
	list := []model.ShippingAddress{}
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// 住所IDで1件取得（所有者で絞る）
func (r *shippingAddressGormRepository) FindByIDForUser(ctx context.Context, addressID, userID int64) (model.ShippingAddress, error) {
	var a model.ShippingAddress
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", addressID, userID).
		First(&a).Error
	if err != nil {
		return model.ShippingAddress{}, translate(err)
	}
	return a, nil
}

// 住所を作成
func (r *shippingAddressGormRepository) Create(ctx context.Context, address *model.ShippingAddress) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.ShippingAddress{}).
			Where("user_id = ?", address.UserID).
			Count(&count).Error; err != nil {
			return err
		}

		//最初の住所は必ずデフォルト
		if count == 0 {
			address.IsDefault = true
		} else if address.IsDefault {
			if err := clearDefault(tx, address.UserID, 0); err != nil {
				return err
			}
		}

		return tx.Create(address).Error
	})
	return translate(err)
}

// 住所を更新
func (r *shippingAddressGormRepository) Update(ctx context.Context, address *model.ShippingAddress) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if address.IsDefault {
			if err := clearDefault(tx, address.UserID, address.ID); err != nil {
				return err
			}
		}

		result := tx.Model(&model.ShippingAddress{}).
			Where("id = ? AND user_id = ?", address.ID, address.UserID).
			Select("address", "city", "postal_code", "country", "is_default").
			Updates(address)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return translate(err)
}

// 住所を削除
func (r *shippingAddressGormRepository) Delete(ctx context.Context, addressID, userID int64) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", addressID, userID).
		Delete(&model.ShippingAddress{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// そのユーザーのdefaultを全て false（exceptIDは除く）
func clearDefault(tx *gorm.DB, userID, exceptID int64) error {
	return tx.Model(&model.ShippingAddress{}).
		Where("user_id = ? AND is_default = ? AND id <> ?", userID, true, exceptID).
		Update("is_default", false).Error
}
