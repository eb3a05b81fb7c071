package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/repository"

	"go.uber.org/zap"
)

type AddressOutput struct {
	ID         int64     `json:"id"`
	User       int64     `json:"user"`
	Address    string    `json:"address"`
	City       string    `json:"city"`
	PostalCode string    `json:"postal_code"`
	Country    string    `json:"country"`
	IsDefault  bool      `json:"is_default"`
	CreatedAt  time.Time `json:"created_at"`
}

// nilは「指定なし」（PATCH用）
type AddressInput struct {
	Address    *string
	City       *string
	PostalCode *string
	Country    *string
	IsDefault  *bool
}

type AddressUsecase struct {
	addresses repository.ShippingAddressRepository
	log       *zap.Logger
}

func NewAddressUsecase(addresses repository.ShippingAddressRepository, log *zap.Logger) *AddressUsecase {
	return &AddressUsecase{addresses: addresses, log: log}
}

func (u *AddressUsecase) List(ctx context.Context, userID int64) ([]AddressOutput, error) {
	list, err := u.addresses.ListByUserID(ctx, userID)
	if err != nil {
		return nil, internalError(u.log, "list addresses", err)
	}
	out := make([]AddressOutput, 0, len(list))
	for _, a := range list {
		out = append(out, toAddressOutput(a))
	}
	return out, nil
}

func (u *AddressUsecase) Get(ctx context.Context, userID, addressID int64) (AddressOutput, error) {
	a, err := u.find(ctx, userID, addressID)
	if err != nil {
		return AddressOutput{}, err
	}
	return toAddressOutput(a), nil
}

// 最初の住所は必ずデフォルト。
// 同時作成でデフォルトの一意制約に当たったら1回だけやり直す
func (u *AddressUsecase) Create(ctx context.Context, userID int64, in AddressInput) (AddressOutput, error) {
	a := model.ShippingAddress{UserID: userID}
	if err := applyAddressInput(&a, in, false); err != nil {
		return AddressOutput{}, err
	}

	var err error
	for attempt := 0; attempt < 2; attempt++ {
		candidate := a
		err = u.addresses.Create(ctx, &candidate)
		if err == nil {
			return toAddressOutput(candidate), nil
		}
		if !errors.Is(err, repository.ErrConflict) {
			break
		}
		u.log.Debug("default address conflict, retrying", zap.Int64("user_id", userID))
	}
	if errors.Is(err, repository.ErrConflict) {
		return AddressOutput{}, conflict("default address was changed concurrently")
	}
	return AddressOutput{}, internalError(u.log, "create address", err)
}

// PUT は partial=false、PATCH は partial=true
func (u *AddressUsecase) Update(ctx context.Context, userID, addressID int64, in AddressInput, partial bool) (AddressOutput, error) {
	a, err := u.find(ctx, userID, addressID)
	if err != nil {
		return AddressOutput{}, err
	}
	if err := applyAddressInput(&a, in, partial); err != nil {
		return AddressOutput{}, err
	}

	err = u.addresses.Update(ctx, &a)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return AddressOutput{}, notFound("address not found")
	case errors.Is(err, repository.ErrConflict):
		return AddressOutput{}, conflict("default address was changed concurrently")
	case err != nil:
		return AddressOutput{}, internalError(u.log, "update address", err)
	}
	return toAddressOutput(a), nil
}

func (u *AddressUsecase) Delete(ctx context.Context, userID, addressID int64) error {
	err := u.addresses.Delete(ctx, addressID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound("address not found")
	}
	if err != nil {
		return internalError(u.log, "delete address", err)
	}
	return nil
}

// 他人の住所は404
func (u *AddressUsecase) find(ctx context.Context, userID, addressID int64) (model.ShippingAddress, error) {
	if addressID <= 0 {
		return model.ShippingAddress{}, notFound("address not found")
	}
	a, err := u.addresses.FindByIDForUser(ctx, addressID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.ShippingAddress{}, notFound("address not found")
	}
	if err != nil {
		return model.ShippingAddress{}, internalError(u.log, "find address", err)
	}
	return a, nil
}

func applyAddressInput(a *model.ShippingAddress, in AddressInput, partial bool) error {
	fields := []struct {
		name string
		src  *string
		dst  *string
	}{
		{"address", in.Address, &a.Address},
		{"city", in.City, &a.City},
		{"postal_code", in.PostalCode, &a.PostalCode},
		{"country", in.Country, &a.Country},
	}
	for _, f := range fields {
		if f.src == nil {
			if !partial {
				return validationError(f.name + " is required")
			}
			continue
		}
		v := strings.TrimSpace(*f.src)
		if v == "" {
			return validationError(f.name + " is required")
		}
		*f.dst = v
	}
	if in.IsDefault != nil {
		a.IsDefault = *in.IsDefault
	} else if !partial {
		a.IsDefault = false
	}
	return nil
}

func toAddressOutput(a model.ShippingAddress) AddressOutput {
	return AddressOutput{
		ID:         a.ID,
		User:       a.UserID,
		Address:    a.Address,
		City:       a.City,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		IsDefault:  a.IsDefault,
		CreatedAt:  a.CreatedAt,
	}
}
