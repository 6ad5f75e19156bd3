package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"updigital/internal/auth"
	"updigital/internal/models"
)

// AccountStore is the gorm-backed implementation of
// auth.AccountStore. Unique-index violations on email or confirmation
// code come back as auth.ErrConflict; everything else is wrapped in
// auth.ErrStorage.
type AccountStore struct {
	db *gorm.DB
}

func NewAccountStore(db *gorm.DB) *AccountStore {
	return &AccountStore{db: db}
}

func (s *AccountStore) Create(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: %s", auth.ErrConflict, user.Email)
		}
		return fmt.Errorf("%w: %v", auth.ErrStorage, err)
	}
	return nil
}

func (s *AccountStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, "email = ?", email)
}

func (s *AccountStore) FindByConfirmationCode(ctx context.Context, code string) (*models.User, error) {
	return s.findOne(ctx, "email_confirmation_code = ?", code)
}

func (s *AccountStore) Update(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("%w: %v", auth.ErrStorage, err)
	}
	return nil
}

func (s *AccountStore) findOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where(query, arg).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", auth.ErrStorage, err)
	}
	return &user, nil
}
