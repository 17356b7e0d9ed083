package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"social-insights-service/internal/domain"
)

// UserRepository implements domain.UserRepository using PostgreSQL.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new PostgreSQL user repository.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create stores a new user. A taken email yields domain.ErrUserExists.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	model := UserFromDomain(user)
	model.Email = normalizeEmail(model.Email)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("creating user: %w", err)
	}

	user.Email = model.Email
	user.CreatedAt = model.CreatedAt

	return nil
}

// GetByEmail returns the user with the address, or nil, nil.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var model UserModel
	err := r.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting user by email: %w", err)
	}

	return model.ToDomain(), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
