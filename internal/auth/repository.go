package auth

import (
	"context"

	"github.com/talkincode/storefront/internal/domain"
	"gorm.io/gorm"
)

// AdminRepository handles database operations for admin accounts
type AdminRepository interface {
	// GetByUsername returns gorm.ErrRecordNotFound when no admin has that username
	GetByUsername(ctx context.Context, username string) (*domain.SysAdmin, error)

	// Create inserts a new admin account
	Create(ctx context.Context, admin *domain.SysAdmin) error
}

type GormAdminRepository struct {
	db *gorm.DB
}

func NewGormAdminRepository(db *gorm.DB) *GormAdminRepository {
	return &GormAdminRepository{db: db}
}

func (r *GormAdminRepository) GetByUsername(ctx context.Context, username string) (*domain.SysAdmin, error) {
	var admin domain.SysAdmin
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&admin).Error
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *GormAdminRepository) Create(ctx context.Context, admin *domain.SysAdmin) error {
	return r.db.WithContext(ctx).Create(admin).Error
}
