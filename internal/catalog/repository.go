package catalog

import (
	"context"

	"github.com/talkincode/storefront/internal/domain"
	"gorm.io/gorm"
)

// ProductRepository handles database operations for catalog products
type ProductRepository interface {
	// Create inserts a new product and fills in its generated ID
	Create(ctx context.Context, product *domain.Product) error

	// List returns every product
	List(ctx context.Context) ([]*domain.Product, error)

	// GetByID returns gorm.ErrRecordNotFound when the product does not exist
	GetByID(ctx context.Context, id int64) (*domain.Product, error)

	// Delete removes a product by ID
	Delete(ctx context.Context, id int64) error
}

// GormProductRepository is the GORM implementation of ProductRepository
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GORM-based repository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) Create(ctx context.Context, product *domain.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *GormProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	var products []*domain.Product
	err := r.db.WithContext(ctx).Find(&products).Error
	return products, err
}

func (r *GormProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormProductRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Product{}).Error
}
