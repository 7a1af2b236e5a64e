package catalog

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/talkincode/storefront/internal/blobstore"
	"github.com/talkincode/storefront/internal/domain"
	"github.com/talkincode/storefront/pkg/metrics"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Upper bounds (exclusive) of the decimal columns, see domain.Product.
var (
	maxPrice    = decimal.New(1, 8) // decimal(10,2)
	maxDiscount = decimal.New(1, 3) // decimal(5,2)
	maxRating   = decimal.New(1, 1) // decimal(3,2)
)

// Upload is an image received with a create request.
type Upload struct {
	Filename string
	Content  io.Reader
}

// CreateInput carries product fields as they arrive from the client.
// Empty optional fields take their defaults.
type CreateInput struct {
	Name        string
	Price       string
	Description string
	Stock       string
	Category    string
	Status      string
	Brand       string
	Sku         string
	Discount    string
	Rating      string
	Image       *Upload
}

// DeleteResult is the outcome of DeleteByID.
type DeleteResult int

const (
	Deleted DeleteResult = iota + 1
	NotFound
)

func (r DeleteResult) String() string {
	switch r {
	case Deleted:
		return "deleted"
	case NotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Service owns the catalog rules: required fields, strict numeric parsing,
// defaults and the image/row write sequence.
type Service struct {
	repo  ProductRepository
	blobs blobstore.Store
}

func NewService(repo ProductRepository, blobs blobstore.Store) *Service {
	return &Service{repo: repo, blobs: blobs}
}

// Create validates in, stores the optional image and inserts the product.
// The image is removed again when the insert fails.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Product, error) {
	product, err := buildProduct(in)
	if err != nil {
		return nil, err
	}

	if in.Image != nil {
		url, err := s.blobs.Save(ctx, in.Image.Filename, in.Image.Content)
		if errors.Is(err, blobstore.ErrUnsupportedImage) {
			return nil, domain.NewValidationError("image must be a PNG, JPEG, GIF or WebP file")
		}
		if err != nil {
			return nil, domain.NewStorageError("failed to store product image", err)
		}
		product.ImageURL = &url
	}

	if err := s.repo.Create(ctx, product); err != nil {
		if product.ImageURL != nil {
			if rerr := s.blobs.Remove(*product.ImageURL); rerr != nil {
				zap.L().Error("failed to remove orphaned product image",
					zap.String("namespace", "catalog"),
					zap.String("image_url", *product.ImageURL),
					zap.Error(rerr))
			}
		}
		return nil, domain.NewStorageError("failed to create product", errors.Wrap(err, "insert product"))
	}

	metrics.Incr(metrics.ProductCreate)
	zap.L().Info("product created",
		zap.String("namespace", "catalog"),
		zap.Int64("id", product.ID),
		zap.String("name", product.Name))
	return product, nil
}

// ListAll returns every product, unpaged and unordered.
func (s *Service) ListAll(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, domain.NewStorageError("failed to query products", errors.Wrap(err, "list products"))
	}
	if products == nil {
		products = []*domain.Product{}
	}
	return products, nil
}

// DeleteByID removes the product row and then its image. A missing product
// is reported as NotFound, not as an error.
func (s *Service) DeleteByID(ctx context.Context, id int64) (DeleteResult, error) {
	product, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound, nil
	}
	if err != nil {
		return 0, domain.NewStorageError("failed to query product", errors.Wrapf(err, "get product %d", id))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return 0, domain.NewStorageError("failed to delete product", errors.Wrapf(err, "delete product %d", id))
	}

	if product.ImageURL != nil && *product.ImageURL != "" {
		if err := s.blobs.Remove(*product.ImageURL); err != nil {
			zap.L().Warn("product deleted but its image could not be removed",
				zap.String("namespace", "catalog"),
				zap.Int64("id", id),
				zap.String("image_url", *product.ImageURL),
				zap.Error(err))
		}
	}

	metrics.Incr(metrics.ProductDelete)
	zap.L().Info("product deleted", zap.String("namespace", "catalog"), zap.Int64("id", id))
	return Deleted, nil
}

func buildProduct(in CreateInput) (*domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || strings.TrimSpace(in.Price) == "" {
		return nil, domain.NewValidationError("Name and price are required")
	}

	price, err := parseDecimal("price", in.Price, maxPrice)
	if err != nil {
		return nil, err
	}
	discount, err := parseDecimal("discount", in.Discount, maxDiscount)
	if err != nil {
		return nil, err
	}
	rating, err := parseDecimal("rating", in.Rating, maxRating)
	if err != nil {
		return nil, err
	}
	stock, err := parseInt("stock", in.Stock)
	if err != nil {
		return nil, err
	}

	status := strings.ToLower(strings.TrimSpace(in.Status))
	if status == "" {
		status = domain.ProductStatusActive
	}
	if !domain.ValidProductStatus(status) {
		return nil, domain.NewValidationError("status must be 'active' or 'inactive'")
	}

	product := &domain.Product{
		Name:        name,
		Price:       price,
		Description: in.Description,
		Stock:       stock,
		Category:    strings.TrimSpace(in.Category),
		Status:      status,
		Brand:       strings.TrimSpace(in.Brand),
		Discount:    discount,
		Rating:      rating,
	}
	if sku := strings.TrimSpace(in.Sku); sku != "" {
		product.Sku = &sku
	}
	return product, nil
}

// parseDecimal parses a non-empty value strictly; empty means zero.
func parseDecimal(field, raw string, limit decimal.Decimal) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, domain.NewValidationError("%s must be a number", field)
	}
	d = d.Round(2)
	if d.Abs().GreaterThanOrEqual(limit) {
		return decimal.Zero, domain.NewValidationError("%s is out of range", field)
	}
	return d, nil
}

func parseInt(field, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError("%s must be an integer", field)
	}
	return n, nil
}
