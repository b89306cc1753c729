package catalog

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/stylehub/stylehub/internal/domain"
	"gorm.io/gorm"
)

// FeaturedLimit caps the landing page featured list
const FeaturedLimit = 6

// ProductRepository handles database operations for catalog products
type ProductRepository interface {
	// ListByStatus returns products with the given status, newest first.
	// An empty status returns every product.
	ListByStatus(ctx context.Context, status string) ([]domain.Product, error)

	// ListFeatured returns up to limit featured active products, newest first
	ListFeatured(ctx context.Context, limit int) ([]domain.Product, error)

	// GetByID returns the product regardless of status
	GetByID(ctx context.Context, id int64) (*domain.Product, error)

	Create(ctx context.Context, p *domain.Product) error

	// Overwrite replaces every editable column of product id
	Overwrite(ctx context.Context, id int64, p *domain.Product) error

	UpdateStatus(ctx context.Context, id int64, status string) error
}

// GormProductRepository is the GORM implementation of ProductRepository
type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) ListByStatus(ctx context.Context, status string) ([]domain.Product, error) {
	var rows []domain.Product
	db := r.db.WithContext(ctx).Model(&domain.Product{})
	if status != "" {
		db = db.Where("status = ?", status)
	}
	if err := db.Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "query products")
	}
	return rows, nil
}

func (r *GormProductRepository) ListFeatured(ctx context.Context, limit int) ([]domain.Product, error) {
	var rows []domain.Product
	err := r.db.WithContext(ctx).
		Where("featured = ? AND status = ?", true, domain.ProductStatusActive).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "query featured products")
	}
	return rows, nil
}

func (r *GormProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, errors.Wrapf(err, "query product %d", id)
	}
	return &p, nil
}

func (r *GormProductRepository) Create(ctx context.Context, p *domain.Product) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(p).Error, "create product")
}

func (r *GormProductRepository) Overwrite(ctx context.Context, id int64, p *domain.Product) error {
	err := r.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id).Updates(map[string]interface{}{
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"category":    p.Category,
		"image":       p.Image,
		"featured":    p.Featured,
		"updated_at":  time.Now(),
	}).Error
	return errors.Wrapf(err, "update product %d", id)
}

func (r *GormProductRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	err := r.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}).Error
	return errors.Wrapf(err, "update product %d status", id)
}
