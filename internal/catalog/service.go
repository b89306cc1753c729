package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stylehub/stylehub/internal/domain"
	"go.uber.org/zap"
)

var (
	ErrNotFound  = errors.New("product not found")
	ErrForbidden = errors.New("admin role required")
)

// FieldError reports a missing or malformed input field
type FieldError struct {
	Field   string
	Missing bool
}

func (e *FieldError) Error() string {
	if e.Missing {
		return e.Field + " is required"
	}
	return e.Field + " is invalid"
}

// Actor is the caller as established by the session gate
type Actor struct {
	UserID int64
	Role   string
}

func (a Actor) IsAdmin() bool {
	return a.UserID != 0 && a.Role == domain.RoleAdmin
}

// ProductInput carries the editable product columns. Nil pointers mean the
// field was not supplied by the caller.
type ProductInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Category    *string
	Image       *string
	Featured    *bool
}

// Service is the product catalog: public reads plus admin-only writes.
// Every write re-checks the actor's role.
type Service struct {
	repo ProductRepository
}

func NewService(repo ProductRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListActive(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListByStatus(ctx, domain.ProductStatusActive)
}

func (s *Service) ListFeatured(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListFeatured(ctx, FeaturedLimit)
}

// GetActive returns the product only while it is active
func (s *Service) GetActive(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsActive() {
		return nil, ErrNotFound
	}
	return p, nil
}

// ListAll returns every product including deleted ones
func (s *Service) ListAll(ctx context.Context, actor Actor) ([]domain.Product, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.repo.ListByStatus(ctx, "")
}

// Get returns the product in any status, for the admin edit path
func (s *Service) Get(ctx context.Context, actor Actor, id int64) (*domain.Product, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.repo.GetByID(ctx, id)
}

// Create inserts an active product and returns its id
func (s *Service) Create(ctx context.Context, actor Actor, in ProductInput) (int64, error) {
	if !actor.IsAdmin() {
		return 0, ErrForbidden
	}
	p, err := buildProduct(in)
	if err != nil {
		return 0, err
	}
	now := time.Now()
	p.Status = domain.ProductStatusActive
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := s.repo.Create(ctx, p); err != nil {
		return 0, err
	}
	zap.L().Info("product created",
		zap.Int64("id", p.ID),
		zap.String("name", p.Name),
		zap.Int64("by", actor.UserID))
	return p.ID, nil
}

// Update overwrites every editable column. Omitted optional fields are reset.
func (s *Service) Update(ctx context.Context, actor Actor, id int64, in ProductInput) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	if id <= 0 {
		return &FieldError{Field: "id", Missing: true}
	}
	p, err := buildProduct(in)
	if err != nil {
		return err
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Overwrite(ctx, id, p); err != nil {
		return err
	}
	zap.L().Info("product updated", zap.Int64("id", id), zap.Int64("by", actor.UserID))
	return nil
}

// SoftDelete flips the product to deleted. Deleting twice succeeds.
func (s *Service) SoftDelete(ctx context.Context, actor Actor, id int64) error {
	return s.setStatus(ctx, actor, id, domain.ProductStatusDeleted)
}

// Restore brings a deleted product back into public listings
func (s *Service) Restore(ctx context.Context, actor Actor, id int64) error {
	return s.setStatus(ctx, actor, id, domain.ProductStatusActive)
}

func (s *Service) setStatus(ctx context.Context, actor Actor, id int64, status string) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	if id <= 0 {
		return &FieldError{Field: "id", Missing: true}
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	zap.L().Info("product status changed",
		zap.Int64("id", id),
		zap.String("status", status),
		zap.Int64("by", actor.UserID))
	return nil
}

func buildProduct(in ProductInput) (*domain.Product, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, &FieldError{Field: "name", Missing: true}
	}
	if in.Price == nil {
		return nil, &FieldError{Field: "price", Missing: true}
	}
	if in.Price.IsNegative() {
		return nil, &FieldError{Field: "price"}
	}
	if in.Category == nil || strings.TrimSpace(*in.Category) == "" {
		return nil, &FieldError{Field: "category", Missing: true}
	}
	category := strings.ToLower(strings.TrimSpace(*in.Category))
	if !domain.ValidCategory(category) {
		return nil, &FieldError{Field: "category"}
	}

	p := &domain.Product{
		Name:     strings.TrimSpace(*in.Name),
		Price:    in.Price.Round(2),
		Category: category,
		Image:    domain.DefaultProductImage,
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Image != nil && strings.TrimSpace(*in.Image) != "" {
		p.Image = strings.TrimSpace(*in.Image)
	}
	if in.Featured != nil {
		p.Featured = *in.Featured
	}
	return p, nil
}
