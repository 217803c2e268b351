package products

import (
	"context"
	"fmt"

	"github.com/desklino/desklino-backend/pkg/db/models"
	pkgerrors "github.com/desklino/desklino-backend/pkg/errors"
	"github.com/desklino/desklino-backend/pkg/validate"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductInput carries the writable fields of a catalog row. Available
// defaults to true when omitted.
type ProductInput struct {
	Name          string          `json:"name" validate:"required"`
	Description   *string         `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity" validate:"min=0"`
	Available     *bool           `json:"available"`
}

// Service exposes catalog operations.
type Service interface {
	ListAvailable(ctx context.Context) ([]models.Product, error)
	ListAll(ctx context.Context) ([]models.Product, error)
	FindByID(ctx context.Context, id int64) (*models.Product, error)
	Create(ctx context.Context, input ProductInput) (int64, error)
	Update(ctx context.Context, id int64, input ProductInput) error
}

type service struct {
	repo *Repository
}

// NewService builds a product service with the required dependencies.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListAvailable(ctx context.Context) ([]models.Product, error) {
	rows, err := s.repo.ListAvailable(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list available products")
	}
	return rows, nil
}

func (s *service) ListAll(ctx context.Context) ([]models.Product, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return rows, nil
}

func (s *service) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) Create(ctx context.Context, input ProductInput) (int64, error) {
	if err := validateInput(input); err != nil {
		return 0, err
	}

	product := newModel(input)
	if err := s.repo.Create(ctx, product); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert product")
	}
	return product.ID, nil
}

// Update overwrites the full catalog row.
func (s *service) Update(ctx context.Context, id int64, input ProductInput) error {
	if err := validateInput(input); err != nil {
		return err
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	updated := newModel(input)
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(ctx, updated); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return nil
}

func validateInput(input ProductInput) error {
	if err := validate.Struct(input); err != nil {
		return err
	}
	if input.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	return nil
}

func newModel(input ProductInput) *models.Product {
	available := true
	if input.Available != nil {
		available = *input.Available
	}
	return &models.Product{
		Name:          input.Name,
		Description:   input.Description,
		Price:         input.Price,
		StockQuantity: input.StockQuantity,
		Available:     available,
	}
}
