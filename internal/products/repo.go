package products

import (
	"context"

	"github.com/desklino/desklino-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository handles catalog persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to catalog operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListAvailable returns the attendant-facing catalog: available products
// with stock on hand, ordered by name.
func (r *Repository) ListAvailable(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("available = ? AND stock_quantity > 0", true).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListAll returns every catalog row for admin management.
func (r *Repository) ListAll(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads one product.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// Create persists a new catalog row.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// Update overwrites the full catalog row.
func (r *Repository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}
