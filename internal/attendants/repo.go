package attendants

import (
	"context"

	"github.com/desklino/desklino-backend/pkg/db/models"
	"github.com/desklino/desklino-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository handles attendant persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to attendant operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByLogin loads one attendant by their unique login.
func (r *Repository) FindByLogin(ctx context.Context, login string) (*models.Attendant, error) {
	var attendant models.Attendant
	err := r.db.WithContext(ctx).Where("login = ?", login).First(&attendant).Error
	if err != nil {
		return nil, err
	}
	return &attendant, nil
}

// FindByID loads one attendant.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Attendant, error) {
	var attendant models.Attendant
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&attendant).Error
	if err != nil {
		return nil, err
	}
	return &attendant, nil
}

// List returns all attendants ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Attendant, error) {
	var rows []models.Attendant
	err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Create persists a new attendant.
func (r *Repository) Create(ctx context.Context, attendant *models.Attendant) error {
	return r.db.WithContext(ctx).Create(attendant).Error
}

// UpdateRole writes the attendant's role.
func (r *Repository) UpdateRole(ctx context.Context, id int64, role enums.AttendantRole) error {
	return r.db.WithContext(ctx).
		Model(&models.Attendant{}).
		Where("id = ?", id).
		Update("role", role).Error
}
