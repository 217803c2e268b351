package phones

import (
	"context"
	"strings"

	"github.com/desklino/desklino-backend/pkg/db/models"
	"github.com/desklino/desklino-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Row is the admin listing shape: a phone joined with its owner's name.
type Row struct {
	ID         int64  `json:"id"`
	Number     string `json:"number"`
	ClientID   int64  `json:"client_id"`
	ClientName string `json:"client_name"`
}

// Repository defines persistence operations for phone rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListByClient(ctx context.Context, clientID int64) ([]models.Phone, error)
	List(ctx context.Context, params pagination.Params, search string) ([]Row, int64, error)
	Create(ctx context.Context, phone *models.Phone) error
	UpdateNumber(ctx context.Context, id int64, number string) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a phones repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListByClient(ctx context.Context, clientID int64) ([]models.Phone, error) {
	var rows []models.Phone
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, search string) ([]Row, int64, error) {
	params = params.Normalize()

	filtered := func() *gorm.DB {
		base := r.db.WithContext(ctx).
			Model(&models.Phone{}).
			Joins("JOIN clients ON clients.id = phones.client_id")
		if search != "" {
			pattern := "%" + strings.ToLower(search) + "%"
			base = base.Where("LOWER(phones.number) LIKE ? OR LOWER(clients.name) LIKE ?", pattern, pattern)
		}
		return base
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []Row
	err := filtered().
		Select("phones.id AS id, phones.number AS number, clients.id AS client_id, clients.name AS client_name").
		Order("phones.id DESC").
		Limit(params.Limit()).
		Offset(params.Offset()).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) Create(ctx context.Context, phone *models.Phone) error {
	return r.db.WithContext(ctx).Create(phone).Error
}

func (r *repository) UpdateNumber(ctx context.Context, id int64, number string) error {
	return r.db.WithContext(ctx).
		Model(&models.Phone{}).
		Where("id = ?", id).
		Update("number", number).Error
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Phone{}).Error
}
