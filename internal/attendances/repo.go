package attendances

import (
	"context"
	"strings"
	"time"

	"github.com/desklino/desklino-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Row is one entry of the recent-contact log. Phone is one arbitrary number
// of the client, picked with a MIN aggregate so clients with several phones
// do not fan out into duplicate rows.
type Row struct {
	ID            int64     `json:"id"`
	ClientID      int64     `json:"client_id"`
	ClientName    string    `json:"client_name"`
	AttendantName string    `json:"attendant_name"`
	Phone         *string   `json:"phone"`
	CreatedAt     time.Time `json:"created_at"`
}

// Repository defines persistence operations for the contact log.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindRecent(ctx context.Context, limit int) ([]Row, error)
	FindAttendantByNameOrLogin(ctx context.Context, term string) (*models.Attendant, error)
	Create(ctx context.Context, attendance *models.Attendance) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an attendances repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindRecent(ctx context.Context, limit int) ([]Row, error) {
	var rows []Row
	err := r.db.WithContext(ctx).
		Model(&models.Attendance{}).
		Joins("JOIN clients ON clients.id = attendances.client_id").
		Joins("JOIN attendants ON attendants.id = attendances.attendant_id").
		Joins("LEFT JOIN phones ON phones.client_id = clients.id").
		Select("attendances.id AS id, clients.id AS client_id, clients.name AS client_name, " +
			"attendants.name AS attendant_name, MIN(phones.number) AS phone, " +
			"attendances.created_at AS created_at").
		Group("attendances.id, clients.id, clients.name, attendants.name, attendances.created_at").
		Order("attendances.id DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindAttendantByNameOrLogin(ctx context.Context, term string) (*models.Attendant, error) {
	var attendant models.Attendant
	normalized := strings.ToLower(strings.TrimSpace(term))
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = ? OR LOWER(login) = ?", normalized, normalized).
		Order("id ASC").
		First(&attendant).Error
	if err != nil {
		return nil, err
	}
	return &attendant, nil
}

func (r *repository) Create(ctx context.Context, attendance *models.Attendance) error {
	return r.db.WithContext(ctx).Create(attendance).Error
}
