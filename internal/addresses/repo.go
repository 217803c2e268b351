package addresses

import (
	"context"

	"github.com/desklino/desklino-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository defines persistence operations for delivery addresses.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListByClient(ctx context.Context, clientID int64) ([]models.Address, error)
	Find(ctx context.Context, clientID, addressID int64) (*models.Address, error)
	CountByClient(ctx context.Context, clientID int64) (int64, error)
	CountOrdersByAddress(ctx context.Context, addressID int64) (int64, error)
	Create(ctx context.Context, address *models.Address) error
	Update(ctx context.Context, address *models.Address) error
	ClearPrincipal(ctx context.Context, clientID int64, exceptID int64) error
	SetPrincipal(ctx context.Context, clientID, addressID int64) error
	PromoteAny(ctx context.Context, clientID int64) error
	Delete(ctx context.Context, clientID, addressID int64) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an addresses repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListByClient(ctx context.Context, clientID int64) ([]models.Address, error) {
	var rows []models.Address
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("is_principal DESC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Find(ctx context.Context, clientID, addressID int64) (*models.Address, error) {
	var address models.Address
	err := r.db.WithContext(ctx).
		Where("id = ? AND client_id = ?", addressID, clientID).
		First(&address).Error
	if err != nil {
		return nil, err
	}
	return &address, nil
}

func (r *repository) CountByClient(ctx context.Context, clientID int64) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Address{}).
		Where("client_id = ?", clientID).
		Count(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repository) CountOrdersByAddress(ctx context.Context, addressID int64) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("address_id = ?", addressID).
		Count(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repository) Create(ctx context.Context, address *models.Address) error {
	return r.db.WithContext(ctx).Create(address).Error
}

func (r *repository) Update(ctx context.Context, address *models.Address) error {
	return r.db.WithContext(ctx).Save(address).Error
}

func (r *repository) ClearPrincipal(ctx context.Context, clientID int64, exceptID int64) error {
	query := r.db.WithContext(ctx).
		Model(&models.Address{}).
		Where("client_id = ?", clientID)
	if exceptID > 0 {
		query = query.Where("id <> ?", exceptID)
	}
	return query.Update("is_principal", false).Error
}

func (r *repository) SetPrincipal(ctx context.Context, clientID, addressID int64) error {
	return r.db.WithContext(ctx).
		Model(&models.Address{}).
		Where("id = ? AND client_id = ?", addressID, clientID).
		Update("is_principal", true).Error
}

// PromoteAny marks one arbitrary remaining address as principal.
func (r *repository) PromoteAny(ctx context.Context, clientID int64) error {
	var remaining models.Address
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("id ASC").
		First(&remaining).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return err
	}
	return r.db.WithContext(ctx).
		Model(&models.Address{}).
		Where("id = ?", remaining.ID).
		Update("is_principal", true).Error
}

func (r *repository) Delete(ctx context.Context, clientID, addressID int64) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND client_id = ?", addressID, clientID).
		Delete(&models.Address{}).Error
}
