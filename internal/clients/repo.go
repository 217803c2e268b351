package clients

import (
	"context"
	"strings"

	"github.com/desklino/desklino-backend/pkg/db/models"
	"github.com/desklino/desklino-backend/pkg/enums"
	"github.com/desklino/desklino-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository defines persistence operations for client tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindClient(ctx context.Context, id int64) (*models.Client, error)
	FindPhoneByNumber(ctx context.Context, number string) (*models.Phone, error)
	FirstPhone(ctx context.Context, clientID int64) (*models.Phone, error)
	PhoneNumbers(ctx context.Context, clientID int64) ([]string, error)
	PrincipalAddress(ctx context.Context, clientID int64) (*models.Address, error)
	FindDocument(ctx context.Context, clientID int64) (*Document, error)
	SearchClients(ctx context.Context, term string, limit int) ([]models.Client, error)
	ListClients(ctx context.Context, params pagination.Params, search string) ([]models.Client, int64, error)
	CreateClient(ctx context.Context, client *models.Client) error
	UpdateClientFields(ctx context.Context, id int64, updates map[string]any) error
	CreatePhone(ctx context.Context, phone *models.Phone) error
	CreateAddress(ctx context.Context, address *models.Address) error
	UpsertIndividualDocument(ctx context.Context, clientID int64, number string) error
	UpsertOrganizationDocument(ctx context.Context, clientID int64, number string) error
	DeleteIndividualDocument(ctx context.Context, clientID int64) error
	DeleteOrganizationDocument(ctx context.Context, clientID int64) error
	CountOrdersByClient(ctx context.Context, clientID int64) (int64, error)
	DeleteClientCascade(ctx context.Context, clientID int64) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a clients repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindClient(ctx context.Context, id int64) (*models.Client, error) {
	var client models.Client
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *repository) FindPhoneByNumber(ctx context.Context, number string) (*models.Phone, error) {
	var phone models.Phone
	err := r.db.WithContext(ctx).
		Where("number = ?", number).
		Order("id ASC").
		First(&phone).Error
	if err != nil {
		return nil, err
	}
	return &phone, nil
}

func (r *repository) FirstPhone(ctx context.Context, clientID int64) (*models.Phone, error) {
	var phone models.Phone
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("id ASC").
		First(&phone).Error
	if err != nil {
		return nil, err
	}
	return &phone, nil
}

func (r *repository) PhoneNumbers(ctx context.Context, clientID int64) ([]string, error) {
	var numbers []string
	err := r.db.WithContext(ctx).
		Model(&models.Phone{}).
		Where("client_id = ?", clientID).
		Order("id ASC").
		Pluck("number", &numbers).Error
	if err != nil {
		return nil, err
	}
	return numbers, nil
}

func (r *repository) PrincipalAddress(ctx context.Context, clientID int64) (*models.Address, error) {
	var address models.Address
	err := r.db.WithContext(ctx).
		Where("client_id = ? AND is_principal = ?", clientID, true).
		First(&address).Error
	if err != nil {
		return nil, err
	}
	return &address, nil
}

func (r *repository) FindDocument(ctx context.Context, clientID int64) (*Document, error) {
	var individual models.IndividualDocument
	err := r.db.WithContext(ctx).Where("client_id = ?", clientID).First(&individual).Error
	if err == nil {
		return &Document{Type: enums.ClientTypeIndividual, Number: individual.DocumentNumber}, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	var organization models.OrganizationDocument
	err = r.db.WithContext(ctx).Where("client_id = ?", clientID).First(&organization).Error
	if err == nil {
		return &Document{Type: enums.ClientTypeOrganization, Number: organization.DocumentNumber}, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	return nil, nil
}

func (r *repository) SearchClients(ctx context.Context, term string, limit int) ([]models.Client, error) {
	pattern := "%" + strings.ToLower(term) + "%"
	var rows []models.Client
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern).
		Order("name ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListClients(ctx context.Context, params pagination.Params, search string) ([]models.Client, int64, error) {
	params = params.Normalize()

	filtered := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&models.Client{})
		if search != "" {
			pattern := "%" + strings.ToLower(search) + "%"
			query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
		}
		return query
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Client
	err := filtered().
		Order("id DESC").
		Limit(params.Limit()).
		Offset(params.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) CreateClient(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *repository) UpdateClientFields(ctx context.Context, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Client{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) CreatePhone(ctx context.Context, phone *models.Phone) error {
	return r.db.WithContext(ctx).Create(phone).Error
}

func (r *repository) CreateAddress(ctx context.Context, address *models.Address) error {
	return r.db.WithContext(ctx).Create(address).Error
}

func (r *repository) UpsertIndividualDocument(ctx context.Context, clientID int64, number string) error {
	var existing models.IndividualDocument
	err := r.db.WithContext(ctx).Where("client_id = ?", clientID).First(&existing).Error
	switch err {
	case nil:
		return r.db.WithContext(ctx).
			Model(&models.IndividualDocument{}).
			Where("client_id = ?", clientID).
			Update("document_number", number).Error
	case gorm.ErrRecordNotFound:
		return r.db.WithContext(ctx).Create(&models.IndividualDocument{
			ClientID:       clientID,
			DocumentNumber: number,
		}).Error
	default:
		return err
	}
}

func (r *repository) UpsertOrganizationDocument(ctx context.Context, clientID int64, number string) error {
	var existing models.OrganizationDocument
	err := r.db.WithContext(ctx).Where("client_id = ?", clientID).First(&existing).Error
	switch err {
	case nil:
		return r.db.WithContext(ctx).
			Model(&models.OrganizationDocument{}).
			Where("client_id = ?", clientID).
			Update("document_number", number).Error
	case gorm.ErrRecordNotFound:
		return r.db.WithContext(ctx).Create(&models.OrganizationDocument{
			ClientID:       clientID,
			DocumentNumber: number,
		}).Error
	default:
		return err
	}
}

func (r *repository) DeleteIndividualDocument(ctx context.Context, clientID int64) error {
	return r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Delete(&models.IndividualDocument{}).Error
}

func (r *repository) DeleteOrganizationDocument(ctx context.Context, clientID int64) error {
	return r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Delete(&models.OrganizationDocument{}).Error
}

func (r *repository) CountOrdersByClient(ctx context.Context, clientID int64) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Joins("JOIN attendances ON attendances.id = orders.attendance_id").
		Where("attendances.client_id = ?", clientID).
		Count(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repository) DeleteClientCascade(ctx context.Context, clientID int64) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("client_id = ?", clientID).Delete(&models.IndividualDocument{}).Error; err != nil {
		return err
	}
	if err := db.Where("client_id = ?", clientID).Delete(&models.OrganizationDocument{}).Error; err != nil {
		return err
	}
	if err := db.Where("client_id = ?", clientID).Delete(&models.Address{}).Error; err != nil {
		return err
	}
	if err := db.Where("client_id = ?", clientID).Delete(&models.Phone{}).Error; err != nil {
		return err
	}
	if err := db.Where("client_id = ?", clientID).Delete(&models.Attendance{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", clientID).Delete(&models.Client{}).Error
}
