package phones

import (
	"context"
	"fmt"

	"github.com/desklino/desklino-backend/pkg/db/models"
	pkgerrors "github.com/desklino/desklino-backend/pkg/errors"
	"github.com/desklino/desklino-backend/pkg/pagination"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Page is an offset-paginated phone listing.
type Page struct {
	Rows     []Row `json:"rows"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

// Service exposes phone operations. Numbers are free text; no uniqueness
// or format constraint is enforced at this layer.
type Service interface {
	ListByClient(ctx context.Context, clientID int64) ([]models.Phone, error)
	List(ctx context.Context, params pagination.Params, search string) (*Page, error)
	Add(ctx context.Context, clientID int64, number string) (int64, error)
	Update(ctx context.Context, id int64, number string) error
	Delete(ctx context.Context, id int64) error
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds a phone service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("phones repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) ListByClient(ctx context.Context, clientID int64) ([]models.Phone, error) {
	rows, err := s.repo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list client phones")
	}
	return rows, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, search string) (*Page, error) {
	params = params.Normalize()
	rows, total, err := s.repo.List(ctx, params, search)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list phones")
	}
	return &Page{Rows: rows, Total: total, Page: params.Page, PageSize: params.PageSize}, nil
}

func (s *service) Add(ctx context.Context, clientID int64, number string) (int64, error) {
	if number == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "phone number is required")
	}

	phone := &models.Phone{ClientID: clientID, Number: number}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, phone); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert phone")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return phone.ID, nil
}

func (s *service) Update(ctx context.Context, id int64, number string) error {
	if number == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "phone number is required")
	}
	if err := s.repo.UpdateNumber(ctx, id, number); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update phone")
	}
	return nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete phone")
	}
	return nil
}
