package attendances

import (
	"context"
	"fmt"

	"github.com/desklino/desklino-backend/pkg/db/models"
	pkgerrors "github.com/desklino/desklino-backend/pkg/errors"
	"github.com/desklino/desklino-backend/pkg/logger"
	"gorm.io/gorm"
)

// defaultRecentLimit bounds the contact log when callers pass no limit.
const defaultRecentLimit = 20

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes the append-only contact log.
type Service interface {
	FindRecent(ctx context.Context, limit int) ([]Row, error)
	Create(ctx context.Context, clientID int64, attendant string) (int64, bool, error)
}

type service struct {
	repo Repository
	tx   txRunner
	log  *logger.Logger
}

// NewService builds an attendance service with the required dependencies.
func NewService(repo Repository, tx txRunner, log *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("attendances repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, log: log}, nil
}

func (s *service) FindRecent(ctx context.Context, limit int) ([]Row, error) {
	if limit < 1 {
		limit = defaultRecentLimit
	}
	rows, err := s.repo.FindRecent(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list recent attendances")
	}
	return rows, nil
}

// Create logs a standalone contact. The attendant is matched by name or
// login; when nothing matches the call is a no-op and the second return
// value is false, never an error.
func (s *service) Create(ctx context.Context, clientID int64, attendant string) (int64, bool, error) {
	match, err := s.repo.FindAttendantByNameOrLogin(ctx, attendant)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			s.log.Warn(s.log.WithField(ctx, "attendant", attendant), "attendance skipped, attendant not matched")
			return 0, false, nil
		}
		return 0, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve attendant")
	}

	attendance := &models.Attendance{ClientID: clientID, AttendantID: match.ID}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, attendance); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert attendance")
		}
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return attendance.ID, true, nil
}
