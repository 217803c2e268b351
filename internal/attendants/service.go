package attendants

import (
	"context"
	"fmt"

	"github.com/desklino/desklino-backend/pkg/db"
	"github.com/desklino/desklino-backend/pkg/db/models"
	"github.com/desklino/desklino-backend/pkg/enums"
	pkgerrors "github.com/desklino/desklino-backend/pkg/errors"
	"github.com/desklino/desklino-backend/pkg/validate"
	"gorm.io/gorm"
)

// CreateAttendantInput registers a new operator. PasswordHash is stored as
// given; hashing happens in an outer layer.
type CreateAttendantInput struct {
	Login        string `json:"login" validate:"required"`
	Name         string `json:"name" validate:"required"`
	PasswordHash string `json:"password_hash" validate:"required"`
	Role         string `json:"role"`
}

// Service exposes attendant management.
type Service interface {
	FindByLogin(ctx context.Context, login string) (*models.Attendant, error)
	FindByID(ctx context.Context, id int64) (*models.Attendant, error)
	List(ctx context.Context) ([]models.Attendant, error)
	Create(ctx context.Context, input CreateAttendantInput) (int64, error)
	UpdateRole(ctx context.Context, id int64, role string) error
}

type service struct {
	repo *Repository
}

// NewService builds an attendant service with the required dependencies.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("attendants repository required")
	}
	return &service{repo: repo}, nil
}

// FindByLogin resolves an attendant by login. A miss is a soft not-found:
// (nil, nil).
func (s *service) FindByLogin(ctx context.Context, login string) (*models.Attendant, error) {
	attendant, err := s.repo.FindByLogin(ctx, login)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find attendant by login")
	}
	return attendant, nil
}

func (s *service) FindByID(ctx context.Context, id int64) (*models.Attendant, error) {
	attendant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load attendant")
	}
	return attendant, nil
}

func (s *service) List(ctx context.Context) ([]models.Attendant, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list attendants")
	}
	return rows, nil
}

// Create registers an attendant. Role defaults to attendant and a taken
// login surfaces as a conflict.
func (s *service) Create(ctx context.Context, input CreateAttendantInput) (int64, error) {
	if err := validate.Struct(input); err != nil {
		return 0, err
	}

	role := enums.AttendantRoleAttendant
	if input.Role != "" {
		parsed, err := enums.ParseAttendantRole(input.Role)
		if err != nil {
			return 0, pkgerrors.New(pkgerrors.CodeInvalidOperation, "unknown attendant role").
				WithDetails(map[string]string{"role": input.Role})
		}
		role = parsed
	}

	attendant := &models.Attendant{
		Login:        input.Login,
		Name:         input.Name,
		PasswordHash: input.PasswordHash,
		Role:         role,
	}
	if err := s.repo.Create(ctx, attendant); err != nil {
		if db.IsUniqueViolation(err, "login") {
			return 0, pkgerrors.New(pkgerrors.CodeConflict, "login already in use")
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert attendant")
	}
	return attendant.ID, nil
}

// UpdateRole changes an attendant's role. Unknown role values are rejected
// before any write.
func (s *service) UpdateRole(ctx context.Context, id int64, role string) error {
	parsed, err := enums.ParseAttendantRole(role)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeInvalidOperation, "unknown attendant role").
			WithDetails(map[string]string{"role": role})
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "attendant not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load attendant")
	}

	if err := s.repo.UpdateRole(ctx, id, parsed); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update attendant role")
	}
	return nil
}
