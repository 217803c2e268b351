package addresses

import (
	"context"
	"fmt"

	"github.com/desklino/desklino-backend/pkg/db/models"
	pkgerrors "github.com/desklino/desklino-backend/pkg/errors"
	"github.com/desklino/desklino-backend/pkg/validate"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// AddressInput carries the writable fields of a delivery address.
type AddressInput struct {
	Label         string  `json:"label"`
	Street        string  `json:"street" validate:"required"`
	Number        string  `json:"number"`
	Complement    *string `json:"complement"`
	Neighborhood  string  `json:"neighborhood" validate:"required"`
	ReferenceNote *string `json:"reference_note"`
	IsPrincipal   bool    `json:"is_principal"`
}

// Service maintains the delivery addresses of a client and the invariant
// that a client with addresses has exactly one principal address.
type Service interface {
	ListByClient(ctx context.Context, clientID int64) ([]models.Address, error)
	Add(ctx context.Context, clientID int64, input AddressInput) (int64, error)
	Update(ctx context.Context, clientID, addressID int64, input AddressInput) error
	SetPrincipal(ctx context.Context, clientID, addressID int64) error
	Delete(ctx context.Context, clientID, addressID int64) error
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds an address service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("addresses repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// ListByClient returns the client's addresses, principal first.
func (s *service) ListByClient(ctx context.Context, clientID int64) ([]models.Address, error) {
	rows, err := s.repo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list client addresses")
	}
	return rows, nil
}

// Add inserts a new address. A principal insert clears the flag on all
// siblings first; the client's first address always becomes principal.
func (s *service) Add(ctx context.Context, clientID int64, input AddressInput) (int64, error) {
	if err := validate.Struct(input); err != nil {
		return 0, err
	}

	address := newModel(clientID, input)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		count, err := repo.CountByClient(ctx, clientID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count client addresses")
		}
		if count == 0 {
			address.IsPrincipal = true
		}

		if address.IsPrincipal {
			if err := repo.ClearPrincipal(ctx, clientID, 0); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear principal flags")
			}
		}
		if err := repo.Create(ctx, address); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert address")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return address.ID, nil
}

// Update overwrites the full address row. Marking it principal clears the
// flag on the client's other addresses in the same transaction.
func (s *service) Update(ctx context.Context, clientID, addressID int64, input AddressInput) error {
	if err := validate.Struct(input); err != nil {
		return err
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.Find(ctx, clientID, addressID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load address")
		}

		if input.IsPrincipal {
			if err := repo.ClearPrincipal(ctx, clientID, addressID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear principal flags")
			}
		}

		updated := newModel(clientID, input)
		updated.ID = existing.ID
		if err := repo.Update(ctx, updated); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update address")
		}
		return nil
	})
}

// SetPrincipal clears all principal flags for the client and sets the
// target; two statements, one transaction.
func (s *service) SetPrincipal(ctx context.Context, clientID, addressID int64) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.Find(ctx, clientID, addressID); err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load address")
		}
		if err := repo.ClearPrincipal(ctx, clientID, 0); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear principal flags")
		}
		if err := repo.SetPrincipal(ctx, clientID, addressID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set principal address")
		}
		return nil
	})
}

// Delete removes an address unless it is the client's last one or is
// referenced by an order. Deleting the principal promotes an arbitrary
// remaining address.
func (s *service) Delete(ctx context.Context, clientID, addressID int64) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		count, err := repo.CountByClient(ctx, clientID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count client addresses")
		}
		if count <= 1 {
			return pkgerrors.New(pkgerrors.CodeInvalidOperation, "client must keep at least one address")
		}

		orders, err := repo.CountOrdersByAddress(ctx, addressID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count address orders")
		}
		if orders > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "address is referenced by existing orders")
		}

		target, err := repo.Find(ctx, clientID, addressID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load address")
		}

		if err := repo.Delete(ctx, clientID, addressID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete address")
		}

		if target.IsPrincipal {
			if err := repo.PromoteAny(ctx, clientID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "promote replacement principal")
			}
		}
		return nil
	})
}

func newModel(clientID int64, input AddressInput) *models.Address {
	label := input.Label
	if label == "" {
		label = "Principal"
	}
	number := input.Number
	if number == "" {
		number = "S/N"
	}
	return &models.Address{
		ClientID:      clientID,
		Label:         label,
		Street:        input.Street,
		Number:        number,
		Complement:    input.Complement,
		Neighborhood:  input.Neighborhood,
		ReferenceNote: input.ReferenceNote,
		IsPrincipal:   input.IsPrincipal,
	}
}
