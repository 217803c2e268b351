package clients

import (
	"context"
	"fmt"

	"github.com/desklino/desklino-backend/pkg/db/models"
	"github.com/desklino/desklino-backend/pkg/enums"
	pkgerrors "github.com/desklino/desklino-backend/pkg/errors"
	"github.com/desklino/desklino-backend/pkg/pagination"
	"github.com/desklino/desklino-backend/pkg/validate"
	"gorm.io/gorm"
)

// searchPageSize caps attendant-facing search results.
const searchPageSize = 10

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes client operations.
type Service interface {
	FindByPhone(ctx context.Context, phone string) (*ClientDetail, error)
	FindByID(ctx context.Context, id int64) (*ClientDetail, error)
	Search(ctx context.Context, term string) ([]ClientDetail, error)
	List(ctx context.Context, params pagination.Params, search string) (*ClientPage, error)
	Create(ctx context.Context, input CreateClientInput) (int64, error)
	Update(ctx context.Context, id int64, input UpdateClientInput) error
	Delete(ctx context.Context, id int64) error
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds a client service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("clients repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// FindByPhone resolves a caller by one of their phone numbers. A miss is a
// soft not-found: (nil, nil).
func (s *service) FindByPhone(ctx context.Context, phone string) (*ClientDetail, error) {
	match, err := s.repo.FindPhoneByNumber(ctx, phone)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find phone by number")
	}

	detail, err := s.loadDetail(ctx, s.repo, match.ClientID)
	if err != nil {
		return nil, err
	}
	if detail != nil {
		detail.Phone = match.Number
	}
	return detail, nil
}

func (s *service) FindByID(ctx context.Context, id int64) (*ClientDetail, error) {
	return s.loadDetail(ctx, s.repo, id)
}

// Search matches clients by a case-insensitive substring on name or email,
// capped at a fixed page size and ordered by name.
func (s *service) Search(ctx context.Context, term string) ([]ClientDetail, error) {
	rows, err := s.repo.SearchClients(ctx, term, searchPageSize)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search clients")
	}

	results := make([]ClientDetail, 0, len(rows))
	seen := make(map[int64]bool, len(rows))
	for _, row := range rows {
		if seen[row.ID] {
			continue
		}
		seen[row.ID] = true

		detail, err := s.composeDetail(ctx, s.repo, &row, true)
		if err != nil {
			return nil, err
		}
		results = append(results, *detail)
	}
	return results, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, search string) (*ClientPage, error) {
	params = params.Normalize()
	rows, total, err := s.repo.ListClients(ctx, params, search)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list clients")
	}

	page := &ClientPage{
		Rows:     make([]ClientSummary, 0, len(rows)),
		Total:    total,
		Page:     params.Page,
		PageSize: params.PageSize,
	}
	for _, row := range rows {
		summary := ClientSummary{
			ID:    row.ID,
			Name:  row.Name,
			Email: row.Email,
			Type:  row.Type,
			Notes: row.Notes,
		}
		if phone, err := s.repo.FirstPhone(ctx, row.ID); err == nil {
			summary.Phone = phone.Number
		} else if err != gorm.ErrRecordNotFound {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load client phone")
		}
		doc, err := s.repo.FindDocument(ctx, row.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load client document")
		}
		summary.Document = doc
		page.Rows = append(page.Rows, summary)
	}
	return page, nil
}

// Create registers the client, their first phone, an optional principal
// address and the document variant in one transaction.
func (s *service) Create(ctx context.Context, input CreateClientInput) (int64, error) {
	if err := validate.Struct(input); err != nil {
		return 0, err
	}
	clientType := input.Type
	if clientType == "" {
		clientType = enums.ClientTypeIndividual
	}
	if err := checkDocument(clientType, input.Document); err != nil {
		return 0, err
	}

	var clientID int64
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		client := &models.Client{
			Name:  input.Name,
			Email: input.Email,
			Type:  clientType,
			Notes: input.Notes,
		}
		if err := repo.CreateClient(ctx, client); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert client")
		}
		clientID = client.ID

		if input.Email == "" {
			email := fmt.Sprintf("cliente%d@desklino.com", clientID)
			if err := repo.UpdateClientFields(ctx, clientID, map[string]any{"email": email}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "default client email")
			}
		}

		if err := repo.CreatePhone(ctx, &models.Phone{ClientID: clientID, Number: input.Phone}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert first phone")
		}

		if addr := input.Address; addr != nil && addr.Street != "" && addr.Neighborhood != "" {
			label := addr.Label
			if label == "" {
				label = "Principal"
			}
			number := addr.Number
			if number == "" {
				number = "S/N"
			}
			address := &models.Address{
				ClientID:      clientID,
				Label:         label,
				Street:        addr.Street,
				Number:        number,
				Complement:    addr.Complement,
				Neighborhood:  addr.Neighborhood,
				ReferenceNote: addr.ReferenceNote,
				IsPrincipal:   true,
			}
			if err := repo.CreateAddress(ctx, address); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert first address")
			}
		}

		if input.Document != "" {
			if err := upsertDocument(ctx, repo, clientID, clientType, input.Document); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return clientID, nil
}

// Update merges the supplied fields; when both document and type are given
// the document row of the other variant is removed first.
func (s *service) Update(ctx context.Context, id int64, input UpdateClientInput) error {
	if err := validate.Struct(input); err != nil {
		return err
	}
	if input.Document != nil && input.Type != nil {
		if err := checkDocument(*input.Type, *input.Document); err != nil {
			return err
		}
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		updates := map[string]any{}
		if input.Name != nil {
			updates["name"] = *input.Name
		}
		if input.Email != nil {
			updates["email"] = *input.Email
		}
		if input.Type != nil {
			updates["type"] = *input.Type
		}
		if input.Notes != nil {
			updates["notes"] = *input.Notes
		}
		if err := repo.UpdateClientFields(ctx, id, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update client fields")
		}

		if input.Document != nil && input.Type != nil {
			switch *input.Type {
			case enums.ClientTypeIndividual:
				if err := repo.DeleteOrganizationDocument(ctx, id); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "drop organization document")
				}
			case enums.ClientTypeOrganization:
				if err := repo.DeleteIndividualDocument(ctx, id); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "drop individual document")
				}
			}
			if err := upsertDocument(ctx, repo, id, *input.Type, *input.Document); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a client and all dependent rows, refusing when the client
// owns any order.
func (s *service) Delete(ctx context.Context, id int64) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		orders, err := repo.CountOrdersByClient(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count client orders")
		}
		if orders > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "client has orders and cannot be deleted")
		}

		if err := repo.DeleteClientCascade(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete client")
		}
		return nil
	})
}

func (s *service) loadDetail(ctx context.Context, repo Repository, clientID int64) (*ClientDetail, error) {
	client, err := repo.FindClient(ctx, clientID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load client")
	}
	return s.composeDetail(ctx, repo, client, false)
}

func (s *service) composeDetail(ctx context.Context, repo Repository, client *models.Client, allPhones bool) (*ClientDetail, error) {
	detail := &ClientDetail{
		ID:    client.ID,
		Name:  client.Name,
		Email: client.Email,
		Type:  client.Type,
		Notes: client.Notes,
	}

	if phone, err := repo.FirstPhone(ctx, client.ID); err == nil {
		detail.Phone = phone.Number
	} else if err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load client phone")
	}

	if allPhones {
		numbers, err := repo.PhoneNumbers(ctx, client.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load client phones")
		}
		detail.Phones = numbers
	}

	if address, err := repo.PrincipalAddress(ctx, client.ID); err == nil {
		detail.Address = &AddressDetail{
			ID:            address.ID,
			Label:         address.Label,
			Street:        address.Street,
			Number:        address.Number,
			Complement:    address.Complement,
			Neighborhood:  address.Neighborhood,
			ReferenceNote: address.ReferenceNote,
			IsPrincipal:   address.IsPrincipal,
		}
	} else if err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load principal address")
	}

	doc, err := repo.FindDocument(ctx, client.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load client document")
	}
	detail.Document = doc

	return detail, nil
}

func upsertDocument(ctx context.Context, repo Repository, clientID int64, clientType enums.ClientType, number string) error {
	switch clientType {
	case enums.ClientTypeIndividual:
		if err := repo.UpsertIndividualDocument(ctx, clientID, number); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert individual document")
		}
	case enums.ClientTypeOrganization:
		if err := repo.UpsertOrganizationDocument(ctx, clientID, number); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert organization document")
		}
	}
	return nil
}

func checkDocument(clientType enums.ClientType, number string) error {
	if number == "" {
		return nil
	}
	switch clientType {
	case enums.ClientTypeIndividual:
		if len(number) != 11 {
			return pkgerrors.New(pkgerrors.CodeValidation, "individual document must have 11 digits")
		}
	case enums.ClientTypeOrganization:
		if len(number) != 14 {
			return pkgerrors.New(pkgerrors.CodeValidation, "organization document must have 14 digits")
		}
	}
	return nil
}
