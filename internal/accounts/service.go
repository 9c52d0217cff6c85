// Package accounts manages the places money is held. Balances are owned by
// the ledger and never written here.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/finanza/internal/logger"
	"github.com/cleared-dev/finanza/internal/model"
	"github.com/cleared-dev/finanza/internal/money"
	"github.com/cleared-dev/finanza/internal/storage"
)

// Service provides account CRUD scoped to an organization.
type Service struct {
	db *storage.DB
}

// NewService creates an account Service.
func NewService(db *storage.DB) *Service {
	return &Service{db: db}
}

// CreateParams holds the fields of a new account.
type CreateParams struct {
	Name           string
	Type           model.AccountType
	OpeningBalance decimal.Decimal
	Currency       string
	Description    string
}

// Create stores an active account. Currency defaults to USD.
func (s *Service) Create(ctx context.Context, orgID, userID int64, p CreateParams) (model.Account, error) {
	a := model.Account{
		OrgID:       orgID,
		Name:        strings.TrimSpace(p.Name),
		Type:        p.Type,
		Balance:     p.OpeningBalance,
		Currency:    strings.ToUpper(strings.TrimSpace(p.Currency)),
		Description: p.Description,
		Active:      true,
		CreatedBy:   userID,
	}
	if a.Currency == "" {
		a.Currency = model.DefaultAccountCurrency
	}
	if err := validate(a); err != nil {
		return model.Account{}, err
	}
	if err := s.db.Queries().InsertAccount(ctx, &a); err != nil {
		return model.Account{}, err
	}

	logger.FromContext(ctx).Info().
		Int64("account_id", a.ID).
		Str("name", a.Name).
		Str("type", string(a.Type)).
		Str("balance", a.Balance.StringFixed(2)).
		Msg("account created")
	return a, nil
}

// UpdateParams lists the fields to change; nil fields are left alone.
type UpdateParams struct {
	Name        *string
	Type        *model.AccountType
	Currency    *string
	Description *string
	Active      *bool
}

// Update changes an account's descriptive fields.
func (s *Service) Update(ctx context.Context, orgID, id int64, p UpdateParams) (model.Account, error) {
	q := s.db.Queries()
	a, err := q.GetAccount(ctx, orgID, id)
	if err != nil {
		return model.Account{}, err
	}
	if p.Name != nil {
		a.Name = strings.TrimSpace(*p.Name)
	}
	if p.Type != nil {
		a.Type = *p.Type
	}
	if p.Currency != nil {
		a.Currency = strings.ToUpper(strings.TrimSpace(*p.Currency))
	}
	if p.Description != nil {
		a.Description = *p.Description
	}
	if p.Active != nil {
		a.Active = *p.Active
	}
	if err := validate(a); err != nil {
		return model.Account{}, err
	}
	if err := q.UpdateAccount(ctx, &a); err != nil {
		return model.Account{}, err
	}
	return a, nil
}

// Deactivate hides an account from new activity. Its history stays.
func (s *Service) Deactivate(ctx context.Context, orgID, id int64) error {
	inactive := false
	if _, err := s.Update(ctx, orgID, id, UpdateParams{Active: &inactive}); err != nil {
		return err
	}
	logger.FromContext(ctx).Info().Int64("account_id", id).Msg("account deactivated")
	return nil
}

// Get returns an account by ID.
func (s *Service) Get(ctx context.Context, orgID, id int64) (model.Account, error) {
	return s.db.Queries().GetAccount(ctx, orgID, id)
}

// List returns every account, active or not, ordered by name.
func (s *Service) List(ctx context.Context, orgID int64) ([]model.Account, error) {
	return s.db.Queries().ListAccounts(ctx, orgID, false)
}

// ListActive returns the active accounts ordered by name.
func (s *Service) ListActive(ctx context.Context, orgID int64) ([]model.Account, error) {
	return s.db.Queries().ListAccounts(ctx, orgID, true)
}

// Seed creates the default accounts. Names that already exist are skipped.
func (s *Service) Seed(ctx context.Context, orgID, userID int64) ([]model.Account, error) {
	existing, err := s.List(ctx, orgID)
	if err != nil {
		return nil, err
	}
	have := make(map[string]bool, len(existing))
	for _, a := range existing {
		have[strings.ToLower(a.Name)] = true
	}

	var created []model.Account
	for _, d := range DefaultAccounts() {
		if have[strings.ToLower(d.Name)] {
			continue
		}
		a, err := s.Create(ctx, orgID, userID, CreateParams{
			Name:        d.Name,
			Type:        d.Type,
			Currency:    d.Currency,
			Description: d.Description,
		})
		if err != nil {
			return nil, fmt.Errorf("seeding %q: %w", d.Name, err)
		}
		created = append(created, a)
	}
	return created, nil
}

func validate(a model.Account) error {
	var errs []error
	if a.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if !a.Type.Valid() {
		errs = append(errs, fmt.Errorf("account type %q is invalid", a.Type))
	}
	if len(a.Currency) != 3 {
		errs = append(errs, fmt.Errorf("currency %q is not a 3-letter code", a.Currency))
	}
	if !money.IsMinorUnit(a.Balance) {
		errs = append(errs, fmt.Errorf("balance %s has more than %d decimal places", a.Balance, money.Places))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", model.ErrValidation, errors.Join(errs...))
	}
	return nil
}
