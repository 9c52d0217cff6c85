// Package cards manages credit cards and their outstanding debt.
package cards

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

// Service manages credit cards.
type Service struct {
	db *storage.DB
}

// NewService creates a card Service.
func NewService(db *storage.DB) *Service {
	return &Service{db: db}
}

// CreateParams holds the fields of a new card. Active defaults to true and
// Currency to ARS.
type CreateParams struct {
	Name        string
	LastFour    string
	ClosingDay  int
	DueDay      int
	CreditLimit decimal.NullDecimal
	Currency    string
	Bank        string
	Active      *bool
	AccountID   *int64
}

// Create stores a card. A linked account must belong to the organization.
func (s *Service) Create(ctx context.Context, orgID, userID int64, p CreateParams) (model.CreditCard, error) {
	c := model.CreditCard{
		OrgID:       orgID,
		Name:        strings.TrimSpace(p.Name),
		LastFour:    p.LastFour,
		ClosingDay:  p.ClosingDay,
		DueDay:      p.DueDay,
		CreditLimit: p.CreditLimit,
		Currency:    strings.ToUpper(strings.TrimSpace(p.Currency)),
		Bank:        p.Bank,
		Active:      true,
		AccountID:   p.AccountID,
		CreatedBy:   userID,
	}
	if c.Currency == "" {
		c.Currency = model.DefaultCardCurrency
	}
	if p.Active != nil {
		c.Active = *p.Active
	}
	if err := validate(c); err != nil {
		return model.CreditCard{}, err
	}

	q := s.db.Queries()
	if err := s.linkAccount(ctx, q, &c); err != nil {
		return model.CreditCard{}, err
	}
	if err := q.InsertCard(ctx, &c); err != nil {
		return model.CreditCard{}, err
	}

	logger.FromContext(ctx).Info().
		Int64("card_id", c.ID).
		Str("name", c.Name).
		Int("closing_day", c.ClosingDay).
		Int("due_day", c.DueDay).
		Msg("credit card created")
	return c, nil
}

// UpdateParams lists the fields to change; nil fields are left alone.
// ClearLimit and ClearAccount remove the limit and the linked account.
type UpdateParams struct {
	Name         *string
	LastFour     *string
	ClosingDay   *int
	DueDay       *int
	CreditLimit  *decimal.Decimal
	ClearLimit   bool
	Currency     *string
	Bank         *string
	Active       *bool
	AccountID    *int64
	ClearAccount bool
}

// Update changes a card. Installments already scheduled keep their due
// dates.
func (s *Service) Update(ctx context.Context, orgID, id int64, p UpdateParams) (model.CreditCard, error) {
	q := s.db.Queries()
	c, err := q.GetCard(ctx, orgID, id)
	if err != nil {
		return model.CreditCard{}, err
	}

	if p.Name != nil {
		c.Name = strings.TrimSpace(*p.Name)
	}
	if p.LastFour != nil {
		c.LastFour = *p.LastFour
	}
	if p.ClosingDay != nil {
		c.ClosingDay = *p.ClosingDay
	}
	if p.DueDay != nil {
		c.DueDay = *p.DueDay
	}
	switch {
	case p.ClearLimit:
		c.CreditLimit = decimal.NullDecimal{}
	case p.CreditLimit != nil:
		c.CreditLimit = decimal.NewNullDecimal(*p.CreditLimit)
	}
	if p.Currency != nil {
		c.Currency = strings.ToUpper(strings.TrimSpace(*p.Currency))
	}
	if p.Bank != nil {
		c.Bank = *p.Bank
	}
	if p.Active != nil {
		c.Active = *p.Active
	}
	switch {
	case p.ClearAccount:
		c.AccountID = nil
		c.AccountName = ""
	case p.AccountID != nil:
		c.AccountID = p.AccountID
	}
	if err := validate(c); err != nil {
		return model.CreditCard{}, err
	}
	if err := s.linkAccount(ctx, q, &c); err != nil {
		return model.CreditCard{}, err
	}
	if err := q.UpdateCard(ctx, &c); err != nil {
		return model.CreditCard{}, err
	}
	return c, nil
}

// Delete removes a card that no purchase references.
func (s *Service) Delete(ctx context.Context, orgID, id int64) error {
	if err := s.db.Queries().DeleteCard(ctx, orgID, id); err != nil {
		return err
	}
	logger.FromContext(ctx).Info().Int64("card_id", id).Msg("credit card deleted")
	return nil
}

// Get returns a card with its debt.
func (s *Service) Get(ctx context.Context, orgID, id int64) (model.CardSummary, error) {
	q := s.db.Queries()
	c, err := q.GetCard(ctx, orgID, id)
	if err != nil {
		return model.CardSummary{}, err
	}
	return summarize(ctx, q, c)
}

// List returns every card with its debt, ordered by name.
func (s *Service) List(ctx context.Context, orgID int64) ([]model.CardSummary, error) {
	return s.list(ctx, orgID, false)
}

// ListActive returns the active cards with their debt.
func (s *Service) ListActive(ctx context.Context, orgID int64) ([]model.CardSummary, error) {
	return s.list(ctx, orgID, true)
}

func (s *Service) list(ctx context.Context, orgID int64, activeOnly bool) ([]model.CardSummary, error) {
	q := s.db.Queries()
	cards, err := q.ListCards(ctx, orgID, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]model.CardSummary, 0, len(cards))
	for _, c := range cards {
		sum, err := summarize(ctx, q, c)
		if err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, nil
}

// Summarize attaches the current debt and available credit to a card.
// Available credit is absent when the card has no limit.
func Summarize(c model.CreditCard, debt decimal.Decimal) model.CardSummary {
	sum := model.CardSummary{CreditCard: c, CurrentDebt: debt}
	if c.CreditLimit.Valid {
		available := c.CreditLimit.Decimal.Sub(debt)
		sum.AvailableCredit = &available
	}
	return sum
}

func summarize(ctx context.Context, q *storage.Queries, c model.CreditCard) (model.CardSummary, error) {
	debt, err := q.UnpaidTotal(ctx, c.OrgID, c.ID)
	if err != nil {
		return model.CardSummary{}, fmt.Errorf("card %d debt: %w", c.ID, err)
	}
	return Summarize(c, debt), nil
}

func (s *Service) linkAccount(ctx context.Context, q *storage.Queries, c *model.CreditCard) error {
	if c.AccountID == nil {
		return nil
	}
	a, err := q.GetAccount(ctx, c.OrgID, *c.AccountID)
	if err != nil {
		return fmt.Errorf("linked account: %w", err)
	}
	c.AccountName = a.Name
	return nil
}

func validate(c model.CreditCard) error {
	var errs []error
	if c.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if c.ClosingDay < 1 || c.ClosingDay > 31 {
		errs = append(errs, fmt.Errorf("closing day %d outside 1..31", c.ClosingDay))
	}
	if c.DueDay < 1 || c.DueDay > 31 {
		errs = append(errs, fmt.Errorf("due day %d outside 1..31", c.DueDay))
	}
	if c.LastFour != "" && len(c.LastFour) != 4 {
		errs = append(errs, fmt.Errorf("last four %q must have 4 digits", c.LastFour))
	}
	if c.CreditLimit.Valid {
		if c.CreditLimit.Decimal.IsNegative() {
			errs = append(errs, fmt.Errorf("credit limit %s is negative", c.CreditLimit.Decimal))
		} else if !money.IsMinorUnit(c.CreditLimit.Decimal) {
			errs = append(errs, fmt.Errorf("credit limit %s has more than %d decimal places", c.CreditLimit.Decimal, money.Places))
		}
	}
	if len(c.Currency) != 3 {
		errs = append(errs, fmt.Errorf("currency %q is not a 3-letter code", c.Currency))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", model.ErrValidation, errors.Join(errs...))
	}
	return nil
}
