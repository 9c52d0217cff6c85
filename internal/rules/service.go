package rules

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/finanza/internal/logger"
	"github.com/cleared-dev/finanza/internal/model"
	"github.com/cleared-dev/finanza/internal/storage"
)

// Lister loads an organization's active rules in evaluation order.
type Lister interface {
	ListActiveRules(ctx context.Context, orgID int64) ([]model.CategoryRule, error)
}

// FindCategory returns the category of the first active rule matching the
// description and amount, or nil when none does.
func FindCategory(ctx context.Context, rules Lister, orgID int64, description string, amount decimal.Decimal) (*int64, error) {
	active, err := rules.ListActiveRules(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}
	r, ok := Match(ctx, active, description, amount)
	if !ok {
		return nil, nil
	}
	logger.FromContext(ctx).Debug().
		Int64("rule_id", r.ID).
		Int64("category_id", r.CategoryID).
		Str("description", description).
		Msg("rule matched")
	id := r.CategoryID
	return &id, nil
}

// Service manages category rules.
type Service struct {
	db *storage.DB
}

// NewService creates a rules Service.
func NewService(db *storage.DB) *Service {
	return &Service{db: db}
}

// FindCategory matches against the organization's stored rules.
func (s *Service) FindCategory(ctx context.Context, orgID int64, description string, amount decimal.Decimal) (*int64, error) {
	return FindCategory(ctx, s.db.Queries(), orgID, description, amount)
}

// Test returns the rule that would categorize the description and amount.
func (s *Service) Test(ctx context.Context, orgID int64, description string, amount decimal.Decimal) (model.CategoryRule, bool, error) {
	active, err := s.db.Queries().ListActiveRules(ctx, orgID)
	if err != nil {
		return model.CategoryRule{}, false, fmt.Errorf("loading rules: %w", err)
	}
	r, ok := Match(ctx, active, description, amount)
	return r, ok, nil
}

// CreateParams holds the fields of a new rule.
type CreateParams struct {
	Name        string
	Description string
	Kind        model.RuleKind
	Pattern     string
	CategoryID  int64
	Priority    int
	Active      *bool // nil means active
}

// Create stores a new rule. The target category must belong to the
// organization.
func (s *Service) Create(ctx context.Context, orgID, userID int64, p CreateParams) (model.CategoryRule, error) {
	r := model.CategoryRule{
		OrgID:       orgID,
		Name:        strings.TrimSpace(p.Name),
		Description: p.Description,
		Kind:        p.Kind,
		Pattern:     p.Pattern,
		CategoryID:  p.CategoryID,
		Active:      p.Active == nil || *p.Active,
		Priority:    p.Priority,
		CreatedBy:   userID,
	}
	if err := validate(r); err != nil {
		return model.CategoryRule{}, err
	}

	q := s.db.Queries()
	cat, err := q.GetCategory(ctx, orgID, r.CategoryID)
	if err != nil {
		return model.CategoryRule{}, err
	}
	if err := q.InsertRule(ctx, &r); err != nil {
		return model.CategoryRule{}, err
	}
	r.CategoryName = cat.Name

	logger.FromContext(ctx).Info().
		Int64("rule_id", r.ID).
		Str("kind", string(r.Kind)).
		Int("priority", r.Priority).
		Msg("rule created")
	return r, nil
}

// UpdateParams holds the fields to change; nil fields are left alone.
type UpdateParams struct {
	Name        *string
	Description *string
	Kind        *model.RuleKind
	Pattern     *string
	CategoryID  *int64
	Priority    *int
	Active      *bool
}

// Update applies a partial change to a rule.
func (s *Service) Update(ctx context.Context, orgID, id int64, p UpdateParams) (model.CategoryRule, error) {
	r, err := s.Get(ctx, orgID, id)
	if err != nil {
		return model.CategoryRule{}, err
	}
	if p.Name != nil {
		r.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Kind != nil {
		r.Kind = *p.Kind
	}
	if p.Pattern != nil {
		r.Pattern = *p.Pattern
	}
	if p.Priority != nil {
		r.Priority = *p.Priority
	}
	if p.Active != nil {
		r.Active = *p.Active
	}
	if err := validate(r); err != nil {
		return model.CategoryRule{}, err
	}

	q := s.db.Queries()
	if p.CategoryID != nil {
		cat, err := q.GetCategory(ctx, orgID, *p.CategoryID)
		if err != nil {
			return model.CategoryRule{}, err
		}
		r.CategoryID = cat.ID
		r.CategoryName = cat.Name
	}
	if err := q.UpdateRule(ctx, &r); err != nil {
		return model.CategoryRule{}, err
	}
	return r, nil
}

// Get returns a rule. A rule of another organization is unauthorized.
func (s *Service) Get(ctx context.Context, orgID, id int64) (model.CategoryRule, error) {
	r, err := s.db.Queries().GetRule(ctx, id)
	if err != nil {
		return model.CategoryRule{}, err
	}
	if r.OrgID != orgID {
		return model.CategoryRule{}, fmt.Errorf("rule %d: %w", id, model.ErrUnauthorized)
	}
	return r, nil
}

// List returns every rule of the organization, highest priority first.
func (s *Service) List(ctx context.Context, orgID int64) ([]model.CategoryRule, error) {
	return s.db.Queries().ListRules(ctx, orgID)
}

// Delete removes a rule.
func (s *Service) Delete(ctx context.Context, orgID, id int64) error {
	if _, err := s.Get(ctx, orgID, id); err != nil {
		return err
	}
	if err := s.db.Queries().DeleteRule(ctx, orgID, id); err != nil {
		return err
	}
	logger.FromContext(ctx).Info().Int64("rule_id", id).Msg("rule deleted")
	return nil
}

func validate(r model.CategoryRule) error {
	var errs []error
	if r.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if !r.Kind.Valid() {
		errs = append(errs, fmt.Errorf("unknown kind %q", r.Kind))
	}
	if r.Pattern == "" {
		errs = append(errs, errors.New("pattern is required"))
	} else if r.Kind.Valid() {
		if err := validatePattern(r.Kind, r.Pattern); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", model.ErrValidation, errors.Join(errs...))
	}
	return nil
}
