// Package categories manages the labels used by budgets, rules and reports.
package categories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cleared-dev/finanza/internal/logger"
	"github.com/cleared-dev/finanza/internal/model"
	"github.com/cleared-dev/finanza/internal/storage"
)

// Service manages categories.
type Service struct {
	db *storage.DB
}

// NewService creates a category Service.
func NewService(db *storage.DB) *Service {
	return &Service{db: db}
}

// CreateParams holds the fields of a new category.
type CreateParams struct {
	Name        string
	Description string
	Type        model.CategoryType
	Icon        string
	Color       string
}

// Create stores an active category. Names are unique per organization.
func (s *Service) Create(ctx context.Context, orgID, userID int64, p CreateParams) (model.Category, error) {
	c := model.Category{
		OrgID:       orgID,
		Name:        strings.TrimSpace(p.Name),
		Description: p.Description,
		Type:        p.Type,
		Icon:        p.Icon,
		Color:       p.Color,
		Active:      true,
		CreatedBy:   userID,
	}
	if err := validate(c); err != nil {
		return model.Category{}, err
	}

	q := s.db.Queries()
	exists, err := q.CategoryNameExists(ctx, orgID, c.Name)
	if err != nil {
		return model.Category{}, err
	}
	if exists {
		return model.Category{}, fmt.Errorf("category %q already exists: %w", c.Name, model.ErrConflict)
	}
	if err := q.InsertCategory(ctx, &c); err != nil {
		return model.Category{}, err
	}

	logger.FromContext(ctx).Info().
		Int64("category_id", c.ID).
		Str("name", c.Name).
		Str("type", string(c.Type)).
		Msg("category created")
	return c, nil
}

// UpdateParams lists the fields to change; nil fields are left alone.
type UpdateParams struct {
	Name        *string
	Description *string
	Type        *model.CategoryType
	Icon        *string
	Color       *string
}

// Update changes a category. Renaming onto another category's name is a
// conflict.
func (s *Service) Update(ctx context.Context, orgID, id int64, p UpdateParams) (model.Category, error) {
	q := s.db.Queries()
	c, err := q.GetCategory(ctx, orgID, id)
	if err != nil {
		return model.Category{}, err
	}

	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name != c.Name {
			exists, err := q.CategoryNameExists(ctx, orgID, name)
			if err != nil {
				return model.Category{}, err
			}
			if exists {
				return model.Category{}, fmt.Errorf("category %q already exists: %w", name, model.ErrConflict)
			}
		}
		c.Name = name
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
	if p.Icon != nil {
		c.Icon = *p.Icon
	}
	if p.Color != nil {
		c.Color = *p.Color
	}
	if err := validate(c); err != nil {
		return model.Category{}, err
	}
	if err := q.UpdateCategory(ctx, &c); err != nil {
		return model.Category{}, err
	}
	return c, nil
}

// Delete deactivates a category. Transactions, rules and budgets that
// reference it keep their link.
func (s *Service) Delete(ctx context.Context, orgID, id int64) error {
	q := s.db.Queries()
	c, err := q.GetCategory(ctx, orgID, id)
	if err != nil {
		return err
	}
	c.Active = false
	if err := q.UpdateCategory(ctx, &c); err != nil {
		return err
	}
	logger.FromContext(ctx).Info().Int64("category_id", id).Str("name", c.Name).Msg("category deleted")
	return nil
}

// Get returns a category, active or not.
func (s *Service) Get(ctx context.Context, orgID, id int64) (model.Category, error) {
	return s.db.Queries().GetCategory(ctx, orgID, id)
}

// List returns the active categories ordered by name.
func (s *Service) List(ctx context.Context, orgID int64) ([]model.Category, error) {
	return s.db.Queries().ListCategories(ctx, orgID, "")
}

// ListByType returns the active categories of one type ordered by name.
func (s *Service) ListByType(ctx context.Context, orgID int64, typ model.CategoryType) ([]model.Category, error) {
	return s.db.Queries().ListCategories(ctx, orgID, typ)
}

// Seed creates the default categories that do not exist yet.
func (s *Service) Seed(ctx context.Context, orgID, userID int64) ([]model.Category, error) {
	var created []model.Category
	for _, d := range DefaultCategories() {
		c, err := s.Create(ctx, orgID, userID, CreateParams{Name: d.Name, Type: d.Type, Icon: d.Icon, Color: d.Color})
		if errors.Is(err, model.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("seeding %q: %w", d.Name, err)
		}
		created = append(created, c)
	}
	return created, nil
}

// DefaultCategories returns the categories a new organization starts with.
func DefaultCategories() []model.Category {
	return []model.Category{
		{Name: "Salary", Type: model.CategoryIncome, Icon: "briefcase", Color: "#2e7d32"},
		{Name: "Freelance", Type: model.CategoryIncome, Icon: "laptop", Color: "#558b2f"},
		{Name: "Interest", Type: model.CategoryIncome, Icon: "percent", Color: "#9e9d24"},
		{Name: "Food", Type: model.CategoryExpense, Icon: "utensils", Color: "#ef6c00"},
		{Name: "Rent", Type: model.CategoryExpense, Icon: "home", Color: "#6a1b9a"},
		{Name: "Transport", Type: model.CategoryExpense, Icon: "bus", Color: "#1565c0"},
		{Name: "Utilities", Type: model.CategoryExpense, Icon: "bolt", Color: "#f9a825"},
		{Name: "Health", Type: model.CategoryExpense, Icon: "heart", Color: "#c62828"},
		{Name: "Entertainment", Type: model.CategoryExpense, Icon: "film", Color: "#ad1457"},
		{Name: "Taxes", Type: model.CategoryExpense, Icon: "landmark", Color: "#455a64"},
	}
}

func validate(c model.Category) error {
	var errs []error
	if c.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if c.Type != model.CategoryIncome && c.Type != model.CategoryExpense {
		errs = append(errs, fmt.Errorf("category type %q is invalid", c.Type))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", model.ErrValidation, errors.Join(errs...))
	}
	return nil
}
