package installments

import (
	"context"
	"fmt"
	"time"

	"github.com/cleared-dev/finanza/internal/logger"
	"github.com/cleared-dev/finanza/internal/model"
	"github.com/cleared-dev/finanza/internal/storage"
)

// Inserter stores an installment plan.
type Inserter interface {
	InsertInstallments(ctx context.Context, items []model.Installment) error
}

// Create plans a purchase and stores every installment. Callers run it in
// the same SQL transaction that records the purchase.
func Create(ctx context.Context, store Inserter, purchase model.Transaction, card model.CreditCard, total int) ([]model.Installment, error) {
	items, err := Plan(purchase, card, total)
	if err != nil {
		return nil, err
	}
	if err := store.InsertInstallments(ctx, items); err != nil {
		return nil, fmt.Errorf("storing installments of transaction %d: %w", purchase.ID, err)
	}
	logger.FromContext(ctx).Info().
		Int64("transaction_id", purchase.ID).
		Int64("card_id", card.ID).
		Int("installments", total).
		Str("first_due", items[0].DueDate.Format("2006-01-02")).
		Msg("installments scheduled")
	return items, nil
}

// Service tracks installment payments.
type Service struct {
	db    *storage.DB
	clock func() time.Time
}

// NewService creates an installments Service. A nil clock means time.Now.
func NewService(db *storage.DB, clock func() time.Time) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{db: db, clock: clock}
}

// MarkPaid records an installment as paid today.
func (s *Service) MarkPaid(ctx context.Context, orgID, id int64) (model.Installment, error) {
	now := s.clock()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return s.setPaid(ctx, orgID, id, true, &today)
}

// MarkUnpaid clears an installment's payment.
func (s *Service) MarkUnpaid(ctx context.Context, orgID, id int64) (model.Installment, error) {
	return s.setPaid(ctx, orgID, id, false, nil)
}

func (s *Service) setPaid(ctx context.Context, orgID, id int64, paid bool, on *time.Time) (model.Installment, error) {
	q := s.db.Queries()
	in, err := q.GetInstallment(ctx, id)
	if err != nil {
		return model.Installment{}, err
	}
	if in.OrgID != orgID {
		return model.Installment{}, fmt.Errorf("installment %d: %w", id, model.ErrUnauthorized)
	}
	if err := q.SetInstallmentPaid(ctx, id, paid, on); err != nil {
		return model.Installment{}, err
	}
	in.Paid = paid
	in.PaidDate = on

	logger.FromContext(ctx).Info().
		Int64("installment_id", id).
		Bool("paid", paid).
		Msg("installment updated")
	return in, nil
}

// Upcoming returns installments due within [from, to].
func (s *Service) Upcoming(ctx context.Context, orgID int64, from, to time.Time) ([]model.Installment, error) {
	return s.db.Queries().InstallmentsDueBetween(ctx, orgID, from, to)
}

// Unpaid returns every unpaid installment, soonest first.
func (s *Service) Unpaid(ctx context.Context, orgID int64) ([]model.Installment, error) {
	return s.db.Queries().UnpaidInstallments(ctx, orgID)
}

// ByCard returns a card's installments ordered by due date then number.
func (s *Service) ByCard(ctx context.Context, orgID, cardID int64) ([]model.Installment, error) {
	q := s.db.Queries()
	if _, err := q.GetCard(ctx, orgID, cardID); err != nil {
		return nil, err
	}
	return q.InstallmentsByCard(ctx, orgID, cardID)
}

// ByTransaction returns the plan of one financed purchase.
func (s *Service) ByTransaction(ctx context.Context, orgID, transactionID int64) ([]model.Installment, error) {
	return s.db.Queries().InstallmentsByTransaction(ctx, orgID, transactionID)
}
