package ledger

import (
	"context"
	"fmt"

	"github.com/cleared-dev/finanza/internal/events"
	"github.com/cleared-dev/finanza/internal/logger"
	"github.com/cleared-dev/finanza/internal/model"
	"github.com/cleared-dev/finanza/internal/storage"
)

// CreateTransfer moves money between two active accounts of the
// organization. It is the one path that refuses to overdraw: the source
// must hold at least the amount. Both balances and the transfer record are
// written together.
func (s *Service) CreateTransfer(ctx context.Context, orgID, userID int64, req TransferRequest) (model.Transaction, error) {
	if errs := ValidateTransfer(req); len(errs) > 0 {
		return model.Transaction{}, validationFailed(errs)
	}
	if req.FromAccountID == req.ToAccountID {
		return model.Transaction{}, fmt.Errorf("transfer from account %d to itself: %w",
			req.FromAccountID, model.ErrInvalidOperation)
	}

	var (
		txn      model.Transaction
		from, to model.Account
	)
	err := s.db.InTx(ctx, func(q *storage.Queries) error {
		var err error
		if from, err = q.GetAccount(ctx, orgID, req.FromAccountID); err != nil {
			return err
		}
		if to, err = q.GetAccount(ctx, orgID, req.ToAccountID); err != nil {
			return err
		}
		if !from.Active {
			return fmt.Errorf("account %d: %w", from.ID, model.ErrInactive)
		}
		if !to.Active {
			return fmt.Errorf("account %d: %w", to.ID, model.ErrInactive)
		}
		if from.Balance.LessThan(req.Amount) {
			return fmt.Errorf("account %d holds %s, transfer needs %s: %w",
				from.ID, from.Balance.StringFixed(2), req.Amount.StringFixed(2), model.ErrInsufficientFunds)
		}

		from.Balance = from.Balance.Sub(req.Amount)
		to.Balance = to.Balance.Add(req.Amount)
		if err := q.SetAccountBalance(ctx, orgID, from.ID, from.Balance); err != nil {
			return err
		}
		if err := q.SetAccountBalance(ctx, orgID, to.ID, to.Balance); err != nil {
			return err
		}

		description := req.Description
		if description == "" {
			description = fmt.Sprintf("Transfer from %s to %s", from.Name, to.Name)
		}
		destination := to.ID
		txn = model.Transaction{
			OrgID:                orgID,
			Type:                 model.TypeTransfer,
			Amount:               req.Amount,
			Date:                 req.Date,
			Description:          description,
			Notes:                req.Notes,
			AccountID:            from.ID,
			DestinationAccountID: &destination,
			CreatedBy:            userID,
		}
		if err := q.InsertTransaction(ctx, &txn); err != nil {
			return err
		}
		txn, err = q.GetTransaction(ctx, orgID, txn.ID)
		return err
	})
	if err != nil {
		return model.Transaction{}, err
	}

	logger.FromContext(ctx).Info().
		Int64("transaction_id", txn.ID).
		Str("amount", txn.Amount.StringFixed(2)).
		Int64("from_account_id", from.ID).
		Str("from_balance", from.Balance.StringFixed(2)).
		Int64("to_account_id", to.ID).
		Str("to_balance", to.Balance.StringFixed(2)).
		Msg("transfer created")
	s.publish(ctx, events.TransferCreated, txn)
	return txn, nil
}
