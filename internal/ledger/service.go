// Package ledger keeps account balances consistent with the transactions
// recorded against them.
//
// Every write runs in one SQL transaction: the balance change and the
// transaction row become visible together or not at all. Events are
// published only after commit.
package ledger

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cleared-dev/finanza/internal/events"
	"github.com/cleared-dev/finanza/internal/installments"
	"github.com/cleared-dev/finanza/internal/logger"
	"github.com/cleared-dev/finanza/internal/model"
	"github.com/cleared-dev/finanza/internal/rules"
	"github.com/cleared-dev/finanza/internal/storage"
)

// Service provides the ledger operations.
type Service struct {
	db        *storage.DB
	publisher events.Publisher
}

// NewService creates a ledger Service. A nil publisher discards events.
func NewService(db *storage.DB, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{db: db, publisher: publisher}
}

// Page is one slice of a transaction listing.
type Page struct {
	Items []model.Transaction
	Total int
}

// CreateTransaction records an income or expense and applies it to the
// account balance. Without an explicit category the organization's rules
// pick one. A transaction charged to a credit card is a financed purchase:
// its installment plan is created with it.
func (s *Service) CreateTransaction(ctx context.Context, orgID, userID int64, req TransactionRequest) (model.Transaction, error) {
	if errs := ValidateTransaction(req); len(errs) > 0 {
		return model.Transaction{}, validationFailed(errs)
	}

	var (
		txn     model.Transaction
		balance model.Account
	)
	err := s.db.InTx(ctx, func(q *storage.Queries) error {
		acct, err := q.GetAccount(ctx, orgID, req.AccountID)
		if err != nil {
			return err
		}
		if !acct.Active {
			return fmt.Errorf("account %d: %w", acct.ID, model.ErrInactive)
		}
		if req.Type == model.TypeTransfer {
			return fmt.Errorf("transfers move money between two accounts: %w", model.ErrInvalidType)
		}

		categoryID, err := resolveCategory(ctx, q, orgID, req)
		if err != nil {
			return err
		}

		var card *model.CreditCard
		if req.CreditCardID != nil {
			c, err := q.GetCard(ctx, orgID, *req.CreditCardID)
			if err != nil {
				return err
			}
			if !c.Active {
				return fmt.Errorf("credit card %d: %w", c.ID, model.ErrInactive)
			}
			if req.Type != model.TypeExpense {
				return fmt.Errorf("only expenses can be charged to a credit card: %w", model.ErrInvalidType)
			}
			card = &c
		}

		txn = model.Transaction{
			OrgID:        orgID,
			Type:         req.Type,
			Amount:       req.Amount,
			Date:         req.Date,
			Description:  req.Description,
			Notes:        req.Notes,
			AccountID:    acct.ID,
			CategoryID:   categoryID,
			CreditCardID: req.CreditCardID,
			Tags:         req.Tags,
			Attachments:  req.Attachments,
			CreatedBy:    userID,
		}
		if card != nil {
			txn.Installments = max(req.Installments, 1)
		}

		if balance, err = apply(ctx, q, orgID, txn); err != nil {
			return err
		}
		if err := q.InsertTransaction(ctx, &txn); err != nil {
			return err
		}
		if card != nil {
			if _, err := installments.Create(ctx, q, txn, *card, txn.Installments); err != nil {
				return err
			}
		}

		txn, err = q.GetTransaction(ctx, orgID, txn.ID)
		return err
	})
	if err != nil {
		return model.Transaction{}, err
	}

	logger.FromContext(ctx).Info().
		Int64("transaction_id", txn.ID).
		Str("type", string(txn.Type)).
		Str("amount", txn.Amount.StringFixed(2)).
		Int64("account_id", txn.AccountID).
		Str("balance", balance.Balance.StringFixed(2)).
		Msg("transaction created")
	s.publish(ctx, events.TransactionCreated, txn)
	return txn, nil
}

// UpdateTransaction replaces an income or expense. When the amount, type
// or account changes, the old effect is reversed on the old account before
// the new effect is applied to the new one. Tags and attachments are
// replaced wholesale. A financed purchase keeps its card, plan and amount.
func (s *Service) UpdateTransaction(ctx context.Context, orgID, id int64, req TransactionRequest) (model.Transaction, error) {
	if errs := ValidateTransaction(req); len(errs) > 0 {
		return model.Transaction{}, validationFailed(errs)
	}

	var txn model.Transaction
	err := s.db.InTx(ctx, func(q *storage.Queries) error {
		old, err := q.GetTransaction(ctx, orgID, id)
		if err != nil {
			return err
		}
		if old.Type == model.TypeTransfer || req.Type == model.TypeTransfer {
			return fmt.Errorf("transaction %d: transfers cannot be edited: %w", id, model.ErrInvalidType)
		}
		if err := checkFinancedUpdate(old, req); err != nil {
			return err
		}

		if req.AccountID != old.AccountID {
			acct, err := q.GetAccount(ctx, orgID, req.AccountID)
			if err != nil {
				return err
			}
			if !acct.Active {
				return fmt.Errorf("account %d: %w", acct.ID, model.ErrInactive)
			}
		}
		if req.CategoryID != nil {
			if _, err := q.GetCategory(ctx, orgID, *req.CategoryID); err != nil {
				return err
			}
		}

		txn = old
		txn.Type = req.Type
		txn.Amount = req.Amount
		txn.Date = req.Date
		txn.Description = req.Description
		txn.Notes = req.Notes
		txn.AccountID = req.AccountID
		txn.CategoryID = req.CategoryID
		txn.Tags = req.Tags
		txn.Attachments = req.Attachments

		if old.Type != txn.Type || !old.Amount.Equal(txn.Amount) || old.AccountID != txn.AccountID {
			// Reverse fully first: when the account is unchanged, apply
			// must read the balance the reversal wrote.
			if _, err := reverse(ctx, q, orgID, old); err != nil {
				return err
			}
			if _, err := apply(ctx, q, orgID, txn); err != nil {
				return err
			}
		}

		if err := q.UpdateTransaction(ctx, &txn); err != nil {
			return err
		}
		txn, err = q.GetTransaction(ctx, orgID, id)
		return err
	})
	if err != nil {
		return model.Transaction{}, err
	}

	logger.FromContext(ctx).Info().
		Int64("transaction_id", txn.ID).
		Str("amount", txn.Amount.StringFixed(2)).
		Int64("account_id", txn.AccountID).
		Msg("transaction updated")
	s.publish(ctx, events.TransactionUpdated, txn)
	return txn, nil
}

func checkFinancedUpdate(old model.Transaction, req TransactionRequest) error {
	if old.CreditCardID == nil {
		if req.CreditCardID != nil {
			return fmt.Errorf("transaction %d: installment plans are created with the purchase: %w",
				old.ID, model.ErrInvalidOperation)
		}
		return nil
	}
	if req.CreditCardID != nil && *req.CreditCardID != *old.CreditCardID {
		return fmt.Errorf("transaction %d: card of a financed purchase cannot change: %w", old.ID, model.ErrInvalidOperation)
	}
	if req.Type != model.TypeExpense {
		return fmt.Errorf("transaction %d: a financed purchase must stay an expense: %w", old.ID, model.ErrInvalidType)
	}
	if !req.Amount.Equal(old.Amount) {
		return fmt.Errorf("transaction %d: amount of a financed purchase cannot change: %w", old.ID, model.ErrInvalidOperation)
	}
	return nil
}

// DeleteTransaction reverses a transaction's effect and removes it together
// with its installments and tax lines. Deleting a transfer returns the
// amount to the source account and takes it back from the destination.
func (s *Service) DeleteTransaction(ctx context.Context, orgID, id int64) error {
	var txn model.Transaction
	err := s.db.InTx(ctx, func(q *storage.Queries) error {
		var err error
		txn, err = q.GetTransaction(ctx, orgID, id)
		if err != nil {
			return err
		}

		if txn.Type == model.TypeTransfer {
			if _, err := adjust(ctx, q, orgID, txn.AccountID, txn.Amount); err != nil {
				return err
			}
			if txn.DestinationAccountID != nil {
				if _, err := adjust(ctx, q, orgID, *txn.DestinationAccountID, txn.Amount.Neg()); err != nil {
					return err
				}
			}
		} else if _, err := reverse(ctx, q, orgID, txn); err != nil {
			return err
		}

		return q.DeleteTransaction(ctx, orgID, id)
	})
	if err != nil {
		return err
	}

	logger.FromContext(ctx).Info().
		Int64("transaction_id", id).
		Str("type", string(txn.Type)).
		Msg("transaction deleted")
	s.publish(ctx, events.TransactionDeleted, txn)
	return nil
}

// GetTransaction returns one transaction.
func (s *Service) GetTransaction(ctx context.Context, orgID, id int64) (model.Transaction, error) {
	return s.db.Queries().GetTransaction(ctx, orgID, id)
}

// ListTransactions returns one page of transactions, newest first.
func (s *Service) ListTransactions(ctx context.Context, orgID int64, f storage.TransactionFilter) (Page, error) {
	items, total, err := s.db.Queries().ListTransactions(ctx, orgID, f)
	if err != nil {
		return Page{}, err
	}
	logger.FromContext(ctx).Debug().Int("count", len(items)).Int("total", total).Msg("transactions listed")
	return Page{Items: items, Total: total}, nil
}

func resolveCategory(ctx context.Context, q *storage.Queries, orgID int64, req TransactionRequest) (*int64, error) {
	if req.CategoryID != nil {
		c, err := q.GetCategory(ctx, orgID, *req.CategoryID)
		if err != nil {
			return nil, err
		}
		return &c.ID, nil
	}
	return rules.FindCategory(ctx, q, orgID, req.Description, req.Amount)
}

func (s *Service) publish(ctx context.Context, typ events.Type, t model.Transaction) {
	payload := map[string]string{
		"type":       string(t.Type),
		"account_id": strconv.FormatInt(t.AccountID, 10),
		"date":       t.Date.Format("2006-01-02"),
	}
	if t.CategoryID != nil {
		payload["category_id"] = strconv.FormatInt(*t.CategoryID, 10)
	}
	if t.DestinationAccountID != nil {
		payload["destination_account_id"] = strconv.FormatInt(*t.DestinationAccountID, 10)
	}
	if t.CreditCardID != nil {
		payload["credit_card_id"] = strconv.FormatInt(*t.CreditCardID, 10)
		payload["installments"] = strconv.Itoa(t.Installments)
	}

	e := events.New(typ, t.OrgID, t.ID, t.Amount, payload)
	if err := s.publisher.Publish(ctx, e); err != nil {
		logger.FromContext(ctx).Warn().
			Err(err).
			Str("event_id", e.ID.String()).
			Str("type", string(typ)).
			Msg("publishing event failed")
	}
}
