package importer

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/finanza/internal/events"
	"github.com/cleared-dev/finanza/internal/ledger"
	"github.com/cleared-dev/finanza/internal/logger"
	"github.com/cleared-dev/finanza/internal/model"
	"github.com/cleared-dev/finanza/internal/storage"
)

// Service commits parsed rows to the ledger.
type Service struct {
	db        *storage.DB
	ledger    *ledger.Service
	publisher events.Publisher
}

// NewService creates an import Service. A nil publisher discards events.
func NewService(db *storage.DB, l *ledger.Service, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{db: db, ledger: l, publisher: publisher}
}

// Commit records every row against one account. Each row is its own ledger
// transaction: a failing row is counted and reported without undoing the
// rows before it. A row's category is looked up by name among categories
// of the matching type; rows without one are categorized by rules.
func (s *Service) Commit(ctx context.Context, orgID, userID, accountID int64, rows []model.ParsedTransaction) (model.ImportResult, error) {
	q := s.db.Queries()
	acct, err := q.GetAccount(ctx, orgID, accountID)
	if err != nil {
		return model.ImportResult{}, err
	}

	log := logger.FromContext(ctx)
	res := model.ImportResult{BatchID: uuid.New(), Total: len(rows)}
	total := decimal.Zero

	for i, row := range rows {
		line := row.Line
		if line == 0 {
			line = i + 1
		}
		txn, err := s.commitRow(ctx, orgID, userID, acct.ID, row)
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("line %d: %v", line, err))
			log.Debug().Int("line", line).Err(err).Msg("import row rejected")
			continue
		}
		res.Imported++
		res.Transactions = append(res.Transactions, txn)
		total = total.Add(txn.Amount)
	}

	log.Info().
		Str("batch_id", res.BatchID.String()).
		Int64("account_id", acct.ID).
		Int("total", res.Total).
		Int("imported", res.Imported).
		Int("failed", res.Failed).
		Msg("import committed")

	ev := events.New(events.ImportCompleted, orgID, acct.ID, total, map[string]string{
		"batch_id": res.BatchID.String(),
		"total":    strconv.Itoa(res.Total),
		"imported": strconv.Itoa(res.Imported),
		"failed":   strconv.Itoa(res.Failed),
	})
	if err := s.publisher.Publish(ctx, ev); err != nil {
		log.Warn().Err(err).Str("batch_id", res.BatchID.String()).Msg("publishing import event")
	}
	return res, nil
}

func (s *Service) commitRow(ctx context.Context, orgID, userID, accountID int64, row model.ParsedTransaction) (model.Transaction, error) {
	typ := model.TransactionType(strings.ToUpper(strings.TrimSpace(row.Type)))
	if typ != model.TypeIncome && typ != model.TypeExpense {
		return model.Transaction{}, fmt.Errorf("type %q: %w", row.Type, model.ErrInvalidType)
	}

	req := ledger.TransactionRequest{
		Type:        typ,
		Amount:      row.Amount,
		Date:        row.Date,
		Description: row.Description,
		Notes:       row.Notes,
		AccountID:   accountID,
	}
	if row.CategoryName != "" {
		id, err := s.categoryByName(ctx, orgID, row.CategoryName, model.CategoryTypeFor(typ))
		if err != nil {
			return model.Transaction{}, err
		}
		req.CategoryID = id
	}
	return s.ledger.CreateTransaction(ctx, orgID, userID, req)
}

func (s *Service) categoryByName(ctx context.Context, orgID int64, name string, typ model.CategoryType) (*int64, error) {
	cats, err := s.db.Queries().FindCategoriesByName(ctx, orgID, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	for _, c := range cats {
		if c.Type == typ && c.Active {
			return &c.ID, nil
		}
	}
	return nil, nil
}
