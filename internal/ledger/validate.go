package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/finanza/internal/model"
	"github.com/cleared-dev/finanza/internal/money"
)

// TransactionRequest carries the caller-supplied fields of an income or
// expense.
type TransactionRequest struct {
	Type         model.TransactionType
	Amount       decimal.Decimal
	Date         time.Time
	Description  string
	Notes        string
	AccountID    int64
	CategoryID   *int64 // nil: inferred by rules on create, cleared on update
	CreditCardID *int64
	Installments int
	Tags         []string
	Attachments  []string
}

// TransferRequest carries the caller-supplied fields of a transfer.
type TransferRequest struct {
	FromAccountID int64
	ToAccountID   int64
	Amount        decimal.Decimal
	Date          time.Time
	Description   string
	Notes         string
}

// ValidationError describes a single malformed request field.
type ValidationError struct {
	Field       string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Description)
}

// ValidateTransaction checks the shape of a request before any lookup.
func ValidateTransaction(req TransactionRequest) []ValidationError {
	var errs []ValidationError

	if !req.Type.Valid() {
		errs = append(errs, ValidationError{"type", fmt.Sprintf("unknown type %q", req.Type)})
	}
	errs = append(errs, validateAmount(req.Amount)...)
	if req.Date.IsZero() {
		errs = append(errs, ValidationError{"date", "is required"})
	}
	if req.AccountID <= 0 {
		errs = append(errs, ValidationError{"account", "is required"})
	}
	if req.Installments < 0 {
		errs = append(errs, ValidationError{"installments", fmt.Sprintf("%d is negative", req.Installments)})
	}
	if req.Installments > 0 && req.CreditCardID == nil {
		errs = append(errs, ValidationError{"installments", "require a credit card"})
	}
	for _, tag := range req.Tags {
		if strings.TrimSpace(tag) == "" {
			errs = append(errs, ValidationError{"tags", "must not be blank"})
			break
		}
	}
	return errs
}

// ValidateTransfer checks the shape of a transfer before any lookup.
func ValidateTransfer(req TransferRequest) []ValidationError {
	var errs []ValidationError

	if req.FromAccountID <= 0 {
		errs = append(errs, ValidationError{"from", "is required"})
	}
	if req.ToAccountID <= 0 {
		errs = append(errs, ValidationError{"to", "is required"})
	}
	errs = append(errs, validateAmount(req.Amount)...)
	if req.Date.IsZero() {
		errs = append(errs, ValidationError{"date", "is required"})
	}
	return errs
}

func validateAmount(amount decimal.Decimal) []ValidationError {
	if !amount.IsPositive() {
		return []ValidationError{{"amount", fmt.Sprintf("%s must be greater than zero", amount)}}
	}
	if !money.IsMinorUnit(amount) {
		return []ValidationError{{"amount", fmt.Sprintf("%s has more than %d decimal places", amount, money.Places)}}
	}
	return nil
}

func validationFailed(errs []ValidationError) error {
	msgs := make([]string, len(errs))
	for i, ve := range errs {
		msgs[i] = ve.Error()
	}
	return fmt.Errorf("%w: %s", model.ErrValidation, strings.Join(msgs, "; "))
}
