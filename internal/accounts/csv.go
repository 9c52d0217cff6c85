package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/cleared-dev/finanza/internal/model"
)

const (
	numFields   = 7
	colID       = 0
	colName     = 1
	colType     = 2
	colBalance  = 3
	colCurrency = 4
	colActive   = 5
	colDesc     = 6
)

// Header is the first row written by WriteCSV.
var Header = []string{"id", "name", "type", "balance", "currency", "active", "description"}

// WriteCSV writes accounts with their balances.
func WriteCSV(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, numFields)
	row[colID] = strconv.FormatInt(acct.ID, 10)
	row[colName] = acct.Name
	row[colType] = string(acct.Type)
	row[colBalance] = acct.Balance.StringFixed(2)
	row[colCurrency] = acct.Currency
	row[colActive] = strconv.FormatBool(acct.Active)
	row[colDesc] = acct.Description
	return row
}
