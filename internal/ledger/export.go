package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cleared-dev/finanza/internal/model"
)

// ExportHeader is the CSV header written by ExportCSV.
const ExportHeader = "id,date,type,amount,account,destination,category,description,notes,installments,tags"

const (
	numExportFields = 11
	colID           = 0
	colDate         = 1
	colType         = 2
	colAmount       = 3
	colAccount      = 4
	colDestination  = 5
	colCategory     = 6
	colDescription  = 7
	colNotes        = 8
	colInstallments = 9
	colTags         = 10
)

// MarshalTransaction converts a transaction to an export row.
func MarshalTransaction(t model.Transaction) []string {
	row := make([]string, numExportFields)
	row[colID] = strconv.FormatInt(t.ID, 10)
	row[colDate] = t.Date.Format("2006-01-02")
	row[colType] = string(t.Type)
	row[colAmount] = t.Amount.StringFixed(2)
	row[colAccount] = t.AccountName
	row[colDestination] = t.DestinationAccountName
	row[colCategory] = t.CategoryName
	row[colDescription] = t.Description
	row[colNotes] = t.Notes
	if t.Installments > 0 {
		row[colInstallments] = strconv.Itoa(t.Installments)
	}
	row[colTags] = strings.Join(t.Tags, "|")
	return row
}

// ExportCSV writes transactions with a header row.
func ExportCSV(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(ExportHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, t := range txns {
		if err := cw.Write(MarshalTransaction(t)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
