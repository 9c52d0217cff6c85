package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/finanza/internal/model"
)

// ChaseParser reads Chase checking exports:
//
//	Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #
//
// Columns are found by name. Details (DEBIT, CREDIT, CHECK, DSLIP) decides
// the direction; when it is blank the sign of Amount does.
type ChaseParser struct{}

const chaseDateLayout = "01/02/2006"

var chaseColumns = []string{"details", "posting date", "description", "amount", "type"}

func (p *ChaseParser) Format() string { return "chase" }

func (p *ChaseParser) Sniff(header []string) bool {
	_, err := chaseIndex(header)
	return err == nil
}

func chaseIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[normalizeHeader(h)] = i
	}
	var missing []string
	for _, c := range chaseColumns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("not a chase export, missing %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

func (p *ChaseParser) Parse(r io.Reader) ([]model.ParsedTransaction, error) {
	cr := csv.NewReader(r)
	// Chase pads some rows with a trailing empty column.
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading chase header: %w", err)
	}
	idx, err := chaseIndex(header)
	if err != nil {
		return nil, err
	}

	var out []model.ParsedTransaction
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		row, err := chaseRow(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		row.Line = line
		out = append(out, row)
	}
}

func chaseRow(rec []string, idx map[string]int) (model.ParsedTransaction, error) {
	col := func(name string) string {
		i, ok := idx[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	posted, err := time.Parse(chaseDateLayout, col("posting date"))
	if err != nil {
		return model.ParsedTransaction{}, fmt.Errorf("posting date %q is not MM/DD/YYYY", col("posting date"))
	}
	amount, err := decimal.NewFromString(col("amount"))
	if err != nil {
		return model.ParsedTransaction{}, fmt.Errorf("amount %q: %w", col("amount"), err)
	}

	var typ model.TransactionType
	switch strings.ToUpper(col("details")) {
	case "CREDIT", "DSLIP":
		typ = model.TypeIncome
	case "DEBIT", "CHECK":
		typ = model.TypeExpense
	default:
		typ = model.TypeIncome
		if amount.IsNegative() {
			typ = model.TypeExpense
		}
	}

	notes := col("type")
	if slip := col("check or slip #"); slip != "" {
		notes = strings.TrimSpace(notes + " #" + slip)
	}

	desc := col("description")
	return model.ParsedTransaction{
		Date:        posted,
		Description: desc,
		Amount:      amount.Abs(),
		Type:        string(typ),
		Notes:       notes,
		Reference:   chaseReference(posted, desc),
	}, nil
}

// chaseReference builds "chase_20250103_GITHUBPROS": the posting date and
// the first ten alphanumerics of the description.
func chaseReference(posted time.Time, desc string) string {
	var b strings.Builder
	for _, r := range desc {
		if b.Len() == 10 {
			break
		}
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return "chase_" + posted.Format("20060102") + "_" + b.String()
}
