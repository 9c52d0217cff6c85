package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cleared-dev/finanza/internal/model"
	"github.com/cleared-dev/finanza/internal/money"
)

// GenericParser reads a CSV with a header row naming its columns. The
// date, description, amount and type columns are required; category and
// notes are optional. Spanish headers (fecha, descripcion, monto, tipo,
// categoria, notas) are accepted too.
type GenericParser struct{}

// DateLayouts are tried in order until one parses.
var DateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"02-01-2006",
	"2006/01/02",
}

const (
	fieldDate        = "date"
	fieldDescription = "description"
	fieldAmount      = "amount"
	fieldType        = "type"
	fieldCategory    = "category"
	fieldNotes       = "notes"
)

var headerAliases = map[string]string{
	"date":        fieldDate,
	"fecha":       fieldDate,
	"description": fieldDescription,
	"descripcion": fieldDescription,
	"descripción": fieldDescription,
	"amount":      fieldAmount,
	"monto":       fieldAmount,
	"type":        fieldType,
	"tipo":        fieldType,
	"category":    fieldCategory,
	"categoria":   fieldCategory,
	"categoría":   fieldCategory,
	"notes":       fieldNotes,
	"notas":       fieldNotes,
}

var typeAliases = map[string]model.TransactionType{
	"INGRESO": model.TypeIncome,
	"GASTO":   model.TypeExpense,
	"EGRESO":  model.TypeExpense,
}

// Format returns the parser name.
func (p *GenericParser) Format() string { return "generic" }

func (p *GenericParser) Sniff(header []string) bool {
	_, err := mapColumns(header)
	return err == nil
}

// Parse reads the CSV. Unknown columns are ignored.
func (p *GenericParser) Parse(r io.Reader) ([]model.ParsedTransaction, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var txns []model.ParsedTransaction
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		txn, err := parseGenericRow(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		txn.Line = line
		txns = append(txns, txn)
	}
	return txns, nil
}

func mapColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := normalizeHeader(h)
		if field, ok := headerAliases[name]; ok {
			cols[field] = i
		}
	}
	var missing []string
	for _, f := range []string{fieldDate, fieldDescription, fieldAmount, fieldType} {
		if _, ok := cols[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

func parseGenericRow(rec []string, cols map[string]int) (model.ParsedTransaction, error) {
	get := func(field string) string {
		i, ok := cols[field]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	date, err := ParseDate(get(fieldDate))
	if err != nil {
		return model.ParsedTransaction{}, err
	}
	amount, err := money.Parse(get(fieldAmount))
	if err != nil {
		return model.ParsedTransaction{}, fmt.Errorf("parsing amount: %w", err)
	}

	typ := strings.ToUpper(get(fieldType))
	if alias, ok := typeAliases[typ]; ok {
		typ = string(alias)
	}

	return model.ParsedTransaction{
		Date:         date,
		Description:  get(fieldDescription),
		Amount:       amount,
		Type:         typ,
		CategoryName: get(fieldCategory),
		Notes:        get(fieldNotes),
	}, nil
}

// ParseDate parses s with the first of DateLayouts that accepts it. A day
// and month that are both 12 or less read day first.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing date %q: no known layout matches", s)
}
