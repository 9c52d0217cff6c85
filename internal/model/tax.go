package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TaxType names a tax withheld on a transaction.
type TaxType string

const (
	TaxPAIS             TaxType = "PAIS"
	TaxPercepcionRG5371 TaxType = "PERCEPCION_RG_5371"
	TaxPercepcionRG4815 TaxType = "PERCEPCION_RG_4815"
	TaxIVA              TaxType = "IVA"
	TaxIIBB             TaxType = "IIBB"
	TaxOtros            TaxType = "OTROS"
)

// ParseTaxType accepts any casing of a known tax type.
func ParseTaxType(s string) (TaxType, bool) {
	switch t := TaxType(upper(s)); t {
	case TaxPAIS, TaxPercepcionRG5371, TaxPercepcionRG4815, TaxIVA, TaxIIBB, TaxOtros:
		return t, true
	}
	return "", false
}

// TaxLine is one tax charged on top of a transaction.
type TaxLine struct {
	ID            int64
	OrgID         int64
	TransactionID int64
	TaxType       TaxType
	Percentage    decimal.Decimal
	Amount        decimal.Decimal
	Description   string
	CreatedAt     time.Time
}

func upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
