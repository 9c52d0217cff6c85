package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateType names a published exchange rate.
type RateType string

const (
	RateOficial RateType = "OFICIAL"
	RateMEP     RateType = "MEP"
	RateBlue    RateType = "BLUE"
	RateTarjeta RateType = "TARJETA"
)

// ParseRateType accepts any casing of a known rate type.
func ParseRateType(s string) (RateType, bool) {
	switch t := RateType(upper(s)); t {
	case RateOficial, RateMEP, RateBlue, RateTarjeta:
		return t, true
	}
	return "", false
}

// ExchangeRate is one day's buy/sell quote for a rate type.
type ExchangeRate struct {
	ID        int64
	OrgID     int64
	Date      time.Time
	RateType  RateType
	Buy       decimal.Decimal
	Sell      decimal.Decimal
	CreatedAt time.Time
}

var two = decimal.NewFromInt(2)

// Average returns the midpoint of buy and sell.
func (r ExchangeRate) Average() decimal.Decimal {
	return r.Buy.Add(r.Sell).Div(two)
}
