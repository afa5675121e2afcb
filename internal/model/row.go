package model

import "github.com/shopspring/decimal"

// Status classifies a single comparison in a reconciliation row.
type Status string

const (
	StatusMatch       Status = "match"
	StatusMismatch    Status = "mismatch"
	StatusUnavailable Status = "unavailable"
)

// Discrepancies holds the independent checks made for one month.
type Discrepancies struct {
	ImpliedRates   Status // implied sold rate vs implied kept rate
	HistoricalRate Status // public rate vs implied sold rate; unavailable without a public rate
	Retention      Status // payroll retention vs payroll sold amount
}

// Any reports whether at least one check diverged.
func (d Discrepancies) Any() bool {
	return d.ImpliedRates == StatusMismatch ||
		d.HistoricalRate == StatusMismatch ||
		d.Retention == StatusMismatch
}

// ReconciliationRow is the outcome of reconciling one month.
type ReconciliationRow struct {
	Month            string
	Vested           int64
	SharesSold       int64
	SharesKept       int64
	SoldBrokerage    decimal.Decimal // USD
	KeptBrokerage    decimal.Decimal // USD
	SoldPayroll      decimal.Decimal // EUR
	KeptPayroll      decimal.Decimal // EUR
	RetentionPayroll decimal.Decimal // EUR
	ImpliedRateSold  decimal.Decimal // USD per EUR, 5 significant digits
	ImpliedRateKept  decimal.Decimal // USD per EUR, 5 significant digits
	HistoricalRate   *decimal.Decimal
	Discrepancies    Discrepancies
}
