// Package reconcile compares payroll RSU lines with the brokerage lapses of the same month.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/vestcheck/vestcheck/internal/fx"
	"github.com/vestcheck/vestcheck/internal/model"
	"github.com/vestcheck/vestcheck/internal/payroll"
)

// ErrZeroPayrollAmount means an implied rate would divide by a zero payroll amount.
var ErrZeroPayrollAmount = errors.New("payroll amount is zero")

// RateDigits is the number of significant digits implied rates are compared and shown with.
const RateDigits = 5

// RateResolver returns the USDEUR quote of a date, or nil when it is unavailable.
type RateResolver interface {
	Resolve(ctx context.Context, date time.Time) (*decimal.Decimal, error)
}

// Engine reconciles months one at a time in payroll order.
type Engine struct {
	taxonomy  *payroll.Taxonomy
	rates     RateResolver
	tolerance decimal.Decimal
	log       zerolog.Logger
}

// NewEngine creates an Engine.
func NewEngine(taxonomy *payroll.Taxonomy, rates RateResolver, tolerance decimal.Decimal, log zerolog.Logger) *Engine {
	return &Engine{
		taxonomy:  taxonomy,
		rates:     rates,
		tolerance: tolerance,
		log:       log.With().Str("component", "reconcile").Logger(),
	}
}

// Reconcile returns one row per payroll month that has a brokerage aggregate, in payroll order.
// The first failure aborts the run; no partial rows are returned.
func (e *Engine) Reconcile(ctx context.Context, months []model.PayrollMonth, lapses map[string]model.MonthlyLapse) ([]model.ReconciliationRow, error) {
	var rows []model.ReconciliationRow
	for _, month := range months {
		lapse, ok := lapses[month.Month]
		if !ok {
			e.log.Debug().Str("month", month.Month).Msg("No lapse this month, skipping")
			continue
		}
		row, err := e.reconcileMonth(ctx, month, lapse)
		if err != nil {
			return nil, fmt.Errorf("reconciling %s: %w", month.Month, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (e *Engine) reconcileMonth(ctx context.Context, month model.PayrollMonth, lapse model.MonthlyLapse) (model.ReconciliationRow, error) {
	soldPayroll := e.taxonomy.Income(month.Entries, payroll.CategorySold)
	keptPayroll := e.taxonomy.Income(month.Entries, payroll.CategoryKept)
	retention := e.taxonomy.Retention(month.Entries)

	impliedSold, err := impliedRate(lapse.SoldValue(), soldPayroll)
	if err != nil {
		return model.ReconciliationRow{}, fmt.Errorf("implied rate of sold shares: %w", err)
	}
	impliedKept, err := impliedRate(lapse.KeptValue(), keptPayroll)
	if err != nil {
		return model.ReconciliationRow{}, fmt.Errorf("implied rate of kept shares: %w", err)
	}

	row := model.ReconciliationRow{
		Month:            month.Month,
		Vested:           lapse.Vested(),
		SharesSold:       lapse.SharesSold,
		SharesKept:       lapse.SharesDeposited,
		SoldBrokerage:    lapse.SoldValue(),
		KeptBrokerage:    lapse.KeptValue(),
		SoldPayroll:      soldPayroll,
		KeptPayroll:      keptPayroll,
		RetentionPayroll: retention,
		ImpliedRateSold:  model.RoundSignificant(impliedSold, RateDigits),
		ImpliedRateKept:  model.RoundSignificant(impliedKept, RateDigits),
	}

	quote, err := e.rates.Resolve(ctx, lapse.Date)
	if err != nil {
		return model.ReconciliationRow{}, err
	}

	row.Discrepancies.ImpliedRates = compareImplied(row.ImpliedRateSold, row.ImpliedRateKept)
	row.Discrepancies.Retention = compareRetention(retention, soldPayroll)
	row.Discrepancies.HistoricalRate = model.StatusUnavailable
	if quote != nil {
		historical, err := fx.DollarsPerEuro(*quote)
		if err != nil {
			return model.ReconciliationRow{}, err
		}
		rounded := model.RoundSignificant(historical, RateDigits)
		row.HistoricalRate = &rounded
		row.Discrepancies.HistoricalRate = compareHistorical(historical, impliedSold, e.tolerance)
	}

	e.log.Debug().
		Str("month", month.Month).
		Str("implied_sold", row.ImpliedRateSold.String()).
		Str("implied_kept", row.ImpliedRateKept.String()).
		Bool("discrepancy", row.Discrepancies.Any()).
		Msg("Month reconciled")
	return row, nil
}

// impliedRate is the dollars-per-euro rate that turns a USD value into its EUR payroll amount.
func impliedRate(usd, eur decimal.Decimal) (decimal.Decimal, error) {
	if eur.IsZero() {
		return decimal.Decimal{}, ErrZeroPayrollAmount
	}
	return usd.Div(eur), nil
}

func compareImplied(sold, kept decimal.Decimal) model.Status {
	if sold.Equal(kept) {
		return model.StatusMatch
	}
	return model.StatusMismatch
}

// compareHistorical matches when the rates differ by at most tolerance.
func compareHistorical(historical, implied, tolerance decimal.Decimal) model.Status {
	if historical.Sub(implied).Abs().GreaterThan(tolerance) {
		return model.StatusMismatch
	}
	return model.StatusMatch
}

func compareRetention(retention, soldPayroll decimal.Decimal) model.Status {
	if retention.Equal(soldPayroll) {
		return model.StatusMatch
	}
	return model.StatusMismatch
}
