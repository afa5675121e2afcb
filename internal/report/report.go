// Package report renders reconciliation rows as a terminal table.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"github.com/vestcheck/vestcheck/internal/model"
	"github.com/vestcheck/vestcheck/internal/reconcile"
)

// Unavailable is shown in place of a public rate that could not be resolved.
const Unavailable = "N/A"

// Headers are the table column titles.
var Headers = []string{
	"Month",
	"Vested",
	"Sold (Brokerage)",
	"Kept (Brokerage)",
	"Sold (Payroll)",
	"Kept (Payroll)",
	"Retention (Payroll)",
	"$/€ Sold",
	"$/€ Kept",
	"$/€ Public",
}

const (
	colRetention = 6
	colRateSold  = 7
	colRateKept  = 8
	colRatePub   = 9
)

// Options controls rendering.
type Options struct {
	NoColor bool
}

var (
	matchColor    = lipgloss.Color("2")
	mismatchColor = lipgloss.Color("1")
	headerStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
)

// Render writes the table and a one-line summary to w.
func Render(w io.Writer, rows []model.ReconciliationRow, opts Options) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No vested months found in payroll.")
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(Headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if opts.NoColor || row < 0 || row >= len(rows) {
				return cellStyle
			}
			return colorize(cellStyle, statusOf(rows[row], col))
		})
	for _, r := range rows {
		t.Row(Cells(r)...)
	}

	if _, err := fmt.Fprintln(w, t.String()); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, Summary(rows))
	return err
}

// Cells renders the columns of one row as plain text.
func Cells(r model.ReconciliationRow) []string {
	public := Unavailable
	if r.HistoricalRate != nil {
		public = model.FormatSignificant(*r.HistoricalRate, reconcile.RateDigits)
	}
	return []string{
		r.Month,
		strconv.FormatInt(r.Vested, 10),
		fmt.Sprintf("%d - %s", r.SharesSold, Format(r.SoldBrokerage, money.USD)),
		fmt.Sprintf("%d - %s", r.SharesKept, Format(r.KeptBrokerage, money.USD)),
		Format(r.SoldPayroll, money.EUR),
		Format(r.KeptPayroll, money.EUR),
		Format(r.RetentionPayroll, money.EUR),
		model.FormatSignificant(r.ImpliedRateSold, reconcile.RateDigits),
		model.FormatSignificant(r.ImpliedRateKept, reconcile.RateDigits),
		public,
	}
}

// Summary counts the months with at least one discrepancy.
func Summary(rows []model.ReconciliationRow) string {
	diverging := 0
	for _, r := range rows {
		if r.Discrepancies.Any() {
			diverging++
		}
	}
	return fmt.Sprintf("%d month(s) reconciled, %d with discrepancies", len(rows), diverging)
}

// Format renders an amount in the given currency, rounded to cents.
func Format(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	fraction := int32(2)
	if cur != nil {
		fraction = int32(cur.Fraction)
	}
	minor := amount.Round(fraction).Shift(fraction).IntPart()
	return money.New(minor, currency).Display()
}

func statusOf(r model.ReconciliationRow, col int) model.Status {
	switch col {
	case colRetention:
		return r.Discrepancies.Retention
	case colRateSold, colRateKept:
		return r.Discrepancies.ImpliedRates
	case colRatePub:
		return r.Discrepancies.HistoricalRate
	}
	return ""
}

func colorize(s lipgloss.Style, status model.Status) lipgloss.Style {
	switch status {
	case model.StatusMatch:
		return s.Foreground(matchColor)
	case model.StatusMismatch:
		return s.Foreground(mismatchColor)
	}
	return s
}
