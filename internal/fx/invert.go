package fx

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrZeroQuote means a quote of zero was asked to be inverted.
var ErrZeroQuote = errors.New("cannot invert a zero quote")

// DollarsPerEuro converts a USDEUR quote (euros for one dollar) into dollars for one euro,
// the unit of rates implied by dollar cash flows over their euro payroll amounts.
func DollarsPerEuro(usdeur decimal.Decimal) (decimal.Decimal, error) {
	if usdeur.IsZero() {
		return decimal.Decimal{}, ErrZeroQuote
	}
	return decimal.NewFromInt(1).Div(usdeur), nil
}
