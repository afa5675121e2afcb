package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthFormat is the layout of month keys shared by payroll and brokerage data ("Jan 2023").
const MonthFormat = "Jan 2006"

// MonthKey returns the month key for t.
func MonthKey(t time.Time) string {
	return t.Format(MonthFormat)
}

// LapseRecord is one restricted stock lapse from the brokerage export.
type LapseRecord struct {
	Date            time.Time
	Symbol          string
	SharesDeposited int64
	SharesSold      int64           // withheld for taxes
	FairMarketPrice decimal.Decimal // USD per share
}

// MonthlyLapse is the fold of every lapse of one symbol within a calendar month.
type MonthlyLapse struct {
	Month           string
	Symbol          string
	Date            time.Time // date of the most recently merged lapse
	SharesDeposited int64
	SharesSold      int64
	FairMarketPrice decimal.Decimal // price of the most recently merged lapse
}

// NewMonthlyLapse starts an aggregate from a single lapse.
func NewMonthlyLapse(r LapseRecord) MonthlyLapse {
	return MonthlyLapse{
		Month:           MonthKey(r.Date),
		Symbol:          r.Symbol,
		Date:            r.Date,
		SharesDeposited: r.SharesDeposited,
		SharesSold:      r.SharesSold,
		FairMarketPrice: r.FairMarketPrice,
	}
}

// Merge returns a new aggregate with r's shares added. The receiver is left untouched.
// Price and date are taken from r; prices are assumed constant within a month.
func (m MonthlyLapse) Merge(r LapseRecord) MonthlyLapse {
	return MonthlyLapse{
		Month:           m.Month,
		Symbol:          m.Symbol,
		Date:            r.Date,
		SharesDeposited: m.SharesDeposited + r.SharesDeposited,
		SharesSold:      m.SharesSold + r.SharesSold,
		FairMarketPrice: r.FairMarketPrice,
	}
}

// AsRecord converts the aggregate back into a single lapse dated on its representative date.
func (m MonthlyLapse) AsRecord() LapseRecord {
	return LapseRecord{
		Date:            m.Date,
		Symbol:          m.Symbol,
		SharesDeposited: m.SharesDeposited,
		SharesSold:      m.SharesSold,
		FairMarketPrice: m.FairMarketPrice,
	}
}

// Vested is the total number of shares that lapsed.
func (m MonthlyLapse) Vested() int64 {
	return m.SharesDeposited + m.SharesSold
}

// SoldValue is the USD value of the shares sold for taxes.
func (m MonthlyLapse) SoldValue() decimal.Decimal {
	return m.FairMarketPrice.Mul(decimal.NewFromInt(m.SharesSold))
}

// KeptValue is the USD value of the shares deposited.
func (m MonthlyLapse) KeptValue() decimal.Decimal {
	return m.FairMarketPrice.Mul(decimal.NewFromInt(m.SharesDeposited))
}
