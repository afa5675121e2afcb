package model

import "github.com/shopspring/decimal"

// PayrollEntry is one line of a monthly payslip.
type PayrollEntry struct {
	Description string          `json:"desc"`
	Income      decimal.Decimal `json:"income"`
	Retention   decimal.Decimal `json:"retention"` // zero when the line carries no retention
}

// PayrollMonth groups the payslip lines of one month.
type PayrollMonth struct {
	Month   string         `json:"month"` // MonthFormat
	Entries []PayrollEntry `json:"entries"`
}
