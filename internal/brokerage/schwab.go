package brokerage

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vestcheck/vestcheck/internal/model"
)

// SchwabParser parses Schwab equity award JSON exports.
type SchwabParser struct{}

const (
	schwabDateFormat = "01/02/2006"
	// LapseDescription marks transactions where restricted stock vested.
	LapseDescription = "Restricted Stock Lapse"
)

type schwabExport struct {
	Transactions []schwabTransaction `json:"Transactions"`
}

type schwabTransaction struct {
	Date               string `json:"Date"`
	Action             string `json:"Action"`
	Symbol             string `json:"Symbol"`
	Description        string `json:"Description"`
	TransactionDetails []struct {
		Details schwabDetails `json:"Details"`
	} `json:"TransactionDetails"`
}

type schwabDetails struct {
	AwardDate                  string `json:"AwardDate"`
	AwardID                    string `json:"AwardId"`
	FairMarketValuePrice       string `json:"FairMarketValuePrice"`
	SharesSoldWithheldForTaxes string `json:"SharesSoldWithheldForTaxes"`
	NetSharesDeposited         string `json:"NetSharesDeposited"`
}

// Format returns the parser name.
func (p *SchwabParser) Format() string { return "schwab" }

// Parse reads a Schwab export and returns its restricted stock lapses.
// Every other transaction kind is skipped.
func (p *SchwabParser) Parse(r io.Reader) ([]model.LapseRecord, error) {
	var export schwabExport
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return nil, fmt.Errorf("%w: decoding schwab export: %v", ErrMalformedRecord, err)
	}

	var lapses []model.LapseRecord
	for i, txn := range export.Transactions {
		if txn.Description != LapseDescription {
			continue
		}
		rec, err := parseSchwabLapse(txn)
		if err != nil {
			return nil, fmt.Errorf("%w: transaction %d: %v", ErrMalformedRecord, i, err)
		}
		lapses = append(lapses, rec)
	}
	return lapses, nil
}

func parseSchwabLapse(txn schwabTransaction) (model.LapseRecord, error) {
	date, err := time.Parse(schwabDateFormat, strings.TrimSpace(txn.Date))
	if err != nil {
		return model.LapseRecord{}, fmt.Errorf("parsing date %q: %w", txn.Date, err)
	}

	if len(txn.TransactionDetails) == 0 {
		return model.LapseRecord{}, fmt.Errorf("lapse on %s has no transaction details", txn.Date)
	}
	details := txn.TransactionDetails[0].Details

	deposited, err := parseShares(details.NetSharesDeposited)
	if err != nil {
		return model.LapseRecord{}, fmt.Errorf("parsing deposited shares: %w", err)
	}

	sold, err := parseShares(details.SharesSoldWithheldForTaxes)
	if err != nil {
		return model.LapseRecord{}, fmt.Errorf("parsing sold shares: %w", err)
	}

	price, err := parsePrice(details.FairMarketValuePrice)
	if err != nil {
		return model.LapseRecord{}, fmt.Errorf("parsing fair market price: %w", err)
	}

	return model.LapseRecord{
		Date:            date,
		Symbol:          txn.Symbol,
		SharesDeposited: deposited,
		SharesSold:      sold,
		FairMarketPrice: price,
	}, nil
}

// parseShares parses a share count such as "1,250".
func parseShares(s string) (int64, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	n, err := strconv.ParseInt(clean, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid share count %q", s)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative share count %q", s)
	}
	return n, nil
}

// parsePrice parses a currency-prefixed price such as "$1,024.35".
func parsePrice(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(clean, "$")
	clean = strings.ReplaceAll(clean, ",", "")
	price, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid price %q", s)
	}
	if !price.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("non-positive price %q", s)
	}
	return price, nil
}
