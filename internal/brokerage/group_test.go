package brokerage

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vestcheck/vestcheck/internal/model"
)

func rec(month time.Month, day int, deposited, sold int64, price string) model.LapseRecord {
	return model.LapseRecord{
		Date:            time.Date(2023, month, day, 0, 0, 0, 0, time.UTC),
		Symbol:          "AFRM",
		SharesDeposited: deposited,
		SharesSold:      sold,
		FairMarketPrice: decimal.RequireFromString(price),
	}
}

func TestGroupByMonth(t *testing.T) {
	records := []model.LapseRecord{
		rec(time.January, 15, 5, 10, "100"),
		rec(time.March, 15, 4, 4, "12.40"),
		rec(time.March, 28, 2, 2, "12.50"),
	}

	groups := GroupByMonth(records)
	require.Len(t, groups, 2)

	jan := groups["Jan 2023"]
	assert.Equal(t, int64(5), jan.SharesDeposited)
	assert.Equal(t, int64(10), jan.SharesSold)

	mar := groups["Mar 2023"]
	assert.Equal(t, int64(6), mar.SharesDeposited)
	assert.Equal(t, int64(6), mar.SharesSold)
	assert.Equal(t, "12.50", mar.FairMarketPrice.StringFixed(2), "last merged price wins")
	assert.Equal(t, 28, mar.Date.Day())
}

func TestGroupByMonth_Idempotent(t *testing.T) {
	records := []model.LapseRecord{
		rec(time.January, 15, 5, 10, "100"),
		rec(time.January, 16, 1, 1, "100"),
		rec(time.March, 15, 4, 4, "12.50"),
	}
	groups := GroupByMonth(records)

	var singles []model.LapseRecord
	for _, agg := range groups {
		singles = append(singles, agg.AsRecord())
	}
	assert.Equal(t, groups, GroupByMonth(singles))
}

func TestGroupByMonth_Commutative(t *testing.T) {
	a := rec(time.January, 15, 5, 10, "100")
	b := rec(time.January, 20, 3, 7, "100")

	ab := GroupByMonth([]model.LapseRecord{a, b})["Jan 2023"]
	ba := GroupByMonth([]model.LapseRecord{b, a})["Jan 2023"]
	assert.Equal(t, ab.SharesDeposited, ba.SharesDeposited)
	assert.Equal(t, ab.SharesSold, ba.SharesSold)
}

func TestGroupByMonth_Empty(t *testing.T) {
	assert.Empty(t, GroupByMonth(nil))
}
