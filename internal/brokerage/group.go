package brokerage

import "github.com/vestcheck/vestcheck/internal/model"

// GroupByMonth folds lapses into one aggregate per calendar month.
// Records are expected to belong to a single symbol; see FilterSymbol.
func GroupByMonth(records []model.LapseRecord) map[string]model.MonthlyLapse {
	result := make(map[string]model.MonthlyLapse)
	for _, r := range records {
		key := model.MonthKey(r.Date)
		if agg, ok := result[key]; ok {
			result[key] = agg.Merge(r)
			continue
		}
		result[key] = model.NewMonthlyLapse(r)
	}
	return result
}
