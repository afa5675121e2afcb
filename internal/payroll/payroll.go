// Package payroll loads monthly payslip data and classifies the RSU lines in it.
package payroll

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vestcheck/vestcheck/internal/model"
)

// Category is the RSU role of a payslip line.
type Category int

const (
	CategoryOther Category = iota
	CategorySold
	CategoryKept
	CategoryRetention
)

// Taxonomy maps payslip descriptions to categories. Matching ignores case and surrounding space.
type Taxonomy struct {
	byDesc map[string]Category
}

// NewTaxonomy builds a Taxonomy from the description lists of each category.
func NewTaxonomy(sold, kept, retention []string) *Taxonomy {
	t := &Taxonomy{byDesc: make(map[string]Category)}
	for _, group := range []struct {
		descs []string
		cat   Category
	}{
		{sold, CategorySold},
		{kept, CategoryKept},
		{retention, CategoryRetention},
	} {
		for _, d := range group.descs {
			t.byDesc[normalize(d)] = group.cat
		}
	}
	return t
}

// Classify returns the category of a description.
func (t *Taxonomy) Classify(desc string) Category {
	return t.byDesc[normalize(desc)]
}

// Find returns the first entry of the given category.
func (t *Taxonomy) Find(entries []model.PayrollEntry, cat Category) (model.PayrollEntry, bool) {
	for _, e := range entries {
		if t.Classify(e.Description) == cat {
			return e, true
		}
	}
	return model.PayrollEntry{}, false
}

// Income returns the income of the first entry of cat, or zero when the payslip omits it.
func (t *Taxonomy) Income(entries []model.PayrollEntry, cat Category) decimal.Decimal {
	e, ok := t.Find(entries, cat)
	if !ok {
		return decimal.Zero
	}
	return e.Income
}

// Retention returns the retention of the first retention entry, or zero.
func (t *Taxonomy) Retention(entries []model.PayrollEntry) decimal.Decimal {
	e, ok := t.Find(entries, CategoryRetention)
	if !ok {
		return decimal.Zero
	}
	return e.Retention
}

func normalize(desc string) string {
	return strings.ToUpper(strings.TrimSpace(desc))
}

// Read decodes payroll months from r, keeping their order.
func Read(r io.Reader) ([]model.PayrollMonth, error) {
	var months []model.PayrollMonth
	if err := json.NewDecoder(r).Decode(&months); err != nil {
		return nil, fmt.Errorf("decoding payroll: %w", err)
	}
	for i, m := range months {
		if m.Month == "" {
			return nil, fmt.Errorf("payroll month %d has no month key", i)
		}
	}
	return months, nil
}

// Load reads payroll months from a JSON file.
func Load(path string) ([]model.PayrollMonth, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening payroll: %w", err)
	}
	defer f.Close()

	months, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading payroll %s: %w", path, err)
	}
	return months, nil
}
