package brokerage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vestcheck/vestcheck/internal/model"
)

var (
	// ErrNoSourceFile means the data directory holds no brokerage export.
	ErrNoSourceFile = errors.New("no brokerage export found")
	// ErrMultipleSourceFiles means the data directory holds more than one brokerage export.
	ErrMultipleSourceFiles = errors.New("multiple brokerage exports found")
	// ErrMalformedRecord means a lapse in the export could not be parsed.
	ErrMalformedRecord = errors.New("malformed brokerage record")
)

// Parser converts a brokerage export into lapse records.
type Parser interface {
	Parse(r io.Reader) ([]model.LapseRecord, error)
	Format() string
}

const (
	exportPrefix = "EquityAwards"
	exportSuffix = ".json"
)

// Locate returns the path of the single brokerage export in dataDir.
func Locate(dataDir string) (string, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return "", fmt.Errorf("reading data dir: %w", err)
	}

	var matches []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, exportPrefix) && strings.HasSuffix(name, exportSuffix) {
			matches = append(matches, name)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w in %s: download the equity awards report and put it in the data folder", ErrNoSourceFile, dataDir)
	case 1:
		return filepath.Join(dataDir, matches[0]), nil
	default:
		return "", fmt.Errorf("%w in %s (%s): leave only one", ErrMultipleSourceFiles, dataDir, strings.Join(matches, ", "))
	}
}

// Load locates the export in dataDir and parses it with p.
func Load(dataDir string, p Parser) ([]model.LapseRecord, error) {
	path, err := Locate(dataDir)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening brokerage export: %w", err)
	}
	defer f.Close()

	lapses, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	return lapses, nil
}

// FilterSymbol returns the lapses of a single symbol.
func FilterSymbol(records []model.LapseRecord, symbol string) []model.LapseRecord {
	var result []model.LapseRecord
	for _, r := range records {
		if strings.EqualFold(r.Symbol, symbol) {
			result = append(result, r)
		}
	}
	return result
}
