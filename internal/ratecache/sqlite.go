package ratecache

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS rates (
	date_key TEXT PRIMARY KEY,
	rate     REAL
)`

// SQLiteStore keeps the cache in a SQLite database file. Each Put commits on its own.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Get implements Store.
func (s *SQLiteStore) Get(key string) (*float64, bool, error) {
	var rate sql.NullFloat64
	err := s.db.QueryRow("SELECT rate FROM rates WHERE date_key = ?", key).Scan(&rate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("querying rate: %w", err)
	}
	if !rate.Valid {
		return nil, true, nil
	}
	v := rate.Float64
	return &v, true, nil
}

// Put implements Store.
func (s *SQLiteStore) Put(key string, rate *float64) error {
	var value sql.NullFloat64
	if rate != nil {
		value = sql.NullFloat64{Float64: *rate, Valid: true}
	}
	if _, err := s.db.Exec("INSERT OR REPLACE INTO rates (date_key, rate) VALUES (?, ?)", key, value); err != nil {
		return fmt.Errorf("storing rate: %w", err)
	}
	return nil
}

// Flush implements Store. Writes are already committed.
func (s *SQLiteStore) Flush() error { return nil }

// Close implements Store.
func (s *SQLiteStore) Close() error { return s.db.Close() }
