package ratecache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	gocache "github.com/patrickmn/go-cache"
)

// JSONStore keeps the cache as a flat {"key": rate|null} JSON object on disk,
// held in memory between writes.
type JSONStore struct {
	path  string
	items *gocache.Cache
	dirty bool
}

// OpenJSON loads path, or starts empty when the file does not exist yet.
func OpenJSON(path string) (*JSONStore, error) {
	s := &JSONStore{
		path:  path,
		items: gocache.New(gocache.NoExpiration, 0),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var entries map[string]*float64
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	for k, v := range entries {
		s.items.Set(k, v, gocache.NoExpiration)
	}
	return s, nil
}

// Get implements Store.
func (s *JSONStore) Get(key string) (*float64, bool, error) {
	v, ok := s.items.Get(key)
	if !ok {
		return nil, false, nil
	}
	rate, ok := v.(*float64)
	if !ok {
		return nil, false, fmt.Errorf("unexpected cached value %T", v)
	}
	return rate, true, nil
}

// Put implements Store. The write reaches disk on the next Flush.
func (s *JSONStore) Put(key string, rate *float64) error {
	s.items.Set(key, rate, gocache.NoExpiration)
	s.dirty = true
	return nil
}

// Flush rewrites the file if anything changed since the last flush.
func (s *JSONStore) Flush() error {
	if !s.dirty {
		return nil
	}

	entries := make(map[string]*float64, s.items.ItemCount())
	for k, item := range s.items.Items() {
		rate, _ := item.Object.(*float64)
		entries[k] = rate
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling rates: %w", err)
	}

	// Replace by rename; the previous file stays whole until the new one is written.
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}

	s.dirty = false
	return nil
}

// Close implements Store.
func (s *JSONStore) Close() error { return nil }
