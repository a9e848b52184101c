// Package store persists engine state between runs: transposition-table
// snapshots, so a new process can reuse the previous one's work, and
// cumulative search totals.
package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/cdbfoster/zero-sum-sub001/search"
)

// Storage key prefixes.
const (
	keyTablePrefix = "table/"
	keyTotals      = "totals"
)

// Totals accumulates search statistics across runs.
type Totals struct {
	Searches     int           `json:"searches"`
	NodesVisited uint64        `json:"nodes_visited"`
	TimeSearched time.Duration `json:"time_searched"`
}

// Add folds the statistics of one completed search into the totals.
func (t *Totals) Add(stats search.Statistics) {
	t.Searches++
	t.NodesVisited += stats.NodesVisited
	t.TimeSearched += stats.Elapsed
}

// Store wraps BadgerDB for persistent engine state.
type Store struct {
	db *badger.DB
}

// Open opens (creating if necessary) a store in dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Badger's own logging is noise here

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

// OpenDefault opens the store in the platform data directory.
func OpenDefault() (*Store, error) {
	dir, err := DatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dir)
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveTable persists a transposition-table snapshot under name, replacing
// any previous snapshot of that name.
func (s *Store) SaveTable(name string, entries []search.SavedEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyTablePrefix+name), data)
	})
}

// LoadTable loads the snapshot saved under name. A missing snapshot is not
// an error; it loads as empty.
func (s *Store) LoadTable(name string) ([]search.SavedEntry, error) {
	var entries []search.SavedEntry

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyTablePrefix + name))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entries)
		})
	})
	return entries, err
}

// SaveTotals persists the cumulative search totals.
func (s *Store) SaveTotals(totals *Totals) error {
	data, err := json.Marshal(totals)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyTotals), data)
	})
}

// LoadTotals loads the cumulative search totals, zero if never saved.
func (s *Store) LoadTotals() (*Totals, error) {
	totals := &Totals{}

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyTotals))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, totals)
		})
	})
	return totals, err
}
