// Package checkpoint persists per-chunk extraction results in an
// embedded BadgerDB so interrupted corpus runs resume without repeating
// tagger or LLM work.
package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/soundprediction/notegraph/pkg/extract"
	"github.com/soundprediction/notegraph/pkg/types"
)

// Record is the cached outcome of extracting one chunk.
type Record struct {
	Entities  []types.Entity    `json:"entities"`
	Stats     extract.TierStats `json:"stats"`
	CreatedAt time.Time         `json:"created_at"`
}

// Store is a chunk-keyed extraction cache.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// Open opens (or creates) a checkpoint database in dir.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts := badger.DefaultOptions(dir).WithLogger(badgerLogger{logger})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint db: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// OpenInMemory opens a checkpoint store without disk persistence.
func OpenInMemory(logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(badgerLogger{logger})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory checkpoint db: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Put stores the extraction result for one chunk, stamping the record
// with the current time.
func (s *Store) Put(chunkID string, rec *Record) error {
	rec.CreatedAt = time.Now().UTC()
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal checkpoint %s: %w", chunkID, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(chunkID), raw)
	})
}

// Get retrieves the cached result for one chunk. The second return is
// false when no checkpoint exists.
func (s *Store) Get(chunkID string) (*Record, bool, error) {
	var rec Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(chunkID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read checkpoint %s: %w", chunkID, err)
	}
	return &rec, true, nil
}

// Count returns the number of checkpointed chunks.
func (s *Store) Count() (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// Clear drops every checkpoint, forcing the next run to re-extract.
func (s *Store) Clear() error {
	return s.db.DropAll()
}

// Close flushes and closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// badgerLogger routes BadgerDB's internal logging through slog, demoting
// its chatty info output to debug.
type badgerLogger struct {
	logger *slog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
