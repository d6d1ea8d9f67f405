package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	apperrors "skillvet/internal/errors"
)

// BadgerConfig holds configuration for the embedded durable store
type BadgerConfig struct {
	// Path is the directory for database files. Ignored when InMemory is true.
	Path string
	// InMemory enables in-memory mode, used by tests.
	InMemory bool
	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool
	// GCInterval is how often value log garbage collection runs. 0 disables it.
	GCInterval time.Duration
	// GCDiscardRatio is the minimum discardable ratio before GC rewrites a file.
	GCDiscardRatio float64
	// Logger receives badger's internal log lines. Nil disables them.
	Logger *apperrors.Logger
}

// DefaultBadgerConfig returns production defaults for the given path.
func DefaultBadgerConfig(path string) BadgerConfig {
	return BadgerConfig{
		Path:           path,
		SyncWrites:     true,
		GCInterval:     5 * time.Minute,
		GCDiscardRatio: 0.5,
	}
}

// BadgerStore is the durable Store implementation backed by BadgerDB.
type BadgerStore struct {
	db     *badger.DB
	stopGC chan struct{}
	doneGC chan struct{}
}

// badgerLogger adapts the application logger to badger's Logger interface.
type badgerLogger struct {
	logger *apperrors.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Warn("badger: " + fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn("badger: " + fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug("badger: " + fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug("badger: " + fmt.Sprintf(format, args...))
}

// OpenBadger opens the durable store, creating the directory if needed.
// Callers must Close the returned store.
func OpenBadger(cfg BadgerConfig) (*BadgerStore, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, apperrors.NewConfigError(
				apperrors.ErrCodeInvalidConfig,
				"storage path is required for a persistent store",
				nil,
			)
		}
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, apperrors.NewStorageError(
				apperrors.ErrCodeStorageFailed,
				"failed to create storage directory",
				err,
			).WithContext("path", cfg.Path)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites)
	opts = opts.WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, apperrors.NewStorageError(
			apperrors.ErrCodeStorageFailed,
			"failed to open storage",
			err,
		).WithContext("path", cfg.Path)
	}

	s := &BadgerStore{db: db}
	if cfg.GCInterval > 0 && !cfg.InMemory {
		s.stopGC = make(chan struct{})
		s.doneGC = make(chan struct{})
		go s.runGC(cfg.GCInterval, cfg.GCDiscardRatio)
	}
	return s, nil
}

// OpenBadgerInMemory opens an in-memory store for tests.
func OpenBadgerInMemory() (*BadgerStore, error) {
	return OpenBadger(BadgerConfig{InMemory: true})
}

// runGC periodically rewrites value log files once enough of their data is
// discardable. badger.ErrNoRewrite just means there was nothing to collect.
func (s *BadgerStore) runGC(interval time.Duration, ratio float64) {
	defer close(s.doneGC)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopGC:
			return
		case <-ticker.C:
			for {
				if err := s.db.RunValueLogGC(ratio); err != nil {
					break
				}
			}
		}
	}
}

// Get implements Store.
func (s *BadgerStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, apperrors.NewStorageError(
			apperrors.ErrCodeStorageFailed,
			"failed to read key",
			err,
		).WithContext("key", key)
	}
	return value, nil
}

// Set implements Store.
func (s *BadgerStore) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return apperrors.NewStorageError(
			apperrors.ErrCodeStorageFailed,
			"failed to write key",
			err,
		).WithContext("key", key)
	}
	return nil
}

// Delete implements Store.
func (s *BadgerStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return apperrors.NewStorageError(
			apperrors.ErrCodeStorageFailed,
			"failed to delete key",
			err,
		).WithContext("key", key)
	}
	return nil
}

// Close stops garbage collection and closes the database.
func (s *BadgerStore) Close() error {
	if s.stopGC != nil {
		close(s.stopGC)
		<-s.doneGC
	}
	return s.db.Close()
}
