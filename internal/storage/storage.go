package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/bonjohen/chess-metric-analyzer/internal/uistate"
)

// Store handles SQLite operations. Writes go through a single async writer
// goroutine and are dropped once the store is degraded; reads are direct.
type Store struct {
	db           *sql.DB
	path         string
	writeChan    chan func(*sql.Tx) error
	healthStatus atomic.Bool
	log          *zap.SugaredLogger
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	closeOnce    sync.Once
}

// NewStore opens the database and starts the writer
func NewStore(dataSourceName string, devMode bool, log *zap.SugaredLogger) (*Store, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL in development for concurrent CLI queries against a running server
	if devMode {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	ctx, cancel := context.WithCancel(context.Background())

	s := &Store{
		db:        db,
		path:      dataSourceName,
		writeChan: make(chan func(*sql.Tx) error, 1000),
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
	}
	s.healthStatus.Store(true)

	s.wg.Add(1)
	go s.writerLoop()

	return s, nil
}

// IsHealthy returns true if the storage is operational
func (s *Store) IsHealthy() bool {
	return s.healthStatus.Load()
}

func (s *Store) writerLoop() {
	defer s.wg.Done()

	for {
		select {
		case fn := <-s.writeChan:
			s.apply(fn)
		case <-s.ctx.Done():
			s.drain()
			return
		}
	}
}

// drain runs whatever is already queued at shutdown, bounded by a deadline
func (s *Store) drain() {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case fn := <-s.writeChan:
			s.apply(fn)
		default:
			return
		}
	}
}

// apply runs one queued write in its own transaction. The first failure
// marks the store degraded; later writes are discarded.
func (s *Store) apply(fn func(*sql.Tx) error) {
	if !s.healthStatus.Load() {
		return
	}
	if err := s.inTx(fn); err != nil {
		s.log.Errorw("storage degraded", "error", err)
		s.healthStatus.Store(false)
	}
}

func (s *Store) inTx(fn func(*sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return fmt.Errorf("write: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// enqueue hands a write to the writer without blocking
func (s *Store) enqueue(what string, fn func(*sql.Tx) error) error {
	if !s.healthStatus.Load() {
		return fmt.Errorf("%w: store degraded, dropping %s", uistate.ErrPersistence, what)
	}
	select {
	case s.writeChan <- fn:
		return nil
	default:
		s.log.Warnw("storage write queue full, dropping write", "what", what)
		return fmt.Errorf("%w: write queue full, dropping %s", uistate.ErrPersistence, what)
	}
}

// Sync waits until every write queued before the call has been executed
func (s *Store) Sync(ctx context.Context) error {
	done := make(chan struct{})
	err := s.enqueue("sync marker", func(*sql.Tx) error {
		close(done)
		return nil
	})
	if err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the writer, flushing what it can within two seconds
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.cancel()

		done := make(chan struct{})
		go func() {
			s.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			s.log.Warn("storage writer shutdown timeout, some writes may be lost")
		}

		if s.db != nil {
			err = s.db.Close()
		}
	})
	return err
}

// InitDB creates the tables if they do not exist yet
func (s *Store) InitDB() error {
	err := s.inTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(Schema)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// DeleteDB closes the store and removes the database file
func (s *Store) DeleteDB() error {
	if err := s.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete database file: %w", err)
	}

	return nil
}
