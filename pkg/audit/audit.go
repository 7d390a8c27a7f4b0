// Package audit implements the optional SQLite-backed log of which
// pattern fired on which record, for compliance review (spec §3's
// [EXPANDED] Audit record, §9 component 10).
//
// A single background goroutine drains a buffered channel and writes rows,
// so enabling the audit store never touches the redactor's allocation-free
// per-record hot path: callers hand off a Record by value over the
// channel and move on.
//
// Grounded on titus's pkg/store (schema.go's explicit per-table create
// statements, sqlite.go's WAL-mode open and INSERT OR IGNORE idiom),
// narrowed from NoseyParker's multi-table blob/rule/match/finding schema
// to the one append-only table a redaction audit log needs.
package audit

import (
	"database/sql"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Record is one audit entry: spec §3's (timestamp, record_seq,
// pattern_name, span_len) tuple, plus a run id tying entries to one
// invocation.
type Record struct {
	RunID      string
	Timestamp  time.Time
	RecordSeq  uint64
	PatternName string
	SpanLen    int
}

// queueCapacity bounds the buffered channel between callers and the
// background writer; a full queue makes Enqueue drop the record rather
// than block the hot path (see Enqueue).
const queueCapacity = 4096

// Store is an append-only audit log backed by SQLite. The zero value is
// not usable; construct one with Open.
type Store struct {
	db    *sql.DB
	runID string
	queue chan Record
	done  chan struct{}

	// dropped is incremented by Enqueue, which every driver worker
	// goroutine may call concurrently, so it needs atomic access.
	dropped atomic.Uint64
}

// Open creates (or appends to) a SQLite database at path and starts the
// background writer goroutine. Callers must call Close to flush and
// release the underlying connection.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("audit: open %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("audit: enable WAL mode: %w", err)
	}
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("audit: create schema: %w", err)
	}

	s := &Store{
		db:    db,
		runID: uuid.NewString(),
		queue: make(chan Record, queueCapacity),
		done:  make(chan struct{}),
	}
	go s.run()
	return s, nil
}

// RunID identifies this Store's invocation, stamped onto every Record
// enqueued through it.
func (s *Store) RunID() string { return s.runID }

// Enqueue hands off one audit record to the background writer. If the
// queue is full, the record is dropped and DroppedCount increments rather
// than blocking the caller's hot path.
func (s *Store) Enqueue(rec Record) {
	rec.RunID = s.runID
	select {
	case s.queue <- rec:
	default:
		s.dropped.Add(1)
	}
}

// DroppedCount reports how many records were dropped due to a full queue.
func (s *Store) DroppedCount() uint64 { return s.dropped.Load() }

// run drains the queue and writes rows until Close closes it.
func (s *Store) run() {
	defer close(s.done)
	for rec := range s.queue {
		_, _ = s.db.Exec(
			`INSERT INTO audit_records (run_id, ts, record_seq, pattern_name, span_len) VALUES (?, ?, ?, ?, ?)`,
			rec.RunID, rec.Timestamp.Format(time.RFC3339Nano), rec.RecordSeq, rec.PatternName, rec.SpanLen,
		)
	}
}

// Close stops accepting new records, waits for the background writer to
// drain the queue, and closes the underlying database handle.
func (s *Store) Close() error {
	close(s.queue)
	<-s.done
	return s.db.Close()
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS audit_records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			ts TEXT NOT NULL,
			record_seq INTEGER NOT NULL,
			pattern_name TEXT NOT NULL,
			span_len INTEGER NOT NULL
		)
	`)
	return err
}
