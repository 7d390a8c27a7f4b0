package audit

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestOpenEnqueueAndClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")
	s, err := Open(path)
	require.NoError(t, err)

	s.Enqueue(Record{Timestamp: time.Now(), RecordSeq: 1, PatternName: "aws_key", SpanLen: 20})
	s.Enqueue(Record{Timestamp: time.Now(), RecordSeq: 2, PatternName: "email", SpanLen: 16})

	require.NoError(t, s.Close())

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM audit_records").Scan(&count))
	assert.Equal(t, 2, count)
}

func TestRunIDStampedOnEveryRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")
	s, err := Open(path)
	require.NoError(t, err)
	runID := s.RunID()
	s.Enqueue(Record{RecordSeq: 1, PatternName: "x", SpanLen: 1})
	require.NoError(t, s.Close())

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var gotRunID string
	require.NoError(t, db.QueryRow("SELECT run_id FROM audit_records LIMIT 1").Scan(&gotRunID))
	assert.Equal(t, runID, gotRunID)
}

func TestEnqueueUnderLoadNeverBlocksOrPanics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")
	s, err := Open(path)
	require.NoError(t, err)

	for i := 0; i < queueCapacity*2; i++ {
		s.Enqueue(Record{RecordSeq: uint64(i), PatternName: "x", SpanLen: 1})
	}
	require.NoError(t, s.Close())
}
