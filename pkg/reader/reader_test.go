package reader

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, r *Reader) []string {
	t.Helper()
	var out []string
	for {
		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		out = append(out, string(rec))
	}
	return out
}

func TestBasicLineFraming(t *testing.T) {
	r := New(strings.NewReader("alpha\nbeta\ngamma\n"), 0)
	recs := readAll(t, r)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, recs)
	assert.Equal(t, uint64(3), r.Stats().RecordsEmitted)
}

func TestFinalUnterminatedRecordFlushed(t *testing.T) {
	r := New(strings.NewReader("alpha\nbeta"), 0)
	recs := readAll(t, r)
	assert.Equal(t, []string{"alpha", "beta"}, recs)
}

func TestEmptySource(t *testing.T) {
	r := New(strings.NewReader(""), 0)
	_, err := r.Next()
	assert.Equal(t, io.EOF, err)
}

// slowReader returns data a few bytes at a time, forcing carry-over logic
// across many refills regardless of the underlying read window size.
type slowReader struct {
	data []byte
	pos  int
	step int
}

func (s *slowReader) Read(p []byte) (int, error) {
	if s.pos >= len(s.data) {
		return 0, io.EOF
	}
	n := s.step
	if n > len(p) {
		n = len(p)
	}
	if s.pos+n > len(s.data) {
		n = len(s.data) - s.pos
	}
	copy(p, s.data[s.pos:s.pos+n])
	s.pos += n
	return n, nil
}

func TestCarryOverAcrossSlowReads(t *testing.T) {
	content := "first record here\nsecond record here\nthird\n"
	r := New(&slowReader{data: []byte(content), step: 3}, 0)
	recs := readAll(t, r)
	assert.Equal(t, []string{"first record here", "second record here", "third"}, recs)
}

func TestOversizedRecordIsDroppedAndCounted(t *testing.T) {
	long := strings.Repeat("x", 100)
	content := "ok\n" + long + "\nok2\n"
	r := New(strings.NewReader(content), 10)
	recs := readAll(t, r)
	assert.Equal(t, []string{"ok", "ok2"}, recs)
	assert.Equal(t, uint64(1), r.Stats().RecordsDropped)
}

func TestOversizedRecordDroppedViaSlowReader(t *testing.T) {
	long := strings.Repeat("y", 50)
	content := "hi\n" + long + "\nbye\n"
	r := New(&slowReader{data: []byte(content), step: 4}, 10)
	recs := readAll(t, r)
	assert.Equal(t, []string{"hi", "bye"}, recs)
	assert.Equal(t, uint64(1), r.Stats().RecordsDropped)
}

func TestBytesAccounting(t *testing.T) {
	r := New(bytes.NewReader([]byte("abc\ndef\n")), 0)
	readAll(t, r)
	assert.Equal(t, uint64(8), r.Stats().BytesIn)
	assert.Equal(t, uint64(6), r.Stats().BytesOut)
}
