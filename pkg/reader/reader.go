// Package reader implements buffered record framing with carry-over across
// read refills, bounded record length, and I/O accounting — the framing
// layer that feeds records to the redactor one at a time.
//
// Grounded on the buffered-producer shape of buildkite-agent's
// LogStreamer (agent/log_streamer.go): a config struct naming size limits,
// explicit counters for what was processed versus dropped, and a single
// owned buffer reused across calls rather than allocating per record.
package reader

import (
	"bytes"
	"errors"
	"io"
)

// DefaultMaxRecordLen is used when a caller passes maxRecordLen <= 0 to New.
const DefaultMaxRecordLen = 1 << 20 // 1 MiB

// defaultReadWindow is the size of the underlying read buffer.
const defaultReadWindow = 64 * 1024

// Stats accounts for bytes and records observed by a Reader.
type Stats struct {
	BytesIn        uint64
	BytesOut       uint64 // bytes actually emitted in records, including carry copies
	RecordsEmitted uint64
	RecordsDropped uint64 // records that exceeded maxRecordLen
}

// Reader frames newline-terminated records out of src, carrying partial
// records across underlying read refills.
type Reader struct {
	src io.Reader

	maxRecordLen int

	readWindow []byte
	windowLen  int
	windowPos  int

	carry    []byte
	carryLen int
	dropping bool

	record []byte // scratch buffer for records straddling a refill boundary

	eof   bool
	stats Stats
}

// New creates a Reader over src. maxRecordLen bounds the longest record
// this Reader will emit whole; records exceeding it are dropped to the
// next newline and counted (see Stats.RecordsDropped). A value <= 0 uses
// DefaultMaxRecordLen.
func New(src io.Reader, maxRecordLen int) *Reader {
	if maxRecordLen <= 0 {
		maxRecordLen = DefaultMaxRecordLen
	}
	return &Reader{
		src:          src,
		maxRecordLen: maxRecordLen,
		readWindow:   make([]byte, defaultReadWindow),
		carry:        make([]byte, maxRecordLen),
		record:       make([]byte, maxRecordLen),
	}
}

// Stats returns a copy of the current I/O accounting.
func (r *Reader) Stats() Stats { return r.stats }

// ErrRecordTooLong is never returned to callers of Next: oversized records
// are silently dropped per spec §4.6. It documents the internal condition
// that triggers dropping mode.
var errRecordTooLong = errors.New("reader: record exceeds maxRecordLen")

// Next returns the next record (without its trailing newline). The
// returned slice is valid only until the next call to Next or Close.
// Next returns io.EOF once the source is exhausted and any pending carry
// has been flushed.
func (r *Reader) Next() ([]byte, error) {
	for {
		if r.windowPos >= r.windowLen {
			if r.eof {
				return r.flushFinalCarry()
			}
			if err := r.refill(); err != nil {
				if err == io.EOF {
					r.eof = true
					continue
				}
				return nil, err
			}
			continue
		}

		chunk := r.readWindow[r.windowPos:r.windowLen]
		nl := bytes.IndexByte(chunk, '\n')
		if nl < 0 {
			r.consumeIntoCarry(chunk)
			r.windowPos = r.windowLen
			continue
		}

		segment := chunk[:nl]
		r.windowPos += nl + 1

		if r.dropping {
			r.dropping = false
			r.carryLen = 0
			r.stats.RecordsDropped++
			continue
		}

		if r.carryLen == 0 {
			if len(segment) > r.maxRecordLen {
				r.stats.RecordsDropped++
				continue
			}
			r.stats.RecordsEmitted++
			r.stats.BytesOut += uint64(len(segment))
			return segment, nil
		}

		rec, err := r.appendToCarry(segment)
		r.carryLen = 0
		if err != nil {
			r.stats.RecordsDropped++
			continue
		}
		r.stats.RecordsEmitted++
		r.stats.BytesOut += uint64(len(rec))
		return rec, nil
	}
}

// refill reads the next chunk from src into readWindow.
func (r *Reader) refill() error {
	n, err := r.src.Read(r.readWindow)
	r.windowPos = 0
	r.windowLen = n
	r.stats.BytesIn += uint64(n)
	if n > 0 {
		return nil
	}
	if err == nil {
		return nil
	}
	return err
}

// consumeIntoCarry appends chunk (a partial record with no newline yet)
// into the carry buffer, entering dropping mode if it would overflow
// maxRecordLen.
func (r *Reader) consumeIntoCarry(chunk []byte) {
	if r.dropping {
		return
	}
	if r.carryLen+len(chunk) > r.maxRecordLen {
		r.dropping = true
		r.carryLen = 0
		return
	}
	copy(r.carry[r.carryLen:], chunk)
	r.carryLen += len(chunk)
}

// appendToCarry concatenates the pending carry with segment (the window
// prefix up to a newline) into the owned record scratch buffer.
func (r *Reader) appendToCarry(segment []byte) ([]byte, error) {
	total := r.carryLen + len(segment)
	if total > r.maxRecordLen {
		return nil, errRecordTooLong
	}
	n := copy(r.record, r.carry[:r.carryLen])
	n += copy(r.record[n:], segment)
	return r.record[:n], nil
}

// flushFinalCarry emits any pending carry as a final, unterminated record
// once the source is exhausted.
func (r *Reader) flushFinalCarry() ([]byte, error) {
	if r.dropping {
		r.dropping = false
		r.carryLen = 0
		r.stats.RecordsDropped++
		return nil, io.EOF
	}
	if r.carryLen == 0 {
		return nil, io.EOF
	}
	n := r.carryLen
	r.carryLen = 0
	r.stats.RecordsEmitted++
	r.stats.BytesOut += uint64(n)
	return r.carry[:n], nil
}
