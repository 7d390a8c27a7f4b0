//go:build cgo

package regexengine

import (
	"fmt"
	"sync"

	"github.com/flier/gohs/hyperscan"
)

// hyperscanEngine wraps a single JIT-compiled Hyperscan block database.
// Grounded on titus's HyperscanMatcher, narrowed to one pattern per
// engine: SomLeftMost is enabled here (unlike the teacher's multi-rule
// database, where it was disabled for memory reasons across thousands of
// patterns) since a single-pattern database pays a much smaller memory
// cost for exact start-of-match tracking.
//
// A Pattern's engine is shared across every parallel driver worker, but
// Hyperscan forbids concurrent Scan calls on one Scratch from multiple
// threads — each caller needs its own. scratchPool hands out a private
// Scratch per concurrent Verify call instead of sharing one; scratches
// tracks every Scratch the pool has ever produced so Close can free them
// all (sync.Pool gives no way to enumerate or drain its contents).
type hyperscanEngine struct {
	db   hyperscan.BlockDatabase
	pool sync.Pool

	mu        sync.Mutex
	scratches []*hyperscan.Scratch
}

func newHyperscan(pattern string) (Engine, error) {
	p := hyperscan.NewPattern(pattern, hyperscan.DotAll|hyperscan.MultiLine|hyperscan.SomLeftMost)
	p.Id = 0

	db, err := hyperscan.NewBlockDatabase(p)
	if err != nil {
		return nil, fmt.Errorf("regexengine: hyperscan compile %q: %w", pattern, err)
	}

	e := &hyperscanEngine{db: db}
	e.pool.New = func() interface{} {
		s, err := hyperscan.NewScratch(db)
		if err != nil {
			return nil
		}
		e.mu.Lock()
		e.scratches = append(e.scratches, s)
		e.mu.Unlock()
		return s
	}

	// Prime one scratch eagerly so an allocation failure surfaces here,
	// not on whichever goroutine first calls Verify.
	first := e.pool.New()
	if first == nil {
		db.Close()
		return nil, fmt.Errorf("regexengine: hyperscan scratch: allocation failed")
	}
	e.pool.Put(first)
	return e, nil
}

func (e *hyperscanEngine) Verify(window []byte) (Span, bool) {
	v := e.pool.Get()
	scratch, ok := v.(*hyperscan.Scratch)
	if !ok || scratch == nil {
		return Span{}, false
	}
	defer e.pool.Put(scratch)

	var found Span
	matched := false
	onMatch := func(id uint, from, to uint64, flags uint, context interface{}) error {
		if !matched {
			found = Span{Start: int(from), End: int(to)}
			matched = true
		}
		return nil
	}
	if err := e.db.Scan(window, scratch, onMatch, nil); err != nil {
		return Span{}, false
	}
	return found, matched
}

func (e *hyperscanEngine) Close() error {
	e.mu.Lock()
	scratches := e.scratches
	e.scratches = nil
	e.mu.Unlock()

	var firstErr error
	for _, s := range scratches {
		if err := s.Free(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if e.db != nil {
		if err := e.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

const hyperscanAvailable = true
