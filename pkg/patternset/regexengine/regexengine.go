// Package regexengine abstracts the verification step of the redactor's
// tier cascade behind one small interface, with two interchangeable
// backends: a JIT-compiled Hyperscan engine (cgo builds) and a portable
// regexp2 engine (always available).
//
// Grounded on the titus pkg/matcher split between hyperscan.go and
// regexp_portable.go: same idea of "one interface, pick the backend the
// build allows," narrowed here to a single-pattern, single-shot verifier
// since the automaton's tier cascade already narrows down which pattern id
// to verify before the regex engine is ever invoked.
package regexengine

// Span is a verified match within the window passed to Verify: Start and
// End are byte offsets relative to the window, mirroring Hyperscan's
// ovector[0]/ovector[1] semantics referenced in spec §4.5 step 4.
type Span struct {
	Start int
	End   int
}

// Engine verifies a single compiled pattern against a bounded window of a
// record, returning the first match at or after the window start.
// Implementations must be safe for concurrent use by independent instances
// (one Engine per worker), not necessarily safe for concurrent calls on the
// same instance.
type Engine interface {
	// Verify searches window for the pattern, returning the first match as
	// a Span relative to window's start, or ok=false if none is found or
	// the search times out.
	Verify(window []byte) (Span, bool)

	// Close releases any backend resources (JIT database handles,
	// scratch space). Safe to call on a nil-backed zero value.
	Close() error
}

// Backend names one of the compiled-in engine implementations.
type Backend int

const (
	// BackendPortable selects the always-available regexp2 engine.
	BackendPortable Backend = iota
	// BackendHyperscan selects the JIT-compiled Hyperscan engine, only
	// compiled in under cgo builds; New falls back to BackendPortable
	// silently when Hyperscan is unavailable.
	BackendHyperscan
)
