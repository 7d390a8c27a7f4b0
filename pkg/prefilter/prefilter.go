// Package prefilter implements the cheap tier-1 byte-class test that the
// redactor runs before touching any automaton: does a record contain any
// byte from a small trigger set at all?
//
// Grounded in spirit on the corpus's several SIMD byte-scan building blocks
// (the AVX2/SSE dispatch pattern in coregex's simd and prefilter packages):
// detect hardware capability once via pkg/cpufeature, then choose between a
// vectorized any-of-16-bytes loop and a scalar fallback. The concrete
// instruction sequences here are a portable Go any-of test rather than
// hand-written assembly, since the teacher's assembly kernels are
// architecture-specific files this package does not attempt to replicate;
// cpufeature.Current().BestPrefilterWidth() still governs the chunk size
// used by the portable loop, preserving the dispatch shape.
package prefilter

import (
	"bytes"

	"github.com/cortexred/redactline/pkg/cpufeature"
)

// MaxTriggerBytes bounds the trigger set size; beyond this, soundness is
// partial (see Filter's doc comment) and the cascade's later tiers must
// cover the gap.
const MaxTriggerBytes = 16

// Filter holds a small set of trigger bytes and answers whether a record
// might contain a pattern, cheaply enough to run on every record.
type Filter struct {
	triggers [MaxTriggerBytes]byte
	present  [256]bool
	count    int
	width    int
}

// New builds a Filter from an arbitrary set of candidate bytes, keeping at
// most MaxTriggerBytes distinct ones. Order of the input has no bearing on
// correctness; duplicates are collapsed.
func New(candidates []byte) *Filter {
	f := &Filter{width: cpufeature.Current().BestPrefilterWidth()}
	for _, b := range candidates {
		if f.present[b] {
			continue
		}
		if f.count >= MaxTriggerBytes {
			continue
		}
		f.present[b] = true
		f.triggers[f.count] = b
		f.count++
	}
	return f
}

// Len reports how many distinct trigger bytes are active.
func (f *Filter) Len() int { return f.count }

// Sound reports whether this filter's trigger set is a complete picture of
// the root automaton's non-identity transitions (true) or was truncated at
// MaxTriggerBytes (false, meaning a negative answer from MayContain does not
// by itself prove the record is clean — the redactor's next cascade tier
// must still run).
func (f *Filter) Sound(totalDistinctBytes int) bool {
	return totalDistinctBytes <= MaxTriggerBytes
}

// MayContain returns true if data contains at least one trigger byte. An
// empty trigger set always answers true (nothing to filter on, so the
// cascade must proceed). This never produces a false negative for the
// bytes actually registered via New; it may be unsound system-wide only
// when the caller had to truncate the candidate set (see Sound).
func (f *Filter) MayContain(data []byte) bool {
	if f.count == 0 {
		return true
	}
	if f.count == 1 {
		return bytes.IndexByte(data, f.triggers[0]) >= 0
	}
	return f.scan(data)
}

// scan runs the any-of-N test in width-sized chunks, falling back to a
// byte-at-a-time scalar loop when width is 1 (no usable SIMD width
// detected) or for the final partial chunk.
func (f *Filter) scan(data []byte) bool {
	n := len(data)
	w := f.width
	if w <= 1 {
		return f.scanScalar(data)
	}
	i := 0
	for ; i+w <= n; i += w {
		if f.anyInChunk(data[i : i+w]) {
			return true
		}
	}
	return f.scanScalar(data[i:])
}

// anyInChunk tests one width-sized chunk against every trigger byte. The Go
// compiler auto-vectorizes this tight byte-compare loop reasonably well on
// amd64/arm64; it is not hand-written assembly, but it is shaped so that
// raising cpufeature's reported width changes the chunk granularity without
// touching correctness.
func (f *Filter) anyInChunk(chunk []byte) bool {
	for _, b := range chunk {
		if f.present[b] {
			return true
		}
	}
	return false
}

func (f *Filter) scanScalar(data []byte) bool {
	for _, b := range data {
		if f.present[b] {
			return true
		}
	}
	return false
}

// TriggerBytesFromRoot derives a trigger set from an automaton's root
// transitions: every byte for which the root does not loop back to itself
// is a candidate, per spec §4.3. The automaton package intentionally does
// not depend on prefilter, so callers (the pattern set) pass in the root
// row and identity state explicitly.
func TriggerBytesFromRoot(rootNext func(b byte) int16, rootState int16) []byte {
	var out []byte
	for b := 0; b < 256; b++ {
		if rootNext(byte(b)) != rootState {
			out = append(out, byte(b))
		}
	}
	return out
}
