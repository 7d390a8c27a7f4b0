// Package redactor implements the per-record tier-cascade engine: a cheap
// byte-trigger pre-filter, a sentinel automaton scan, a full automaton
// scan, per-hit regex verification, sort/merge of verified spans, and a
// zero-copy-when-unchanged splice into an owned output buffer.
//
// Grounded on titus's pkg/scanner and pkg/matcher dedup/merge idioms
// (Deduplicator's "keep the longest/earliest" policy in dedup.go) adapted
// from a multi-match detection report to a single-pass redaction splice,
// and on reglet's gitleaks-based Redactor
// (other_examples/870ffa35_reglet-dev-reglet__internal-infrastructure-redaction-redactor.go.go)
// for the overall "replace every detected secret span with its
// replacement text" shape.
package redactor

import (
	"github.com/cortexred/redactline/pkg/arena"
	"github.com/cortexred/redactline/pkg/automaton"
	"github.com/cortexred/redactline/pkg/patternset"
)

// maxHits bounds how many candidate automaton matches a single record may
// contribute before the tier-3 scan stops collecting, per spec §4.5 step 3.
const maxHits = 256

// verifySlack is the number of bytes of lookback before a candidate
// match's reported end position that the regex verifier's search window
// starts from, per spec §4.5 step 4.
const verifySlack = 10

// outputExpansionFactor sizes the output staging buffer as a multiple of
// the input record length, per spec §4.5 invariant (ii). It is a practical
// heuristic, not the true worst case: patternset.maxReplacementLen (128
// bytes) against a 1-byte literal anchor could in principle expand a
// record by far more than this factor. Redactor.splice detects when the
// buffer would overflow and falls back to returning the record unchanged
// rather than writing past it, so an undersized buffer here costs a
// missed redaction on a pathological record, never memory corruption.
const outputExpansionFactor = 8

// Hit describes one verified, merged redaction site, reported to an
// optional sink installed via SetSink (the audit store's hook, per
// spec §3's audit record).
type Hit struct {
	PatternName string
	SpanLen     int
}

// Stats are the per-redactor counters spec §4.5 names. Reset is explicit
// via Redactor.ResetStats.
type Stats struct {
	LinesScanned    uint64
	LinesModified   uint64
	PatternsMatched uint64 // count of verified, not merged, hits
}

// Redactor is a single worker's private tier-cascade engine, bound to a
// shared read-only pattern set and backed by its own arena for per-record
// scratch (candidate hits, verified spans) and its own output staging
// buffer.
type Redactor struct {
	patterns *patternset.Set
	arena    *arena.Arena

	hits  []automaton.Match
	spans []span

	output []byte
	stats  Stats

	recordSeq uint64
	sink      func(recordSeq uint64, hit Hit)
}

// span is an internal verified span before it is exposed via splicing.
type span struct {
	start     int
	end       int
	patternID int32
}

// New creates a Redactor bound to patterns, using scratchArena to reserve
// its output staging buffer (outputCap bytes, sized by the caller to
// outputExpansionFactor times the maximum expected record length) and its
// per-record candidate/span arrays. scratchArena must outlive the
// Redactor; nothing past New allocates from it on the hot path.
func New(patterns *patternset.Set, scratchArena *arena.Arena, outputCap int) *Redactor {
	outBuf, ok := scratchArena.Alloc(outputCap)
	if !ok {
		outBuf = make([]byte, outputCap)
	}
	return &Redactor{
		patterns: patterns,
		arena:    scratchArena,
		hits:     make([]automaton.Match, 0, maxHits),
		spans:    make([]span, 0, maxHits),
		output:   outBuf,
	}
}

// Stats returns a copy of the current counters.
func (r *Redactor) Stats() Stats { return r.stats }

// ResetStats zeroes all counters.
func (r *Redactor) ResetStats() { r.stats = Stats{} }

// SetSink installs an optional callback invoked once per verified, merged
// redaction site, in the order spans appear in the record. nil (the
// default) disables it entirely, at no cost beyond a nil check on the
// hot path. The Redactor calls it from the same goroutine as Redact, so
// the sink itself must not block for long or it stalls that caller.
func (r *Redactor) SetSink(sink func(recordSeq uint64, hit Hit)) {
	r.sink = sink
}

// Redact runs the full tier cascade over record, returning a slice
// containing the redacted record. When no pattern matches, the returned
// slice aliases record directly (the zero-copy fast path of invariant
// (iii)); otherwise it aliases this Redactor's owned output buffer, valid
// until the next call to Redact.
func (r *Redactor) Redact(record []byte) []byte {
	r.stats.LinesScanned++
	seq := r.recordSeq
	r.recordSeq++

	if len(record) == 0 {
		return record
	}

	pf := r.patterns.Prefilter()
	if pf != nil && !pf.MayContain(record) {
		return record
	}

	// The hot automaton (a small named high-frequency subset, always flat
	// layout) is a pure speed accelerant: a hit there lets the cascade skip
	// straight to the full scan without waiting on the broader sentinel
	// check. It never substitutes for the sentinel's negative answer,
	// since the hot subset covers only a handful of patterns by design.
	hot := r.patterns.Hot()
	sentinel := r.patterns.Sentinel()
	if hot == nil || !hot.HasMatch(record) {
		if sentinel != nil && !sentinel.HasMatch(record) {
			return record
		}
	}

	full := r.patterns.Full()
	r.hits = r.hits[:cap(r.hits)]
	n, _ := full.Collect(record, r.hits)
	r.hits = r.hits[:n]
	if n == 0 {
		return record
	}

	r.verify(record)
	if len(r.spans) == 0 {
		return record
	}

	sortSpansByStart(r.spans)
	merged := mergeSpans(r.spans)

	out, ok := r.splice(record, merged)
	if !ok {
		return record
	}

	if r.sink != nil {
		for _, s := range merged {
			if p := r.patterns.Pattern(s.patternID); p != nil {
				r.sink(seq, Hit{PatternName: p.Name, SpanLen: s.end - s.start})
			}
		}
	}

	r.stats.LinesModified++
	return out
}

// verify runs the regex engine for each tier-3 candidate at the bounded
// search window spec §4.5 step 4 describes, appending a verified span for
// every positive result.
func (r *Redactor) verify(record []byte) {
	r.spans = r.spans[:0]
	for _, hit := range r.hits {
		p := r.patterns.Pattern(hit.PatternID)
		if p == nil || p.Engine() == nil {
			continue
		}
		searchStart := int(hit.Position) - int(hit.Length) - verifySlack
		if searchStart < 0 {
			searchStart = 0
		}
		if searchStart > len(record) {
			continue
		}
		window := record[searchStart:]
		result, ok := p.Engine().Verify(window)
		if !ok {
			continue
		}
		start := searchStart + result.Start
		end := searchStart + result.End
		if end > len(record) || start >= end {
			continue
		}
		r.stats.PatternsMatched++
		r.spans = append(r.spans, span{start: start, end: end, patternID: hit.PatternID})
	}
}

// sortSpansByStart stable-sorts spans ascending by start, per spec §4.5
// step 5. Insertion sort is sufficient and allocation-free: maxHits bounds
// the slice to a small constant size.
func sortSpansByStart(spans []span) {
	for i := 1; i < len(spans); i++ {
		v := spans[i]
		j := i - 1
		for j >= 0 && spans[j].start > v.start {
			spans[j+1] = spans[j]
			j--
		}
		spans[j+1] = v
	}
}

// mergeSpans walks the sorted spans, absorbing any span that starts before
// the running span's end, per spec §4.5 step 6. The merged span keeps the
// earlier span's pattern id (and thus its replacement text). Reuses the
// input slice's backing array.
func mergeSpans(spans []span) []span {
	if len(spans) == 0 {
		return spans
	}
	out := spans[:1]
	prev := &out[0]
	for _, s := range spans[1:] {
		if s.start < prev.end {
			if s.end > prev.end {
				prev.end = s.end
			}
			continue
		}
		out = append(out, s)
		prev = &out[len(out)-1]
	}
	return out
}

// splice copies unchanged input interleaved with replacement text for each
// merged span into the Redactor's owned output buffer, per spec §4.5 step
// 7. Returns ok=false (discarding any partial output) if the output
// buffer's capacity would be exceeded.
func (r *Redactor) splice(record []byte, spans []span) ([]byte, bool) {
	buf := r.output[:0]

	cursor := 0
	for _, s := range spans {
		if s.start > cursor {
			if len(buf)+(s.start-cursor) > cap(buf) {
				return nil, false
			}
			buf = append(buf, record[cursor:s.start]...)
		}
		p := r.patterns.Pattern(s.patternID)
		if p == nil {
			return nil, false
		}
		if len(buf)+len(p.Replacement) > cap(buf) {
			return nil, false
		}
		buf = append(buf, p.Replacement...)
		cursor = s.end
	}
	if cursor < len(record) {
		if len(buf)+(len(record)-cursor) > cap(buf) {
			return nil, false
		}
		buf = append(buf, record[cursor:]...)
	}
	return buf, true
}
