// Package driver implements the fixed-partition, barrier-synchronized
// parallel worker pool that batches records across a pattern set's
// workers.
//
// Workers are pre-started and block on a start channel; each owns a
// private arena and a private Redactor bound to the shared, read-only
// pattern set, so there is no locking on the hot path. Grounded on the
// worker-pool concurrency idiom in buildkite-agent's LogStreamer
// (agent/log_streamer.go: a fixed worker count, a WaitGroup tracking
// in-flight work, a callback-per-item shape), adapted from a streaming
// upload queue to a fixed-partition batch-then-join cycle: each round
// hands every worker its slice of the batch up front (partition sizes are
// known before dispatch) rather than pulling items one at a time from a
// shared queue. The start channel and the per-round sync.WaitGroup
// together play the role of spec §4.7's start/done barrier pair; no
// purpose-built cyclic barrier exists in the example corpus to ground a
// more literal translation on, and these are the standard library's
// idiomatic equivalent.
package driver

import (
	"fmt"
	"sync"

	"github.com/cortexred/redactline/pkg/arena"
	"github.com/cortexred/redactline/pkg/patternset"
	"github.com/cortexred/redactline/pkg/redactor"
)

// workerScratchSize is the per-worker private arena size backing
// candidate-hit/span scratch and the output staging buffer.
const workerScratchSize = 1 << 20 // 1 MiB

// Stats aggregates every worker's redaction counters.
type Stats struct {
	LinesScanned    uint64
	LinesModified   uint64
	PatternsMatched uint64
}

// Driver dispatches batches of records across a fixed pool of workers.
type Driver struct {
	patterns *patternset.Set

	workers []*workerHandle
	single  bool // true once we've fallen back to single-threaded mode

	fallback      *redactor.Redactor
	fallbackArena *arena.Arena
}

// workerHandle is one worker's channel-addressable state: the job channel
// it blocks on, and its own redactor/arena.
type workerHandle struct {
	jobs     chan jobSlice
	redactor *redactor.Redactor
	arena    *arena.Arena
}

// jobSlice is one worker's share of a batch round. The worker writes each
// result into outputs (parallel to inputs) and signals done when finished.
type jobSlice struct {
	inputs  [][]byte
	outputs [][]byte
	done    *sync.WaitGroup
}

// New creates a Driver with the given worker count, bound to patterns. If
// any worker's private arena fails to construct, New falls back to
// single-threaded execution without returning an error, per spec §4.7.
func New(patterns *patternset.Set, workerCount int) *Driver {
	if workerCount < 1 {
		workerCount = 1
	}

	d := &Driver{patterns: patterns}

	workers := make([]*workerHandle, 0, workerCount)
	for i := 0; i < workerCount; i++ {
		a, err := arena.New(workerScratchSize)
		if err != nil {
			d.fallBackToSingleThreaded()
			return d
		}
		workers = append(workers, &workerHandle{
			jobs:     make(chan jobSlice),
			redactor: redactor.New(patterns, a, workerScratchSize/4),
			arena:    a,
		})
	}
	d.workers = workers
	for _, w := range d.workers {
		go runWorker(w)
	}
	return d
}

// fallBackToSingleThreaded switches the driver into single-worker mode
// using an in-process redactor with no goroutines.
func (d *Driver) fallBackToSingleThreaded() {
	d.single = true
	a, err := arena.New(workerScratchSize)
	if err != nil {
		// Arena exhaustion even for the fallback path: Process reports a
		// per-call error rather than panicking.
		return
	}
	d.fallbackArena = a
	d.fallback = redactor.New(d.patterns, a, workerScratchSize/4)
}

// runWorker blocks on jobs (the start barrier), processes its assigned
// slice, and signals the done barrier via the embedded WaitGroup.
//
// redactor.Redact reuses one owned output buffer across calls, valid only
// until the next call on that Redactor — fine for a single Redact/
// RedactInPlace call, but a batch round calls Redact once per input on
// the same worker, so a later call's output would otherwise overwrite an
// earlier one before Process ever reads it. ownOutput copies out whenever
// the result aliases that shared buffer, preserving the zero-copy fast
// path only for records the redactor returned unchanged.
func runWorker(w *workerHandle) {
	for job := range w.jobs {
		for i, in := range job.inputs {
			job.outputs[i] = ownOutput(w.redactor.Redact(in), in)
		}
		job.done.Done()
	}
}

// ownOutput returns out unchanged when it aliases in (the record was
// returned as-is), otherwise it copies out into a freshly allocated
// slice so it survives past the next call to Redact on the same worker.
func ownOutput(out, in []byte) []byte {
	if len(out) > 0 && len(in) > 0 && &out[0] == &in[0] {
		return out
	}
	cp := make([]byte, len(out))
	copy(cp, out)
	return cp
}

// Process partitions records evenly across the worker pool, dispatches
// them, waits for all workers to finish, and returns outputs in input
// order. If the driver is in single-threaded fallback mode, it processes
// records in-line instead.
func (d *Driver) Process(records [][]byte) ([][]byte, error) {
	outputs := make([][]byte, len(records))
	if len(records) == 0 {
		return outputs, nil
	}

	if d.single {
		if d.fallback == nil {
			return nil, fmt.Errorf("driver: no redactor available (arena exhausted)")
		}
		for i, rec := range records {
			outputs[i] = ownOutput(d.fallback.Redact(rec), rec)
		}
		return outputs, nil
	}

	partitions := partitionIndices(len(records), len(d.workers))
	slots := make([][][]byte, len(partitions))

	var wg sync.WaitGroup
	for wi, part := range partitions {
		if len(part) == 0 {
			continue
		}
		inputs := make([][]byte, len(part))
		for i, idx := range part {
			inputs[i] = records[idx]
		}
		slots[wi] = make([][]byte, len(part))
		wg.Add(1)
		d.workers[wi].jobs <- jobSlice{inputs: inputs, outputs: slots[wi], done: &wg}
	}
	wg.Wait()

	for wi, part := range partitions {
		for i, idx := range part {
			outputs[idx] = slots[wi][i]
		}
	}
	return outputs, nil
}

// partitionIndices splits [0, n) into workerCount contiguous, near-equal
// index slices.
func partitionIndices(n, workerCount int) [][]int {
	out := make([][]int, workerCount)
	base := n / workerCount
	rem := n % workerCount
	idx := 0
	for w := 0; w < workerCount; w++ {
		size := base
		if w < rem {
			size++
		}
		part := make([]int, size)
		for i := 0; i < size; i++ {
			part[i] = idx
			idx++
		}
		out[w] = part
	}
	return out
}

// Stats aggregates every worker's (or the fallback redactor's) counters.
func (d *Driver) Stats() Stats {
	var s Stats
	accumulate := func(rs redactor.Stats) {
		s.LinesScanned += rs.LinesScanned
		s.LinesModified += rs.LinesModified
		s.PatternsMatched += rs.PatternsMatched
	}
	if d.single {
		if d.fallback != nil {
			accumulate(d.fallback.Stats())
		}
		return s
	}
	for _, w := range d.workers {
		accumulate(w.redactor.Stats())
	}
	return s
}

// SetSink installs sink on every worker's (or the fallback's) redactor,
// for the optional audit wiring. Must be called before Process starts
// dispatching, since workers read their redactor's sink without locking.
func (d *Driver) SetSink(sink func(recordSeq uint64, hit redactor.Hit)) {
	if d.single {
		if d.fallback != nil {
			d.fallback.SetSink(sink)
		}
		return
	}
	for _, w := range d.workers {
		w.redactor.SetSink(sink)
	}
}

// ResetStats zeroes every worker's (or the fallback redactor's) counters.
func (d *Driver) ResetStats() {
	if d.single {
		if d.fallback != nil {
			d.fallback.ResetStats()
		}
		return
	}
	for _, w := range d.workers {
		w.redactor.ResetStats()
	}
}

// Close shuts every worker down and releases their arenas.
func (d *Driver) Close() error {
	for _, w := range d.workers {
		close(w.jobs)
		w.arena.Destroy()
	}
	if d.fallbackArena != nil {
		d.fallbackArena.Destroy()
	}
	return nil
}
