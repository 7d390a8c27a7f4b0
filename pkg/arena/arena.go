// Package arena provides a bump allocator over a single anonymous memory
// mapping. Allocations are monotone and 8-byte aligned; there is no
// per-object free. Callers release everything at once via Reset or
// Destroy.
//
// Arena is the memory discipline that keeps redactline's per-record hot
// path allocation-free: a pattern set is built once into a long-lived
// arena, and each parallel worker owns a small private arena for its
// per-record scratch (candidate-hit arrays, verified-span arrays).
package arena

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// align is the allocation granularity. All returned addresses are
// multiples of this value.
const align = 8

// Arena is a single owned byte region with a monotone used pointer and a
// peak marker. The zero value is not usable; construct one with New.
type Arena struct {
	region []byte
	used   int
	peak   int
	owns   bool
}

// New creates an arena backed by a fresh anonymous mapping of size bytes.
func New(size int) (*Arena, error) {
	if size <= 0 {
		return nil, fmt.Errorf("arena: size must be positive, got %d", size)
	}
	region, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("arena: mmap %d bytes: %w", size, err)
	}
	return &Arena{region: region, owns: true}, nil
}

// Wrap creates an arena over caller-owned memory. Destroy will not unmap
// it; the caller remains responsible for the backing storage.
func Wrap(region []byte) *Arena {
	return &Arena{region: region, owns: false}
}

// Alloc rounds n up to the alignment and reserves that many bytes from
// the arena, returning a slice over the reserved region. It returns nil,
// false when the allocation would exceed the arena's capacity; it never
// panics on exhaustion.
func (a *Arena) Alloc(n int) ([]byte, bool) {
	if n < 0 {
		return nil, false
	}
	rounded := (n + align - 1) &^ (align - 1)
	if rounded < n { // overflow
		return nil, false
	}
	newUsed := a.used + rounded
	if newUsed < a.used || newUsed > len(a.region) {
		return nil, false
	}
	out := a.region[a.used:newUsed:newUsed]
	a.used = newUsed
	if a.used > a.peak {
		a.peak = a.used
	}
	return out[:n], true
}

// Used returns the number of bytes currently allocated.
func (a *Arena) Used() int { return a.used }

// Cap returns the total capacity of the arena in bytes.
func (a *Arena) Cap() int { return len(a.region) }

// Peak returns the highest watermark of Used ever observed, surviving
// across Reset calls until Destroy.
func (a *Arena) Peak() int { return a.peak }

// Snapshot captures the current used offset for later restoration via
// Restore, enabling nested scratch scopes within a single arena.
func (a *Arena) Snapshot() int { return a.used }

// Restore rewinds the arena to a previously captured snapshot. It does
// not zero the released bytes; callers relying on zeroed memory across
// reuse should use Reset instead.
func (a *Arena) Restore(snapshot int) {
	if snapshot >= 0 && snapshot <= a.used {
		a.used = snapshot
	}
}

// Reset zeroes all bytes that were in use and rewinds the used pointer
// to zero. The peak marker is preserved. Zeroing prevents residue of
// sensitive record data (e.g. a previously matched secret) from lingering
// in reused scratch memory.
func (a *Arena) Reset() {
	clear(a.region[:a.used])
	a.used = 0
}

// Destroy releases the underlying mapping if this arena owns it. Wrapped
// arenas are left untouched.
func (a *Arena) Destroy() error {
	if !a.owns || a.region == nil {
		return nil
	}
	err := unix.Munmap(a.region)
	a.region = nil
	a.used = 0
	return err
}
