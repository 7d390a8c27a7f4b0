// Package cpufeature exposes the hardware capabilities the pre-filter and
// automaton search paths dispatch on at startup. All detection happens once,
// at package init, and the result is read-only for the lifetime of the
// process.
//
// Grounded on the cpu.X86 feature-flag dispatch idiom used for the SIMD
// prefilter and memchr implementations in the coregex package: detect once
// into package-level booleans, then branch on them in the hot path instead
// of re-probing per call.
package cpufeature

import "golang.org/x/sys/cpu"

// Set is a snapshot of the instruction-set extensions available on the
// running CPU that matter to the pre-filter's any-of byte test.
type Set struct {
	SSE2  bool
	SSSE3 bool
	AVX2  bool
}

var detected = detect()

func detect() Set {
	return Set{
		SSE2:  cpu.X86.HasSSE2,
		SSSE3: cpu.X86.HasSSSE3,
		AVX2:  cpu.X86.HasAVX2,
	}
}

// Current returns the CPU feature set detected at process start.
func Current() Set { return detected }

// BestPrefilterWidth reports how many haystack bytes the any-of trigger test
// can scan per SIMD step on this hardware: 32 with AVX2, 16 with SSE2 or
// SSSE3, 1 (scalar) otherwise.
func (s Set) BestPrefilterWidth() int {
	switch {
	case s.AVX2:
		return 32
	case s.SSE2, s.SSSE3:
		return 16
	default:
		return 1
	}
}
