//go:build !cgo

package regexengine

import "errors"

// newHyperscan is unavailable without cgo; New falls back to the portable
// backend transparently when this is hit.
func newHyperscan(pattern string) (Engine, error) {
	return nil, errors.New("regexengine: hyperscan backend requires cgo")
}

const hyperscanAvailable = false
