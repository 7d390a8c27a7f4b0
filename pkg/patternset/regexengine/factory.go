package regexengine

// New compiles pattern under the requested backend, silently falling back
// to the portable backend when BackendHyperscan is requested but the
// binary was built without cgo (hyperscanAvailable is a compile-time
// constant, flipped by the build-tag pair in hyperscan.go/hyperscan_stub.go).
func New(pattern string, backend Backend) (Engine, error) {
	if backend == BackendHyperscan && hyperscanAvailable {
		if eng, err := newHyperscan(pattern); err == nil {
			return eng, nil
		}
	}
	return newPortable(pattern)
}

// HyperscanAvailable reports whether this binary was built with cgo and
// can therefore use the Hyperscan backend.
func HyperscanAvailable() bool { return hyperscanAvailable }
