package regexengine

import (
	"fmt"
	"time"

	"github.com/dlclark/regexp2"
)

// matchTimeout bounds a single regexp2 search, guarding against
// catastrophic backtracking on adversarial input.
const matchTimeout = 2 * time.Second

// portableEngine wraps a single compiled regexp2 pattern. Grounded on
// titus's PortableRegexpMatcher: RE2 mode first for safety, falling back to
// default Perl-compatible mode for patterns RE2 cannot express.
type portableEngine struct {
	re *regexp2.Regexp
}

// newPortable compiles pattern for the portable backend.
func newPortable(pattern string) (Engine, error) {
	re, err := regexp2.Compile(pattern, regexp2.RE2)
	if err != nil {
		re, err = regexp2.Compile(pattern, regexp2.None)
		if err != nil {
			return nil, fmt.Errorf("regexengine: compile %q: %w", pattern, err)
		}
	}
	re.MatchTimeout = matchTimeout
	return &portableEngine{re: re}, nil
}

func (e *portableEngine) Verify(window []byte) (Span, bool) {
	m, err := e.re.FindStringMatch(string(window))
	if err != nil || m == nil {
		return Span{}, false
	}
	return Span{Start: m.Index, End: m.Index + m.Length}, true
}

func (e *portableEngine) Close() error { return nil }
