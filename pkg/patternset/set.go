package patternset

import (
	"fmt"

	"github.com/cortexred/redactline/pkg/automaton"
	"github.com/cortexred/redactline/pkg/patternset/regexengine"
	"github.com/cortexred/redactline/pkg/prefilter"
)

// sentinelLiterals is the fixed, built-in list of broadly discriminative
// strings used to build the tier-2 sentinel automaton, per spec §4.4.
var sentinelLiterals = []string{
	"password", "passwd", "secret", "token", "AKIA", "-----BEGIN", "@",
	"Bearer", "api_key", "apikey", "private_key", "ssh-rsa",
}

// hotNames, if present among added patterns, contribute to the tier-2 "hot"
// automaton: a small, always-flat-layout automaton over a high-frequency
// named subset. Empty by default; callers name their own hot subset via
// SetHotNames before Build.
type Set struct {
	patterns []*Pattern
	byName   map[string]*Pattern
	hotNames map[string]bool

	full      *automaton.Automaton
	sentinel  *automaton.Automaton
	hot       *automaton.Automaton
	prefilter *prefilter.Filter

	backend regexengine.Backend
	built   bool
}

// New creates an empty pattern set.
func New() *Set {
	return &Set{
		byName:   make(map[string]*Pattern),
		hotNames: make(map[string]bool),
	}
}

// SetHotNames names the subset of patterns (by Name) that should be
// included in the hot automaton. Must be called before Build.
func (s *Set) SetHotNames(names ...string) error {
	if s.built {
		return fmt.Errorf("patternset: cannot set hot names after build")
	}
	for _, n := range names {
		s.hotNames[n] = true
	}
	return nil
}

// Add appends a pattern to the set. Rejected once the set has been built.
func (s *Set) Add(name, literal, regexSource, replacement string) (*Pattern, error) {
	if s.built {
		return nil, fmt.Errorf("patternset: cannot add pattern %q after build", name)
	}
	if _, dup := s.byName[name]; dup {
		return nil, fmt.Errorf("patternset: duplicate pattern name %q", name)
	}
	p, err := newPattern(name, literal, regexSource, replacement, int32(len(s.patterns)))
	if err != nil {
		return nil, err
	}
	s.patterns = append(s.patterns, p)
	s.byName[name] = p
	return p, nil
}

// Len reports the number of patterns held, built or not.
func (s *Set) Len() int { return len(s.patterns) }

// Pattern returns the pattern with the given dense id, or nil if out of
// range.
func (s *Set) Pattern(id int32) *Pattern {
	if id < 0 || int(id) >= len(s.patterns) {
		return nil
	}
	return s.patterns[id]
}

// Patterns returns the full pattern slice in id order. Callers must not
// mutate it.
func (s *Set) Patterns() []*Pattern { return s.patterns }

// Full returns the full automaton. Valid only after Build.
func (s *Set) Full() *automaton.Automaton { return s.full }

// Sentinel returns the sentinel automaton, or nil if it failed to build
// (non-fatal per spec §4.4 — the cascade degrades gracefully).
func (s *Set) Sentinel() *automaton.Automaton { return s.sentinel }

// Hot returns the hot automaton, or nil if no hot names were set or it
// failed to build.
func (s *Set) Hot() *automaton.Automaton { return s.hot }

// Prefilter returns the tier-1 byte-trigger filter derived from the full
// automaton's root transitions.
func (s *Set) Prefilter() *prefilter.Filter { return s.prefilter }

// Build compiles every pattern's regex, inserts literals into the full
// (and, where applicable, hot) automaton, and constructs the sentinel
// automaton from the fixed built-in list. Regex compilation uses the
// requested backend (falling back transparently to the portable engine
// when Hyperscan is unavailable, per regexengine.New).
func (s *Set) Build(backend regexengine.Backend) error {
	if s.built {
		return fmt.Errorf("patternset: already built")
	}
	s.backend = backend

	var fullLiterals, hotLiterals []automaton.Literal
	for _, p := range s.patterns {
		eng, err := regexengine.New(p.RegexSource, backend)
		if err != nil {
			return fmt.Errorf("patternset: compile pattern %q: %w", p.Name, err)
		}
		p.engine = eng

		lit := p.Literal
		if len(lit) == 0 {
			lit = extractLiteral(p.RegexSource)
		}
		if len(lit) > 0 {
			fullLiterals = append(fullLiterals, automaton.Literal{Pattern: lit, PatternID: p.ID})
			if s.hotNames[p.Name] {
				hotLiterals = append(hotLiterals, automaton.Literal{Pattern: lit, PatternID: p.ID})
			}
		}
	}

	full, err := automaton.Build(fullLiterals, automaton.LayoutRowCompressed, 0)
	if err != nil {
		return fmt.Errorf("patternset: build full automaton: %w", err)
	}
	s.full = full

	sentinelLits := make([]automaton.Literal, len(sentinelLiterals))
	for i, lit := range sentinelLiterals {
		sentinelLits[i] = automaton.Literal{Pattern: []byte(lit), PatternID: int32(i)}
	}
	if sentinel, err := automaton.Build(sentinelLits, automaton.LayoutFlat, 0); err == nil {
		s.sentinel = sentinel
	}

	if len(hotLiterals) > 0 {
		if hot, err := automaton.Build(hotLiterals, automaton.LayoutFlat, 0); err == nil {
			s.hot = hot
		}
	}

	s.prefilter = prefilter.New(prefilter.TriggerBytesFromRoot(s.full.RootNext, 0))

	s.built = true
	return nil
}

// Destroy releases every pattern's compiled regex handle. The set's
// automata live in normal Go-managed memory (or a caller-supplied arena
// snapshot), so only the regex engines need explicit release here.
func (s *Set) Destroy() error {
	var firstErr error
	for _, p := range s.patterns {
		if p.engine == nil {
			continue
		}
		if err := p.engine.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		p.engine = nil
	}
	return firstErr
}
