// Package patternset owns the compiled pattern list and the automata
// derived from it: the full automaton (every pattern's literal anchor),
// an optional sentinel automaton (a small built-in discriminative list),
// and an optional hot automaton (a small named high-frequency subset kept
// in flat layout for cache residency).
//
// Grounded on titus's pkg/rule (loader.go, filter.go) and pkg/types/rule.go
// for the load/filter/build lifecycle shape, generalized from a
// detection-rule model to redactline's literal|regex|replacement pattern
// model.
package patternset

import (
	"fmt"

	"github.com/cortexred/redactline/pkg/patternset/regexengine"
)

// defaultReplacementPrefix/suffix synthesize `[REDACTED:<name>]` when a
// pattern's replacement field is left empty.
const (
	defaultReplacementPrefix = "[REDACTED:"
	defaultReplacementSuffix = "]"
)

// Pattern is a named, compiled redaction unit. Immutable once its owning
// Set has been built.
type Pattern struct {
	Name        string
	Literal     []byte
	RegexSource string
	Replacement []byte
	ID          int32

	engine regexengine.Engine
}

// Engine returns the compiled regex engine bound to this pattern. Valid
// only after the owning Set's Build has succeeded.
func (p *Pattern) Engine() regexengine.Engine { return p.engine }

// newPattern validates field lengths and synthesizes a default
// replacement, per spec §4.4's grammar rule.
func newPattern(name, literal, regexSource, replacement string, id int32) (*Pattern, error) {
	if name == "" {
		return nil, fmt.Errorf("patternset: pattern at id %d has empty name", id)
	}
	if len(name) > maxNameLen {
		return nil, fmt.Errorf("patternset: pattern %q name exceeds %d bytes", name, maxNameLen)
	}
	if len(literal) > maxLiteralLen {
		return nil, fmt.Errorf("patternset: pattern %q literal exceeds %d bytes", name, maxLiteralLen)
	}
	if replacement == "" {
		replacement = defaultReplacementPrefix + name + defaultReplacementSuffix
	}
	if len(replacement) > maxReplacementLen {
		return nil, fmt.Errorf("patternset: pattern %q replacement exceeds %d bytes", name, maxReplacementLen)
	}
	return &Pattern{
		Name:        name,
		Literal:     []byte(literal),
		RegexSource: regexSource,
		Replacement: []byte(replacement),
		ID:          id,
	}, nil
}

const (
	maxNameLen        = 64
	maxLiteralLen     = 256
	maxReplacementLen = 128
)
