package patternset

import (
	"fmt"
	"regexp"
)

// FilterConfig narrows a loaded pattern list by name before Build, mirroring
// titus's FilterConfig but matching against Pattern.Name rather than a
// detection rule's ID.
//
// Grounded on titus pkg/rule/filter.go, generalized to pattern sets:
// include is applied first, then exclude; empty include means "include
// all".
type FilterConfig struct {
	Include []string
	Exclude []string
}

// Filter returns the subset of names that pass cfg, compiling each include/
// exclude pattern as a regex matched against the full name.
func Filter(names []string, cfg FilterConfig) ([]string, error) {
	if len(names) == 0 {
		return names, nil
	}

	includeRe, err := compileAll(cfg.Include)
	if err != nil {
		return nil, err
	}
	excludeRe, err := compileAll(cfg.Exclude)
	if err != nil {
		return nil, err
	}

	filtered := names
	if len(includeRe) > 0 {
		filtered = applyFilter(filtered, includeRe, true)
	}
	if len(excludeRe) > 0 {
		filtered = applyFilter(filtered, excludeRe, false)
	}
	return filtered, nil
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	var out []*regexp.Regexp
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("patternset: invalid filter pattern %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// applyFilter keeps names matching any regex when want is true (include
// semantics), or names matching none when want is false (exclude
// semantics).
func applyFilter(names []string, regexes []*regexp.Regexp, want bool) []string {
	result := make([]string, 0, len(names))
	for _, name := range names {
		matched := matchesAny(name, regexes)
		if matched == want {
			result = append(result, name)
		}
	}
	return result
}

func matchesAny(name string, regexes []*regexp.Regexp) bool {
	for _, re := range regexes {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}
