package patternset

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// allowAbsolutePathsEnv is the escape hatch for the path security policy
// in spec §4.4: absolute pattern-file paths are rejected unless this
// environment variable is set to a non-empty value.
const allowAbsolutePathsEnv = "REDACTLINE_ALLOW_ABSOLUTE_PATTERN_PATHS"

// checkPathPolicy enforces spec §4.4's security policy on pattern paths:
// reject any path containing "..", and reject absolute paths unless the
// environment flag explicitly permits them.
func checkPathPolicy(path string) error {
	if strings.Contains(path, "..") {
		return fmt.Errorf("patternset: path %q must not contain \"..\"", filepath.Base(path))
	}
	if filepath.IsAbs(path) && os.Getenv(allowAbsolutePathsEnv) == "" {
		return fmt.Errorf("patternset: absolute path %q is not permitted (set %s to allow)", filepath.Base(path), allowAbsolutePathsEnv)
	}
	return nil
}

// LoadFile parses one pattern file into s, per the grammar in spec §4.4:
// one record per line, `name|literal|regex|replacement`; blank lines and
// lines starting with # are comments. A malformed line is logged to
// stderr (basename and line number only, never the full path, per the
// path security policy) and skipped; it never halts the rest of the
// file. LoadFile itself only returns an error for a file-level failure
// (the path policy, or the open/read of the file failing outright).
//
// Grounded on titus pkg/rule/loader.go's per-file error isolation idiom,
// adapted from YAML-rule parsing to the pipe-delimited line grammar.
func (s *Set) LoadFile(path string) error {
	if err := checkPathPolicy(path); err != nil {
		return err
	}
	base := filepath.Base(path)

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("patternset: open %s: %w", base, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		fields := strings.SplitN(line, "|", 4)
		if len(fields) != 4 {
			log.Printf("patternset: %s:%d: expected 4 pipe-delimited fields, got %d, skipping", base, lineNo, len(fields))
			continue
		}
		name, literal, regexSource, replacement := fields[0], fields[1], fields[2], fields[3]
		if _, err := s.Add(name, literal, regexSource, replacement); err != nil {
			log.Printf("patternset: %s:%d: %v, skipping", base, lineNo, err)
			continue
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("patternset: read %s: %w", base, err)
	}
	return nil
}

// LoadDir loads every non-hidden *.txt file directly under dir
// (non-recursive), in lexical order. A file that fails to load outright
// (the path policy, or its open/read failing) is logged to stderr and
// skipped, per spec §6/§7: failures in one file never halt loading of
// the others.
func (s *Set) LoadDir(dir string) error {
	if err := checkPathPolicy(dir); err != nil {
		return err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("patternset: read dir %s: %w", filepath.Base(dir), err)
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != ".txt" {
			continue
		}
		if err := s.LoadFile(filepath.Join(dir, name)); err != nil {
			log.Printf("patternset: %s: %v, skipping", name, err)
			continue
		}
	}
	return nil
}
