// Package report produces a JSON summary of one redaction run: how many
// records were scanned, how many were modified, and a per-pattern hit
// count, for the `redactline scan --report` flag (spec §9 component 12).
//
// Grounded on titus pkg/sarif's top-level Report/Tool/Driver shape,
// simplified from SARIF's per-finding location model (redactline never
// stores matched secret text in a report) down to aggregate counters —
// a compliance summary has no use for per-location findings when the
// matched bytes themselves must never be persisted unredacted.
package report

import (
	"encoding/json"
	"io"
	"time"
)

// ToolName/ToolVersion identify the producer in the report, mirroring
// sarif.ToolName/ToolVersion's role.
const (
	ToolName    = "redactline"
	ToolVersion = "0.1.0"
)

// PatternCount is one pattern's hit count within a run.
type PatternCount struct {
	Name  string `json:"name"`
	Count uint64 `json:"count"`
}

// Summary is the top-level report document.
type Summary struct {
	Tool            string         `json:"tool"`
	ToolVersion     string         `json:"toolVersion"`
	RunID           string         `json:"runId,omitempty"`
	GeneratedAt     time.Time      `json:"generatedAt"`
	LinesScanned    uint64         `json:"linesScanned"`
	LinesModified   uint64         `json:"linesModified"`
	PatternsMatched uint64         `json:"patternsMatched"`
	ByPattern       []PatternCount `json:"byPattern,omitempty"`
}

// New builds a Summary from aggregate counters. generatedAt is threaded in
// by the caller rather than captured internally, since this package has no
// way to stamp a timestamp itself without a live clock dependency.
func New(runID string, generatedAt time.Time, linesScanned, linesModified, patternsMatched uint64, byPattern []PatternCount) Summary {
	return Summary{
		Tool:            ToolName,
		ToolVersion:     ToolVersion,
		RunID:           runID,
		GeneratedAt:     generatedAt,
		LinesScanned:    linesScanned,
		LinesModified:   linesModified,
		PatternsMatched: patternsMatched,
		ByPattern:       byPattern,
	}
}

// WriteJSON writes the summary as indented JSON to w.
func (s Summary) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
