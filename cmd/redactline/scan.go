package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cortexred/redactline"
	"github.com/cortexred/redactline/pkg/reader"
	"github.com/cortexred/redactline/pkg/report"
	"github.com/spf13/cobra"
)

var (
	scanRulesPath  string
	scanManifest   string
	scanOutputPath string
	scanWorkers    int
	scanAuditPath  string
	scanReportPath string
	scanHyperscan  bool
	scanHotNames   []string
)

// scanBatchSize bounds how many records accumulate before RedactBatch is
// dispatched to the worker pool, balancing dispatch overhead against
// memory held for in-flight records.
const scanBatchSize = 4096

var scanCmd = &cobra.Command{
	Use:   "scan [file]",
	Short: "Redact secrets in a file or stdin",
	Long:  "Reads newline-delimited records from a file (or stdin when no file is given), redacts every matching span, and writes the result to stdout or --output.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanRulesPath, "rules", "", "Path to a pattern file or directory")
	scanCmd.Flags().StringVar(&scanManifest, "manifest", "", "Path to a YAML ruleset manifest")
	scanCmd.Flags().StringVar(&scanOutputPath, "output", "", "Output path (default stdout)")
	scanCmd.Flags().IntVar(&scanWorkers, "workers", 1, "Parallel worker count")
	scanCmd.Flags().StringVar(&scanAuditPath, "audit", "", "Path to a SQLite audit store (optional)")
	scanCmd.Flags().StringVar(&scanReportPath, "report", "", "Path to write a JSON run summary (optional)")
	scanCmd.Flags().BoolVar(&scanHyperscan, "hyperscan", false, "Use the Hyperscan regex backend instead of the portable default")
	scanCmd.Flags().StringSliceVar(&scanHotNames, "hot", nil, "Pattern names to include in the hot automaton")
}

func runScan(cmd *cobra.Command, args []string) error {
	if scanRulesPath == "" && scanManifest == "" {
		return fmt.Errorf("scan requires --rules or --manifest")
	}

	opts, err := scanEngineOptions()
	if err != nil {
		return err
	}

	eng, err := redactline.New(opts...)
	if err != nil {
		return fmt.Errorf("building engine: %w", err)
	}
	defer eng.Close()

	in := cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening input: %w", err)
		}
		defer f.Close()
		in = f
	}

	out := cmd.OutOrStdout()
	if scanOutputPath != "" {
		f, err := os.Create(scanOutputPath)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := runScanPipeline(eng, in, out); err != nil {
		return err
	}

	if scanReportPath != "" {
		if err := writeReport(eng, scanReportPath); err != nil {
			return err
		}
	}
	if !quiet {
		st := eng.Stats()
		fmt.Fprintf(cmd.ErrOrStderr(), "scanned %d records (%d modified) in %.2fs (%.0f records/s, %.2f MiB/s)\n",
			st.RecordsProcessed, st.RecordsModified, st.ElapsedSeconds, st.RecordsPerSec, st.MiBPerSec)
	}
	return nil
}

func scanEngineOptions() ([]redactline.Option, error) {
	var opts []redactline.Option
	if scanRulesPath != "" {
		info, err := os.Stat(scanRulesPath)
		if err != nil {
			return nil, fmt.Errorf("rules path: %w", err)
		}
		if info.IsDir() {
			opts = append(opts, redactline.WithPatternDir(scanRulesPath))
		} else {
			opts = append(opts, redactline.WithPatternFile(scanRulesPath))
		}
	}
	if scanManifest != "" {
		opts = append(opts, redactline.WithManifest(scanManifest))
	}
	if len(scanHotNames) > 0 {
		opts = append(opts, redactline.WithHotNames(scanHotNames...))
	}
	if scanHyperscan {
		opts = append(opts, redactline.WithHyperscan())
	}
	opts = append(opts, redactline.WithWorkerCount(scanWorkers))
	if scanAuditPath != "" {
		opts = append(opts, redactline.WithAuditStore(scanAuditPath))
	}
	return opts, nil
}

// runScanPipeline frames records out of in with the line reader, batches
// them, and writes each redacted record (newline-terminated) to out.
func runScanPipeline(eng *redactline.Engine, in io.Reader, out io.Writer) error {
	r := reader.New(in, redactline.MaxRecordLen)
	w := bufio.NewWriter(out)

	batch := make([][]byte, 0, scanBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		redacted, err := eng.RedactBatch(batch)
		if err != nil {
			return err
		}
		for _, rec := range redacted {
			if _, err := w.Write(rec); err != nil {
				return err
			}
			if err := w.WriteByte('\n'); err != nil {
				return err
			}
		}
		batch = batch[:0]
		return nil
	}

	for {
		record, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
		owned := make([]byte, len(record))
		copy(owned, record)
		batch = append(batch, owned)
		if len(batch) == scanBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}
	return w.Flush()
}

func writeReport(eng *redactline.Engine, path string) error {
	st := eng.Stats()
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	defer f.Close()

	runID := ""
	if a := eng.Audit(); a != nil {
		runID = a.RunID()
	}
	summary := report.New(runID, time.Now(), st.RecordsProcessed, st.RecordsModified, st.PatternsMatched, nil)
	return summary.WriteJSON(f)
}
