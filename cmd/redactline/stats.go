package main

import (
	"database/sql"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	_ "modernc.org/sqlite"
)

var (
	statsAuditPath string
	statsColor     string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print aggregate counts from a scan's audit store",
	Long:  "Reads a SQLite audit store written by `scan --audit` and prints per-pattern hit counts.",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsAuditPath, "audit", "", "Path to the SQLite audit store")
	statsCmd.Flags().StringVar(&statsColor, "color", "auto", "Color output: auto, always, never")
	_ = statsCmd.MarkFlagRequired("audit")
}

func runStats(cmd *cobra.Command, args []string) error {
	switch statsColor {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	default:
		if !term.IsTerminal(int(os.Stdout.Fd())) || os.Getenv("NO_COLOR") != "" {
			color.NoColor = true
		}
	}
	heading := color.New(color.Bold)
	name := color.New(color.FgHiBlue)

	db, err := sql.Open("sqlite", statsAuditPath)
	if err != nil {
		return fmt.Errorf("opening audit store: %w", err)
	}
	defer db.Close()

	var runCount, total int
	if err := db.QueryRow("SELECT COUNT(DISTINCT run_id), COUNT(*) FROM audit_records").Scan(&runCount, &total); err != nil {
		return fmt.Errorf("querying audit store: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %d redaction sites across %d run(s)\n\n", heading.Sprint("Total:"), total, runCount)

	rows, err := db.Query("SELECT pattern_name, COUNT(*) AS n FROM audit_records GROUP BY pattern_name ORDER BY n DESC")
	if err != nil {
		return fmt.Errorf("querying pattern counts: %w", err)
	}
	defer rows.Close()

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", heading.Sprint("Pattern"), heading.Sprint("Count"))
	for rows.Next() {
		var patternName string
		var count int
		if err := rows.Scan(&patternName, &count); err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\n", name.Sprint(patternName), count)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return w.Flush()
}
