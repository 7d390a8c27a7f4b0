package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/cortexred/redactline/pkg/patternset"
	"github.com/cortexred/redactline/pkg/patternset/regexengine"
	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and validate pattern sets",
	Long:  "Commands for loading and validating redactline pattern files and manifests.",
}

var rulesValidateCmd = &cobra.Command{
	Use:   "validate <dir-or-file>",
	Short: "Load a pattern directory, file, or manifest and report parse errors and counts",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesValidate,
}

func init() {
	rulesCmd.AddCommand(rulesValidateCmd)
}

func runRulesValidate(cmd *cobra.Command, args []string) error {
	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	s := patternset.New()
	switch {
	case info.IsDir():
		err = s.LoadDir(path)
	case filepath.Ext(path) == ".yaml" || filepath.Ext(path) == ".yml":
		err = s.LoadManifestFile(path)
	default:
		err = s.LoadFile(path)
	}
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "load error: %v\n", err)
		return err
	}

	if err := s.Build(regexengine.BackendPortable); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "build error: %v\n", err)
		return err
	}
	defer s.Destroy()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "loaded %d pattern(s) from %s\n\n", s.Len(), path)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tName\tLiteral\tReplacement\n")
	fmt.Fprintf(w, "--\t----\t-------\t-----------\n")
	for _, p := range s.Patterns() {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", p.ID, p.Name, string(p.Literal), string(p.Replacement))
	}
	return w.Flush()
}
