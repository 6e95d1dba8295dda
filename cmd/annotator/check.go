package main

import (
	"github.com/ritzau/annotator/pkg/analysis"
	"github.com/ritzau/annotator/pkg/output"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report on the health of the graph",
	Long: `Print connectivity, unlabeled and ambiguous points, dangling lines
and, with --directed, one-way loops.

Exits non-zero when the graph has dangling lines or duplicate ids. With
--strict, a label shared by several points also fails the check.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	snap, err := st.Load(cmd.Context())
	if err != nil {
		return err
	}

	report := analysis.Analyze(snap, cfg.Directed)
	if cfg.Strict {
		report.RequireUniqueLabels()
	}
	output.PrintAnalysisReport(cmd.OutOrStdout(), st.Location(), snap, report)

	if report.HasProblems() {
		return errReported
	}
	return nil
}
