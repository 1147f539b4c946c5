package main

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pthm-cable/benchmarker/bench"
	"github.com/pthm-cable/benchmarker/telemetry"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "benchcompare",
		Short:        "Compare and print frame benchmark reports",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(newCompareCmd(), newShowCmd())
	return rootCmd
}

func newCompareCmd() *cobra.Command {
	var titleA, titleB string

	cmd := &cobra.Command{
		Use:   "compare [a.json] [b.json]",
		Short: "Compare per-call method times of two reports with Welch's t-test",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := telemetry.ReadReport(args[0])
			if err != nil {
				return err
			}
			b, err := telemetry.ReadReport(args[1])
			if err != nil {
				return err
			}
			if titleA == "" {
				titleA = reportTitle(args[0])
			}
			if titleB == "" {
				titleB = reportTitle(args[1])
			}
			return printComparison(cmd.OutOrStdout(), a, b, titleA, titleB)
		},
	}
	cmd.Flags().StringVar(&titleA, "title-a", "", "Label of the first report (default: file name)")
	cmd.Flags().StringVar(&titleB, "title-b", "", "Label of the second report (default: file name)")
	return cmd
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [report.json]",
		Short: "Print a JSON report as a Markdown table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := telemetry.ReadReport(args[0])
			if err != nil {
				return err
			}
			return telemetry.WriteMarkdown(cmd.OutOrStdout(), r.Application, r.Categories, r.MetaData)
		},
	}
}

func reportTitle(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func printComparison(w io.Writer, a, b *telemetry.Report, titleA, titleB string) error {
	aFrames, bFrames := a.FrameCount(), b.FrameCount()
	if aFrames <= 0 || bFrames <= 0 {
		return fmt.Errorf("reports need a %q metadata entry (got %d and %d)", bench.FrameCountKey, aFrames, bFrames)
	}

	set := bench.Compare(a.Categories, b.Categories, aFrames, bFrames)
	for _, c := range set.Matched {
		faster := titleB
		if c.FasterIsA {
			faster = titleA
		}
		fmt.Fprintln(w, c.Name)
		fmt.Fprintf(w, "%s is %.2f%% faster than the other\n", faster, c.PercentFaster)
		fmt.Fprintf(w, "T-Statistic: %.2f\n", math.Abs(c.TStatistic))
		if !math.IsNaN(c.PValue) {
			fmt.Fprintf(w, "p-value: %.4f (df %.1f)\n", c.PValue, c.DegreesOfFreedom)
		}
		fmt.Fprintln(w)
	}
	for _, name := range set.OnlyA {
		fmt.Fprintf(w, "Warning: No matching result found for %s in file %s\n\n", name, titleB)
	}
	for _, name := range set.OnlyB {
		fmt.Fprintf(w, "Warning: No matching result found for %s in file %s\n\n", name, titleA)
	}
	return nil
}
