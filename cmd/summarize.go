package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/imishinist/congstat/internal/models"
	"github.com/imishinist/congstat/internal/report"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Summarize each circuit series",
	Long: `Compute the final packet count, elapsed time and data rate of every
(flavor, run, circuit) series, write them as CSV and print a table.`,
	RunE: runSummarize,
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
	summarizeCmd.Flags().Bool("quiet", false, "Do not print the summary table")
}

func runSummarize(cmd *cobra.Command, args []string) error {
	b, err := runAnalysis(cmd.Context())
	if err != nil {
		return err
	}
	printSkipped(b)

	path, err := b.paths.Output("finalCnt", ".csv")
	if err != nil {
		return err
	}
	err = writeCSV(path, func(f *os.File) error { return report.WriteSummaries(f, b.result.Summaries) })
	if err != nil {
		return err
	}

	if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
		printSummaries(os.Stdout, b.result.Summaries)
	}
	fmt.Printf("Successfully wrote %d summaries to %s\n", len(b.result.Summaries), path)
	return nil
}

func printSummaries(w io.Writer, summaries []models.SeriesSummary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FLAVOR\tRUN\tCIRCUIT\tRELAY\tRECORDS\tFINAL\tELAPSED (s)\tRATE (pkt/s)")
	for _, s := range summaries {
		rate := "undefined"
		if s.RateDefined {
			rate = fmt.Sprintf("%.6g", s.Rate)
		}
		relay := s.Tags.Relay
		if relay == "" {
			relay = "-"
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%d\t%g\t%.6g\t%s\n",
			s.Tags.Flavor, s.Tags.Run, s.Tags.Circuit, relay, s.Records, s.FinalCount, s.Elapsed, rate)
	}
	tw.Flush()
}
