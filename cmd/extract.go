package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/imishinist/congstat/internal/report"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract per-circuit records into a CSV table",
	Long: `Read every planned log file, select the lines of each circuit and write the
extracted fields as one CSV row per line.`,
	Example: `  # Four circuits of ten vegas runs
  congstat extract --input-dir logs --flavor vegas --circuits 4 --runs 10

  # Write to stdout
  congstat extract --stdout > records.csv`,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().Bool("stdout", false, "Write the CSV to stdout instead of the output directory")
}

func runExtract(cmd *cobra.Command, args []string) error {
	b, err := runAnalysis(cmd.Context())
	if err != nil {
		return err
	}
	printSkipped(b)

	toStdout, _ := cmd.Flags().GetBool("stdout")
	if toStdout {
		if err := report.WriteRecords(os.Stdout, b.result.Table); err != nil {
			return fmt.Errorf("failed to write records: %w", err)
		}
		return nil
	}

	path, err := b.paths.Output("pckCnt", ".csv")
	if err != nil {
		return err
	}
	if err := writeCSV(path, func(f *os.File) error { return report.WriteRecords(f, b.result.Table) }); err != nil {
		return err
	}

	fmt.Printf("Successfully wrote %d records in %d groups to %s\n",
		b.result.Table.Len(), len(b.result.Table.Groups()), path)
	return nil
}
