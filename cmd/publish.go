package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/imishinist/congstat/internal/mlflow"
	"github.com/imishinist/congstat/internal/models"
	"github.com/imishinist/congstat/internal/report"
	"github.com/imishinist/congstat/internal/report/chart"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Analyze and publish results to MLflow",
	Long: `Run the analysis, write the CSV tables and plots, and publish them to an
MLflow run: the configuration as parameters, every series summary as metrics
with the simulation run as step, and the output files as artifacts.
Without --run-id a new run is created and ended.`,
	Example: `  # New run in experiment 3
  congstat publish --experiment-id 3 --flavor vegas,nola --runs 10

  # Add to a run started with "congstat run start"
  congstat publish --run-id <run-id> --no-plots`,
	RunE: runPublish,
}

func init() {
	rootCmd.AddCommand(publishCmd)
	addRunConfigFlags(publishCmd)
	publishCmd.Flags().String("run-id", "", "Existing run ID to publish into")
	publishCmd.Flags().Bool("no-plots", false, "Do not render or upload plots")
	publishCmd.Flags().StringSlice("attach", []string{}, "Extra files to upload as artifacts")
}

func runPublish(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	b, err := runAnalysis(ctx)
	if err != nil {
		return err
	}
	printSkipped(b)

	noPlots, _ := cmd.Flags().GetBool("no-plots")
	attach, _ := cmd.Flags().GetStringSlice("attach")
	files, err := writeOutputs(b, !noPlots)
	if err != nil {
		return err
	}
	for _, f := range attach {
		if _, err := os.Stat(f); err != nil {
			return fmt.Errorf("attachment %s: %w", f, err)
		}
		files = append(files, f)
	}

	client, err := mlflow.NewClient(b.cfg)
	if err != nil {
		return fmt.Errorf("failed to create MLflow client: %w", err)
	}

	runID, _ := cmd.Flags().GetString("run-id")
	ownRun := runID == ""
	if ownRun {
		runConfig, err := buildRunConfig(cmd, b.cfg)
		if err != nil {
			return err
		}
		runInfo, err := client.CreateRun(ctx, runConfig)
		if err != nil {
			return fmt.Errorf("failed to create run: %w", err)
		}
		runID = runInfo.RunID
		log.WithFields(log.Fields{"run_id": runID, "run_name": runInfo.RunName}).Info("created run")
	}

	err = publish(ctx, client, runID, b, files)
	if ownRun {
		if uerr := client.UpdateRun(context.WithoutCancel(ctx), runID, models.EndStatus(err)); uerr != nil && err == nil {
			err = uerr
		}
	}
	if err != nil {
		return err
	}

	fmt.Printf("Successfully published to run %s\n", runID)
	fmt.Printf("  Summaries: %d\n", len(b.result.Summaries))
	fmt.Printf("  Artifacts: %d\n", len(files))
	return nil
}

func publish(ctx context.Context, client *mlflow.Client, runID string, b *batch, files []string) error {
	if err := client.LogParams(ctx, runID, b.cfg.Params()); err != nil {
		return fmt.Errorf("failed to log parameters: %w", err)
	}

	n, err := client.LogSummaries(ctx, runID, b.result.Summaries)
	if err != nil {
		return fmt.Errorf("failed to log summaries: %w", err)
	}
	log.WithField("metrics", n).Info("logged summary metrics")

	artifacts := make([]mlflow.Artifact, len(files))
	for i, f := range files {
		artifacts[i] = mlflow.Artifact{File: f, Path: artifactPath(f)}
	}
	if err := client.UploadArtifacts(ctx, runID, artifacts); err != nil {
		return fmt.Errorf("failed to upload artifacts: %w", err)
	}
	return nil
}

// artifactPath files CSVs under tables/ and PDFs under plots/.
func artifactPath(file string) string {
	base := filepath.Base(file)
	switch filepath.Ext(base) {
	case ".csv":
		return "tables/" + base
	case ".pdf":
		return "plots/" + base
	default:
		return base
	}
}

// writeOutputs writes the record and summary tables and, if plots is set,
// every plot. It returns the files written.
func writeOutputs(b *batch, plots bool) ([]string, error) {
	recordsPath, err := b.paths.Output("pckCnt", ".csv")
	if err != nil {
		return nil, err
	}
	if err := writeCSV(recordsPath, func(f *os.File) error { return report.WriteRecords(f, b.result.Table) }); err != nil {
		return nil, err
	}

	summaryPath, err := b.paths.Output("finalCnt", ".csv")
	if err != nil {
		return nil, err
	}
	if err := writeCSV(summaryPath, func(f *os.File) error { return report.WriteSummaries(f, b.result.Summaries) }); err != nil {
		return nil, err
	}

	files := []string{recordsPath, summaryPath}
	if plots {
		rendered, err := renderPlots(b, chart.NewPDFRenderer(), defaultPlotFields, true)
		if err != nil {
			return nil, err
		}
		files = append(files, rendered...)
	}
	return files, nil
}
