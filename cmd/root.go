package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/imishinist/congstat/internal/config"
	"github.com/imishinist/congstat/internal/logging"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "congstat",
	Short: "Congestion-control simulation log analysis",
	Long: `A command line tool that extracts per-circuit series from congestion-control
simulator logs, summarizes them, renders plots and publishes results to MLflow.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Init(viper.GetString("log_level"), viper.GetString("log_format"))
	},
}

func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (YAML)")
	flags.String("log-level", "", "Log level (debug/info/warn/error)")
	flags.String("log-format", "", "Log format (text/json)")

	flags.String("sim-duration", "", "Simulation duration used in log file names, e.g. 60s")
	flags.StringSlice("flavor", nil, "Congestion flavors (legacy/westwood/westwoodmin/nola/vegas)")
	flags.String("bdp", "", "BDP estimation mode (piecewise/sendme/cwnd/inflight)")
	flags.Int("rate", 0, "Bandwidth rate")
	flags.Int("burst", 0, "Bandwidth burst")
	flags.Int("circuits", 0, "Number of circuits")
	flags.Int("runs", 0, "Number of simulation runs")
	flags.Int("rtt", 0, "Round-trip time")
	flags.StringSlice("relay", nil, "Relay roles to select, one series per role (e.g. exit,proxy)")
	flags.String("entity-format", "", "Circuit marker format with one %d verb")
	flags.String("numeric-pattern", "", "Regular expression matching numeric literals")
	flags.String("input-dir", "", "Directory holding the simulator logs")
	flags.String("output-dir", "", "Directory for CSV and PDF outputs")
	flags.String("layouts-file", "", "YAML or JSON file with extra layouts")
	flags.StringSlice("extra-layout", nil, "Layouts extracted from every log besides the flavor's own (e.g. package-window)")
	flags.Int("bins", 0, "Histogram bins for CDFs")
	flags.Int("jobs", 0, "Log files processed in parallel")
	flags.String("on-error", "", "Error policy (fail/skip)")

	flags.String("tracking-uri", "", "MLflow tracking URI (overrides MLFLOW_TRACKING_URI)")
	flags.String("experiment-id", "", "Experiment ID (overrides MLFLOW_EXPERIMENT_ID)")
}

// flagBindings maps config keys to persistent flags.
var flagBindings = map[string]string{
	"log_level":       "log-level",
	"log_format":      "log-format",
	"sim_duration":    "sim-duration",
	"flavors":         "flavor",
	"bdp":             "bdp",
	"rate":            "rate",
	"burst":           "burst",
	"circuits":        "circuits",
	"runs":            "runs",
	"rtt":             "rtt",
	"relays":          "relay",
	"entity_format":   "entity-format",
	"numeric_pattern": "numeric-pattern",
	"input_dir":       "input-dir",
	"output_dir":      "output-dir",
	"layouts_file":    "layouts-file",
	"extra_layouts":   "extra-layout",
	"bins":            "bins",
	"jobs":            "jobs",
	"on_error":        "on-error",
	"tracking_uri":    "tracking-uri",
	"experiment_id":   "experiment-id",
}

func initConfig() {
	flags := rootCmd.PersistentFlags()
	for key, flag := range flagBindings {
		viper.BindPFlag(key, flags.Lookup(flag))
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		checkError(viper.ReadInConfig())
	}

	viper.SetEnvPrefix("CONGSTAT")
	viper.AutomaticEnv()

	viper.BindEnv("tracking_uri", "CONGSTAT_TRACKING_URI", "MLFLOW_TRACKING_URI")
	viper.BindEnv("experiment_id", "CONGSTAT_EXPERIMENT_ID", "MLFLOW_EXPERIMENT_ID")
	viper.BindEnv("databricks_host", "DATABRICKS_HOST")
	viper.BindEnv("databricks_token", "DATABRICKS_TOKEN")

	config.SetDefaults()
}

func checkError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
