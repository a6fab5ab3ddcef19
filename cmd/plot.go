package cmd

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/imishinist/congstat/internal/aggregate"
	"github.com/imishinist/congstat/internal/report"
	"github.com/imishinist/congstat/internal/report/chart"
)

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Render time series and CDF plots",
	Long: `Render one PDF per flavor, run and field with a line per circuit and relay
role, and CDF plots comparing the flavors for packet_count, final_count and
data_rate. The CDF data is also written as CSV next to each plot.`,
	Example: `  # Compare the exit package window with the proxy deliver window
  congstat plot --relay exit,proxy --extra-layout package-window,deliver-window \
    --field package_window+deliver_window`,
	RunE: runPlot,
}

func init() {
	rootCmd.AddCommand(plotCmd)
	plotCmd.Flags().StringSlice("field", defaultPlotFields, "Fields to plot against time; join fields with + to overlay them")
	plotCmd.Flags().Bool("no-series", false, "Only render CDF plots")
}

func runPlot(cmd *cobra.Command, args []string) error {
	b, err := runAnalysis(cmd.Context())
	if err != nil {
		return err
	}
	printSkipped(b)

	fields, _ := cmd.Flags().GetStringSlice("field")
	noSeries, _ := cmd.Flags().GetBool("no-series")

	files, err := renderPlots(b, chart.NewPDFRenderer(), fields, !noSeries)
	if err != nil {
		return err
	}

	fmt.Printf("Successfully rendered %d files\n", len(files))
	for _, f := range files {
		fmt.Printf("  %s\n", f)
	}
	return nil
}

// renderPlots draws every plot of a batch and returns the files written.
func renderPlots(b *batch, r chart.Renderer, fields []string, series bool) ([]string, error) {
	var files []string

	if series {
		written, err := renderSeries(b, r, fields)
		if err != nil {
			return nil, err
		}
		files = append(files, written...)
	}

	written, err := renderCDFs(b, r)
	if err != nil {
		return nil, err
	}
	return append(files, written...), nil
}

// defaultPlotFields are plotted against time. Fields joined with "+" share
// one plot, e.g. the package and deliver windows of every relay role.
var defaultPlotFields = []string{"cwnd", "inflight", "packet_count", "package_window+deliver_window"}

type seriesKey struct {
	flavor string
	run    int
}

// renderSeries draws one plot per (flavor, run) and field spec with a line
// per circuit, relay role and field.
func renderSeries(b *batch, r chart.Renderer, specs []string) ([]string, error) {
	var order []seriesKey
	byRun := make(map[seriesKey][]*aggregate.Group)
	for _, g := range b.result.Table.Groups() {
		if len(g.Records) == 0 {
			continue
		}
		k := seriesKey{g.Key.Flavor, g.Key.Run}
		if _, ok := byRun[k]; !ok {
			order = append(order, k)
		}
		byRun[k] = append(byRun[k], g)
	}

	var files []string
	for _, k := range order {
		for _, spec := range specs {
			fields := strings.Split(spec, "+")
			var lines []chart.Series
			for _, field := range fields {
				for _, g := range byRun[k] {
					s, err := chart.GroupSeries(g, field)
					if err != nil {
						continue
					}
					if len(fields) > 1 {
						s.Name += " " + field
					}
					lines = append(lines, s)
				}
			}
			if len(lines) == 0 {
				log.WithFields(log.Fields{"flavor": k.flavor, "run": k.run, "field": spec}).Debug("field not in any layout, no plot")
				continue
			}

			label := strings.Join(fields, ", ")
			kind := fmt.Sprintf("plt_%s_%s_run%d", strings.ToUpper(strings.Join(fields, "_")), k.flavor, k.run)
			path, err := b.paths.Output(kind, ".pdf")
			if err != nil {
				return nil, err
			}
			if err := ensureDir(path); err != nil {
				return nil, err
			}
			err = r.TimeSeries(chart.TimeSeriesSpec{
				Title:  fmt.Sprintf("%s, %s run %d", label, k.flavor, k.run),
				XLabel: "time (s)",
				YLabel: label,
				Series: lines,
				Path:   path,
			})
			if err != nil {
				return nil, err
			}
			files = append(files, path)
		}
	}
	return files, nil
}

func renderCDFs(b *batch, r chart.Renderer) ([]string, error) {
	table := b.result.Table
	sources := []struct {
		name   string
		label  string
		values func(flavor string) []float64
	}{
		{"pckCnt", "packet count", func(f string) []float64 { return table.Values(f, "packet_count") }},
		{"finalCnt", "final packet count", func(f string) []float64 {
			return aggregate.SummaryValues(b.result.Summaries, f, "final_count")
		}},
		{"dataRate", "data rate (pkt/s)", func(f string) []float64 {
			return aggregate.SummaryValues(b.result.Summaries, f, "data_rate")
		}},
	}

	var files []string
	for _, src := range sources {
		var curves []chart.Curve
		for _, flavor := range table.Flavors() {
			values := src.values(flavor)
			if len(values) == 0 {
				continue
			}
			d, err := aggregate.CDF(values, b.cfg.Bins)
			if err != nil {
				return nil, fmt.Errorf("%s CDF for %s: %w", src.name, flavor, err)
			}
			curves = append(curves, chart.Curve{Name: flavor, Dist: d})

			csvPath, err := b.paths.Output("cdf_"+src.name+"_"+flavor, ".csv")
			if err != nil {
				return nil, err
			}
			if err := writeDistribution(csvPath, d); err != nil {
				return nil, err
			}
			files = append(files, csvPath)
		}
		if len(curves) == 0 {
			continue
		}

		path, err := b.paths.Output("cdf_"+src.name, ".pdf")
		if err != nil {
			return nil, err
		}
		if err := ensureDir(path); err != nil {
			return nil, err
		}
		if err := r.CDF(chart.CDFSpec{Title: "CDF of " + src.label, XLabel: src.label, Curves: curves, Path: path}); err != nil {
			return nil, err
		}
		files = append(files, path)
	}
	return files, nil
}

func writeDistribution(path string, d *aggregate.Distribution) error {
	f, err := createOutput(path)
	if err != nil {
		return err
	}
	if err := report.WriteDistribution(f, d); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
