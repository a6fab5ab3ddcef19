// Package chart renders time series and CDFs to PDF with gonum/plot.
package chart

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/imishinist/congstat/internal/aggregate"
	"github.com/imishinist/congstat/internal/models"
	timeutils "github.com/imishinist/congstat/internal/time"
)

// Series is one named line.
type Series struct {
	Name string
	X, Y []float64
}

type TimeSeriesSpec struct {
	Title  string
	XLabel string
	YLabel string
	Series []Series
	Path   string
}

// Curve is one named distribution on a CDF plot.
type Curve struct {
	Name string
	Dist *aggregate.Distribution
}

type CDFSpec struct {
	Title  string
	XLabel string
	Curves []Curve
	Path   string
}

// Renderer draws plots. The output format is up to the implementation.
type Renderer interface {
	TimeSeries(spec TimeSeriesSpec) error
	CDF(spec CDFSpec) error
}

// PDFRenderer saves plots with the size given. The file extension of the
// output path selects the format, .pdf for the default output.
type PDFRenderer struct {
	Width  vg.Length
	Height vg.Length
}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{Width: 6 * vg.Inch, Height: 4 * vg.Inch}
}

func (r *PDFRenderer) TimeSeries(spec TimeSeriesSpec) error {
	if len(spec.Series) == 0 {
		return fmt.Errorf("plot %s: no series", spec.Path)
	}

	p := plot.New()
	p.Title.Text = spec.Title
	p.X.Label.Text = spec.XLabel
	p.Y.Label.Text = spec.YLabel

	lines := make([]interface{}, 0, 2*len(spec.Series))
	for _, s := range spec.Series {
		if len(s.X) != len(s.Y) {
			return fmt.Errorf("plot %s: series %s has %d x and %d y values", spec.Path, s.Name, len(s.X), len(s.Y))
		}
		xys := make(plotter.XYs, len(s.X))
		for i := range s.X {
			xys[i].X = s.X[i]
			xys[i].Y = s.Y[i]
		}
		lines = append(lines, s.Name, xys)
	}
	if err := plotutil.AddLines(p, lines...); err != nil {
		return fmt.Errorf("plot %s: %w", spec.Path, err)
	}
	p.Legend.Top = true

	if err := p.Save(r.Width, r.Height, spec.Path); err != nil {
		return fmt.Errorf("failed to save plot %s: %w", spec.Path, err)
	}
	return nil
}

func (r *PDFRenderer) CDF(spec CDFSpec) error {
	if len(spec.Curves) == 0 {
		return fmt.Errorf("plot %s: no distributions", spec.Path)
	}

	p := plot.New()
	p.Title.Text = spec.Title
	p.X.Label.Text = spec.XLabel
	p.Y.Label.Text = "CDF"
	p.Y.Min = 0
	p.Y.Max = 1

	lines := make([]interface{}, 0, 2*len(spec.Curves))
	for _, c := range spec.Curves {
		xys := make(plotter.XYs, len(c.Dist.Edges))
		for i := range c.Dist.Edges {
			xys[i].X = c.Dist.Edges[i]
			xys[i].Y = c.Dist.Cumulative[i]
		}
		lines = append(lines, c.Name, xys)
	}
	if err := plotutil.AddLines(p, lines...); err != nil {
		return fmt.Errorf("plot %s: %w", spec.Path, err)
	}
	p.Legend.Left = false
	p.Legend.Top = false

	if err := p.Save(r.Width, r.Height, spec.Path); err != nil {
		return fmt.Errorf("failed to save plot %s: %w", spec.Path, err)
	}
	return nil
}

// GroupSeries returns a field of a group against time in seconds, named by
// relay role, circuit and run.
func GroupSeries(g *aggregate.Group, field string) (Series, error) {
	ts, ok := g.Column(models.FieldTime)
	if !ok {
		return Series{}, fmt.Errorf("group %s: layout %s has no %s field", g.Key, g.Layout.Name, models.FieldTime)
	}
	ys, ok := g.Column(field)
	if !ok {
		return Series{}, fmt.Errorf("group %s: layout %s has no %s field", g.Key, g.Layout.Name, field)
	}

	xs := make([]float64, len(ts))
	for i, t := range ts {
		xs[i] = timeutils.NanosToSeconds(t)
	}
	name := fmt.Sprintf("c%d run %d", g.Key.Circuit, g.Key.Run)
	if g.Key.Relay != "" {
		name = g.Key.Relay + " " + name
	}
	return Series{Name: name, X: xs, Y: ys}, nil
}
