package chart

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/imishinist/congstat/internal/aggregate"
	"github.com/imishinist/congstat/internal/models"
)

var testLayout = &models.Layout{
	Name: "sent-bdp",
	Fields: []models.Field{
		{Name: models.FieldTime, Index: 0},
		{Name: models.FieldCwnd, Index: 3},
		{Name: models.FieldPacketCount, Index: 7},
	},
}

func testGroup() *aggregate.Group {
	key := models.Tags{Flavor: "vegas", Run: 2, Circuit: 1}
	table := aggregate.NewTable()
	table.Append(key, testLayout,
		models.Record{Tags: key, Line: 1, Values: []float64{1e9, 500, 10}},
		models.Record{Tags: key, Line: 2, Values: []float64{2e9, 510, 20}},
		models.Record{Tags: key, Line: 3, Values: []float64{3e9, 490, 30}},
	)
	g, _ := table.Group(key)
	return g
}

func assertPDF(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("%s is not a PDF", path)
	}
}

func TestGroupSeries(t *testing.T) {
	s, err := GroupSeries(testGroup(), models.FieldCwnd)
	if err != nil {
		t.Fatalf("GroupSeries error: %v", err)
	}
	if s.Name != "c1 run 2" {
		t.Errorf("Name = %q", s.Name)
	}
	g := testGroup()
	g.Key.Relay = "proxy"
	if named, _ := GroupSeries(g, models.FieldCwnd); named.Name != "proxy c1 run 2" {
		t.Errorf("Name with relay = %q", named.Name)
	}
	if len(s.X) != 3 || s.X[0] != 1 || s.X[2] != 3 {
		t.Errorf("X = %v, want seconds 1..3", s.X)
	}
	if s.Y[1] != 510 {
		t.Errorf("Y = %v", s.Y)
	}

	if _, err := GroupSeries(testGroup(), models.FieldBDP); err == nil {
		t.Error("expected error for missing field")
	}
}

func TestPDFRendererTimeSeries(t *testing.T) {
	s, err := GroupSeries(testGroup(), models.FieldCwnd)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "cwnd.pdf")

	r := NewPDFRenderer()
	err = r.TimeSeries(TimeSeriesSpec{
		Title:  "cwnd",
		XLabel: "time (s)",
		YLabel: "cwnd",
		Series: []Series{s},
		Path:   path,
	})
	if err != nil {
		t.Fatalf("TimeSeries error: %v", err)
	}
	assertPDF(t, path)
}

func TestPDFRendererCDF(t *testing.T) {
	d, err := aggregate.CDF([]float64{10, 20, 20, 30, 45}, aggregate.DefaultBins)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "cdf.pdf")

	r := NewPDFRenderer()
	if err := r.CDF(CDFSpec{Title: "final count", XLabel: "packets", Curves: []Curve{{Name: "vegas", Dist: d}}, Path: path}); err != nil {
		t.Fatalf("CDF error: %v", err)
	}
	assertPDF(t, path)
}

func TestPDFRendererRejectsEmpty(t *testing.T) {
	r := NewPDFRenderer()
	dir := t.TempDir()
	if err := r.TimeSeries(TimeSeriesSpec{Path: filepath.Join(dir, "a.pdf")}); err == nil {
		t.Error("expected error for empty time series")
	}
	if err := r.CDF(CDFSpec{Path: filepath.Join(dir, "b.pdf")}); err == nil {
		t.Error("expected error for empty CDF")
	}
	bad := TimeSeriesSpec{Series: []Series{{Name: "x", X: []float64{1}, Y: nil}}, Path: filepath.Join(dir, "c.pdf")}
	if err := r.TimeSeries(bad); err == nil {
		t.Error("expected error for mismatched series")
	}
}
