package aggregate

import (
	"errors"
	"math"
	"testing"

	"github.com/imishinist/congstat/internal/extract"
	"github.com/imishinist/congstat/internal/models"
)

var testLayout = &models.Layout{
	Name:  "sent-bdp",
	Event: "SENT",
	Fields: []models.Field{
		{Name: models.FieldTime, Index: 0},
		{Name: models.FieldCwnd, Index: 3},
		{Name: models.FieldPacketCount, Index: 7},
	},
}

var legacyLayout = &models.Layout{
	Name: "legacy",
	Fields: []models.Field{
		{Name: models.FieldTime, Index: 0},
		{Name: models.FieldPackageWindow, Index: 3},
		{Name: models.FieldPacketCount, Index: 4},
	},
}

func rec(tags models.Tags, line int, time, cwnd, count float64) models.Record {
	return models.Record{Tags: tags, Line: line, Values: []float64{time, cwnd, count}}
}

func approx(a, b float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= 1e-9*math.Max(math.Abs(a), math.Abs(b))
}

func TestAppendPreservesOrder(t *testing.T) {
	tbl := NewTable()
	key := models.Tags{Flavor: "vegas", Run: 1, Circuit: 1}
	other := models.Tags{Flavor: "vegas", Run: 1, Circuit: 2}

	tbl.Append(key, testLayout, rec(key, 1, 100, 5, 1), rec(key, 2, 200, 5, 2))
	tbl.Append(other, testLayout, rec(other, 3, 150, 5, 1))
	tbl.Append(key, testLayout, rec(key, 4, 300, 5, 3))

	g, ok := tbl.Group(key)
	if !ok {
		t.Fatal("group not found")
	}
	var gotLines []int
	for _, r := range g.Records {
		gotLines = append(gotLines, r.Line)
	}
	want := []int{1, 2, 4}
	if len(gotLines) != len(want) {
		t.Fatalf("lines = %v, want %v", gotLines, want)
	}
	for i := range want {
		if gotLines[i] != want[i] {
			t.Fatalf("lines = %v, want %v", gotLines, want)
		}
	}

	groups := tbl.Groups()
	if len(groups) != 2 || groups[0].Key != key || groups[1].Key != other {
		t.Errorf("group order = %+v", groups)
	}
	if tbl.Len() != 4 {
		t.Errorf("Len = %d, want 4", tbl.Len())
	}
}

func TestAppendRejectsLayoutChange(t *testing.T) {
	tbl := NewTable()
	key := models.Tags{Flavor: "vegas", Run: 1, Circuit: 1}
	if err := tbl.Append(key, testLayout); err != nil {
		t.Fatalf("Append error: %v", err)
	}
	if err := tbl.Append(key, legacyLayout); err == nil {
		t.Error("expected error appending with a different layout")
	}
}

func TestMergeKeepsOrder(t *testing.T) {
	a, b := NewTable(), NewTable()
	k1 := models.Tags{Flavor: "nola", Run: 1, Circuit: 1}
	k2 := models.Tags{Flavor: "nola", Run: 2, Circuit: 1}
	a.Append(k1, testLayout, rec(k1, 1, 1, 1, 1))
	b.Append(k2, testLayout, rec(k2, 1, 1, 1, 1))
	b.Append(k1, testLayout, rec(k1, 9, 2, 1, 2))

	if err := a.Merge(b); err != nil {
		t.Fatalf("Merge error: %v", err)
	}
	g, _ := a.Group(k1)
	if len(g.Records) != 2 || g.Records[1].Line != 9 {
		t.Errorf("merged group = %+v", g.Records)
	}
	if a.Groups()[1].Key != k2 {
		t.Errorf("merged group order = %+v", a.Groups())
	}
}

func TestSummarizeScenario(t *testing.T) {
	key := models.Tags{Flavor: "vegas", Run: 1, Circuit: 1}
	g := &Group{Key: key, Layout: testLayout, Records: []models.Record{
		rec(key, 1, 100, 500, 10),
		rec(key, 2, 200, 500, 20),
		rec(key, 3, 300, 500, 30),
	}}

	s, err := Summarize(g)
	if err != nil {
		t.Fatalf("Summarize error: %v", err)
	}
	if s.FinalCount != 30 {
		t.Errorf("FinalCount = %v, want 30", s.FinalCount)
	}
	if !approx(s.Elapsed, 2.0e-7) {
		t.Errorf("Elapsed = %v, want 2e-7", s.Elapsed)
	}
	if !s.RateDefined || !approx(s.Rate, 1.5e8) {
		t.Errorf("Rate = %v (defined %v), want 1.5e8", s.Rate, s.RateDefined)
	}
	if s.Records != 3 || s.Tags != key {
		t.Errorf("summary metadata = %+v", s)
	}
}

func TestSummarizeSingleRecordFlagsRate(t *testing.T) {
	key := models.Tags{Flavor: "nola", Run: 2, Circuit: 1}
	g := &Group{Key: key, Layout: testLayout, Records: []models.Record{rec(key, 1, 100, 500, 7)}}

	s, err := Summarize(g)
	if err != nil {
		t.Fatalf("Summarize error: %v", err)
	}
	if s.Elapsed != 0 {
		t.Errorf("Elapsed = %v, want 0", s.Elapsed)
	}
	if s.RateDefined {
		t.Error("expected rate to be flagged undefined")
	}
	if math.IsInf(s.Rate, 0) || math.IsNaN(s.Rate) {
		t.Errorf("Rate = %v, must not be Inf/NaN", s.Rate)
	}
}

func TestSummarizeEmptyGroup(t *testing.T) {
	key := models.Tags{Flavor: "westwood", Run: 4, Circuit: 3}
	g := &Group{Key: key, Layout: testLayout}

	s, err := Summarize(g)
	if !errors.Is(err, extract.ErrEmptyGroup) {
		t.Fatalf("expected ErrEmptyGroup, got %v (summary %+v)", err, s)
	}
}

func TestSummarizeUsesLayoutPositions(t *testing.T) {
	key := models.Tags{Flavor: "legacy", Run: 1, Circuit: 1}
	g := &Group{Key: key, Layout: legacyLayout, Records: []models.Record{
		{Tags: key, Values: []float64{1e9, 499, 1}},
		{Tags: key, Values: []float64{3e9, 450, 50}},
	}}
	s, err := Summarize(g)
	if err != nil {
		t.Fatalf("Summarize error: %v", err)
	}
	if s.FinalCount != 50 || s.Elapsed != 2 || s.Rate != 25 {
		t.Errorf("summary = %+v", s)
	}
}

func TestSummariesPolicy(t *testing.T) {
	tbl := NewTable()
	ok := models.Tags{Flavor: "vegas", Run: 1, Circuit: 1}
	empty := models.Tags{Flavor: "vegas", Run: 1, Circuit: 2}
	tbl.Append(ok, testLayout, rec(ok, 1, 100, 1, 1), rec(ok, 2, 300, 1, 4))
	tbl.Append(empty, testLayout)

	if _, _, err := tbl.Summaries(PolicyFail); !errors.Is(err, extract.ErrEmptyGroup) {
		t.Errorf("PolicyFail: expected ErrEmptyGroup, got %v", err)
	}

	sums, skipped, err := tbl.Summaries(PolicySkip)
	if err != nil {
		t.Fatalf("PolicySkip error: %v", err)
	}
	if len(sums) != 1 || sums[0].Tags != ok {
		t.Errorf("summaries = %+v", sums)
	}
	if len(skipped) != 1 || skipped[0].Tags != empty || !errors.Is(skipped[0].Reason, extract.ErrEmptyGroup) {
		t.Errorf("skipped = %+v", skipped)
	}
}

func TestSummariesIgnoreWindowSeries(t *testing.T) {
	window := &models.Layout{
		Name: "deliver-window",
		Fields: []models.Field{
			{Name: models.FieldTime, Index: 0},
			{Name: models.FieldDeliverWindow, Index: 3},
		},
	}
	tbl := NewTable()
	sent := models.Tags{Flavor: "vegas", Run: 1, Circuit: 1, Relay: "exit", Layout: "sent-bdp"}
	win := models.Tags{Flavor: "vegas", Run: 1, Circuit: 1, Relay: "proxy", Layout: "deliver-window"}
	tbl.Append(sent, testLayout, rec(sent, 1, 100, 1, 1), rec(sent, 2, 300, 1, 4))
	tbl.Append(win, window)

	sums, skipped, err := tbl.Summaries(PolicyFail)
	if err != nil {
		t.Fatalf("Summaries error: %v", err)
	}
	if len(sums) != 1 || sums[0].Tags != sent || len(skipped) != 0 {
		t.Errorf("summaries = %+v, skipped = %+v", sums, skipped)
	}
}

func TestParsePolicy(t *testing.T) {
	for _, s := range []string{"fail", "skip"} {
		if _, err := ParsePolicy(s); err != nil {
			t.Errorf("ParsePolicy(%q) error: %v", s, err)
		}
	}
	if _, err := ParsePolicy("ignore"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestValuesAndColumns(t *testing.T) {
	tbl := NewTable()
	v := models.Tags{Flavor: "vegas", Run: 1, Circuit: 1}
	l := models.Tags{Flavor: "legacy", Run: 1, Circuit: 1}
	tbl.Append(v, testLayout, rec(v, 1, 100, 9, 1), rec(v, 2, 200, 9, 2))
	tbl.Append(l, legacyLayout, models.Record{Tags: l, Values: []float64{100, 499, 7}})

	got := tbl.Values("vegas", models.FieldPacketCount)
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("Values(vegas) = %v", got)
	}
	if got := tbl.Values("legacy", models.FieldCwnd); len(got) != 0 {
		t.Errorf("legacy has no cwnd, got %v", got)
	}

	cols := tbl.Columns()
	want := []string{"time", "cwnd", "packet_count", "package_window"}
	if len(cols) != len(want) {
		t.Fatalf("Columns = %v, want %v", cols, want)
	}
	for i := range want {
		if cols[i] != want[i] {
			t.Errorf("Columns = %v, want %v", cols, want)
		}
	}
	if f := tbl.Flavors(); len(f) != 2 || f[0] != "vegas" || f[1] != "legacy" {
		t.Errorf("Flavors = %v", f)
	}
}

func TestSummaryValues(t *testing.T) {
	sums := []models.SeriesSummary{
		{Tags: models.Tags{Flavor: "nola"}, FinalCount: 10, Elapsed: 1, Rate: 10, RateDefined: true},
		{Tags: models.Tags{Flavor: "nola"}, FinalCount: 3},
		{Tags: models.Tags{Flavor: "vegas"}, FinalCount: 99, Elapsed: 1, Rate: 99, RateDefined: true},
	}
	if got := SummaryValues(sums, "nola", "final_count"); len(got) != 2 {
		t.Errorf("final_count = %v", got)
	}
	if got := SummaryValues(sums, "nola", "data_rate"); len(got) != 1 || got[0] != 10 {
		t.Errorf("data_rate should skip undefined rates, got %v", got)
	}
}

func TestCDF(t *testing.T) {
	d, err := CDF([]float64{4, 1, 2, 3}, 3)
	if err != nil {
		t.Fatalf("CDF error: %v", err)
	}
	wantEdges := []float64{2, 3, 4}
	wantCum := []float64{0.25, 0.5, 1}
	for i := range wantEdges {
		if !approx(d.Edges[i], wantEdges[i]) {
			t.Errorf("Edges = %v, want %v", d.Edges, wantEdges)
			break
		}
		if !approx(d.Cumulative[i], wantCum[i]) {
			t.Errorf("Cumulative = %v, want %v", d.Cumulative, wantCum)
			break
		}
	}
	if d.N != 4 {
		t.Errorf("N = %d", d.N)
	}
}

func TestCDFMonotoneAndComplete(t *testing.T) {
	values := make([]float64, 0, 500)
	for i := 0; i < 500; i++ {
		values = append(values, float64((i*37)%101)+0.25)
	}
	d, err := CDF(values, DefaultBins)
	if err != nil {
		t.Fatalf("CDF error: %v", err)
	}
	if len(d.Cumulative) != DefaultBins || len(d.Edges) != DefaultBins {
		t.Fatalf("got %d bins", len(d.Cumulative))
	}
	for i := 1; i < len(d.Cumulative); i++ {
		if d.Cumulative[i] < d.Cumulative[i-1] {
			t.Fatalf("CDF not monotone at %d: %v < %v", i, d.Cumulative[i], d.Cumulative[i-1])
		}
	}
	if !approx(d.Cumulative[len(d.Cumulative)-1], 1) {
		t.Errorf("last cumulative = %v, want 1", d.Cumulative[len(d.Cumulative)-1])
	}
}

func TestCDFDegenerate(t *testing.T) {
	d, err := CDF([]float64{5, 5, 5}, 2)
	if err != nil {
		t.Fatalf("CDF error: %v", err)
	}
	if !approx(d.Edges[0], 5) || !approx(d.Edges[1], 5.5) {
		t.Errorf("Edges = %v", d.Edges)
	}
	if !approx(d.Cumulative[1], 1) {
		t.Errorf("Cumulative = %v", d.Cumulative)
	}

	if _, err := CDF(nil, 10); !errors.Is(err, ErrNoValues) {
		t.Errorf("expected ErrNoValues, got %v", err)
	}
	if _, err := CDF([]float64{1}, 0); err == nil {
		t.Error("expected error for zero bins")
	}
	if _, err := CDF([]float64{1, math.NaN()}, 3); err == nil {
		t.Error("expected error for NaN input")
	}
}
