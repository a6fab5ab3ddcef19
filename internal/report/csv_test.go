package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/imishinist/congstat/internal/aggregate"
	"github.com/imishinist/congstat/internal/models"
)

var (
	legacyLayout = &models.Layout{
		Name: "legacy",
		Fields: []models.Field{
			{Name: models.FieldTime, Index: 0},
			{Name: models.FieldPackageWindow, Index: 3},
			{Name: models.FieldPacketCount, Index: 4},
		},
	}
	sentLayout = &models.Layout{
		Name: "sent-bdp",
		Fields: []models.Field{
			{Name: models.FieldTime, Index: 0},
			{Name: models.FieldCwnd, Index: 3},
			{Name: models.FieldPacketCount, Index: 7},
		},
	}
)

func readCSV(t *testing.T, s string) [][]string {
	t.Helper()
	rows, err := csv.NewReader(strings.NewReader(s)).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v\n%s", err, s)
	}
	return rows
}

func TestWriteRecords(t *testing.T) {
	table := aggregate.NewTable()
	lk := models.Tags{Flavor: "legacy", Run: 1, Circuit: 1, Relay: "exit", Layout: "legacy"}
	vk := models.Tags{Flavor: "vegas", Run: 2, Circuit: 1, Relay: "proxy", Layout: "sent-bdp"}
	table.Append(lk, legacyLayout, models.Record{Tags: lk, Line: 1, Values: []float64{100, 499, 1}})
	table.Append(vk, sentLayout,
		models.Record{Tags: vk, Line: 3, Values: []float64{200, 500.5, 2}},
		models.Record{Tags: vk, Line: 4, Values: []float64{-300, 501, 3}},
	)

	var buf bytes.Buffer
	if err := WriteRecords(&buf, table); err != nil {
		t.Fatalf("WriteRecords error: %v", err)
	}
	rows := readCSV(t, buf.String())

	want := [][]string{
		{"flavor", "run", "circuit", "relay", "layout", "time", "package_window", "packet_count", "cwnd"},
		{"legacy", "1", "1", "exit", "legacy", "100", "499", "1", ""},
		{"vegas", "2", "1", "proxy", "sent-bdp", "200", "", "2", "500.5"},
		{"vegas", "2", "1", "proxy", "sent-bdp", "-300", "", "3", "501"},
	}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d", len(rows), len(want))
	}
	for i := range want {
		if strings.Join(rows[i], ",") != strings.Join(want[i], ",") {
			t.Errorf("row %d = %v, want %v", i, rows[i], want[i])
		}
	}
}

func TestWriteSummaries(t *testing.T) {
	summaries := []models.SeriesSummary{
		{Tags: models.Tags{Flavor: "vegas", Run: 1, Circuit: 1, Relay: "exit"}, Records: 3, FinalCount: 30, Elapsed: 2e-7, Rate: 1.5e8, RateDefined: true},
		{Tags: models.Tags{Flavor: "vegas", Run: 1, Circuit: 2, Relay: "exit"}, Records: 1, FinalCount: 5},
	}

	var buf bytes.Buffer
	if err := WriteSummaries(&buf, summaries); err != nil {
		t.Fatalf("WriteSummaries error: %v", err)
	}
	rows := readCSV(t, buf.String())

	if strings.Join(rows[0], ",") != "circuit,run,cong_flavor,relay,final_count,elapsed_s,data_rate,rate_defined" {
		t.Errorf("header = %v", rows[0])
	}
	if strings.Join(rows[1], ",") != "1,1,vegas,exit,30,2e-07,1.5e+08,true" {
		t.Errorf("row 1 = %v", rows[1])
	}
	if strings.Join(rows[2], ",") != "2,1,vegas,exit,5,0,,false" {
		t.Errorf("row 2 = %v", rows[2])
	}
}

func TestWriteDistribution(t *testing.T) {
	d, err := aggregate.CDF([]float64{1, 2, 3, 4}, 2)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteDistribution(&buf, d); err != nil {
		t.Fatalf("WriteDistribution error: %v", err)
	}
	rows := readCSV(t, buf.String())
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if strings.Join(rows[2], ",") != "4,1" {
		t.Errorf("last row = %v", rows[2])
	}
}
