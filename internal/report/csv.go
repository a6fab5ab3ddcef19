// Package report writes analysis tables as CSV.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/imishinist/congstat/internal/aggregate"
	"github.com/imishinist/congstat/internal/models"
)

// SummaryHeader is the column order of WriteSummaries.
var SummaryHeader = []string{"circuit", "run", "cong_flavor", "relay", "final_count", "elapsed_s", "data_rate", "rate_defined"}

// recordTags are the leading columns of WriteRecords.
var recordTags = []string{"flavor", "run", "circuit", "relay", "layout"}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteRecords writes one row per record: the series tags, then every field
// seen in the table. A field the record's layout lacks is left blank.
func WriteRecords(w io.Writer, t *aggregate.Table) error {
	columns := t.Columns()
	cw := csv.NewWriter(w)

	n := len(recordTags)
	header := append(append([]string{}, recordTags...), columns...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(header))
	for _, g := range t.Groups() {
		pos := make([]int, len(columns))
		for i, name := range columns {
			p, ok := g.Layout.Position(name)
			if !ok {
				p = -1
			}
			pos[i] = p
		}

		for _, r := range g.Records {
			row[0] = g.Key.Flavor
			row[1] = strconv.Itoa(g.Key.Run)
			row[2] = strconv.Itoa(g.Key.Circuit)
			row[3] = g.Key.Relay
			row[4] = g.Key.Layout
			for i, p := range pos {
				if p < 0 {
					row[n+i] = ""
				} else {
					row[n+i] = formatFloat(r.Values[p])
				}
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write record %s line %d: %w", g.Key, r.Line, err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteSummaries writes one row per summary. data_rate is blank when the
// rate is undefined.
func WriteSummaries(w io.Writer, summaries []models.SeriesSummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SummaryHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, s := range summaries {
		rate := ""
		if s.RateDefined {
			rate = formatFloat(s.Rate)
		}
		row := []string{
			strconv.Itoa(s.Tags.Circuit),
			strconv.Itoa(s.Tags.Run),
			s.Tags.Flavor,
			s.Tags.Relay,
			formatFloat(s.FinalCount),
			formatFloat(s.Elapsed),
			rate,
			strconv.FormatBool(s.RateDefined),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write summary %s: %w", s.Tags, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteDistribution writes the upper bin edges and cumulative fractions of
// a CDF.
func WriteDistribution(w io.Writer, d *aggregate.Distribution) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"upper_edge", "cumulative"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range d.Edges {
		if err := cw.Write([]string{formatFloat(d.Edges[i]), formatFloat(d.Cumulative[i])}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
