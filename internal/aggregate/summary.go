package aggregate

import (
	"fmt"

	"github.com/imishinist/congstat/internal/extract"
	"github.com/imishinist/congstat/internal/models"
	timeutils "github.com/imishinist/congstat/internal/time"
)

// Policy decides what happens when one group or job fails.
type Policy string

const (
	// PolicyFail aborts the whole batch on the first error.
	PolicyFail Policy = "fail"
	// PolicySkip drops the failing group, reports it and keeps going.
	PolicySkip Policy = "skip"
)

// ParsePolicy validates a policy name.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case PolicyFail, PolicySkip:
		return p, nil
	default:
		return "", fmt.Errorf("invalid error policy: %s (valid: fail, skip)", s)
	}
}

// Summarize derives the summary of a complete group.
func Summarize(g *Group) (models.SeriesSummary, error) {
	if len(g.Records) == 0 {
		return models.SeriesSummary{}, &extract.EmptyGroupError{Group: g.Key.String()}
	}

	tpos, ok := g.Layout.Position(models.FieldTime)
	if !ok {
		return models.SeriesSummary{}, fmt.Errorf("group %s: layout %s has no %s field", g.Key, g.Layout.Name, models.FieldTime)
	}
	cpos, ok := g.Layout.Position(models.FieldPacketCount)
	if !ok {
		return models.SeriesSummary{}, fmt.Errorf("group %s: layout %s has no %s field", g.Key, g.Layout.Name, models.FieldPacketCount)
	}

	first := g.Records[0]
	last := g.Records[len(g.Records)-1]

	s := models.SeriesSummary{
		Tags:       g.Key,
		Records:    len(g.Records),
		FinalCount: last.Values[cpos],
		Elapsed:    timeutils.NanosToSeconds(last.Values[tpos] - first.Values[tpos]),
	}
	if s.Elapsed != 0 {
		s.Rate = s.FinalCount / s.Elapsed
		s.RateDefined = true
	}
	return s, nil
}

// Summaries summarizes every group in order. Groups of layouts without a
// packet count, such as window series, are not summarized. Under PolicyFail
// the first error is returned; under PolicySkip failing groups are returned
// as skipped and contribute nothing.
func (t *Table) Summaries(policy Policy) ([]models.SeriesSummary, []models.Skipped, error) {
	var summaries []models.SeriesSummary
	var skipped []models.Skipped
	for _, g := range t.groups {
		if !g.Layout.Summarizable() {
			continue
		}
		s, err := Summarize(g)
		if err != nil {
			if policy != PolicySkip {
				return nil, nil, err
			}
			skipped = append(skipped, models.Skipped{Tags: g.Key, Reason: err})
			continue
		}
		summaries = append(summaries, s)
	}
	return summaries, skipped, nil
}

// SummaryValues extracts one column from summaries of a flavor. Rates are
// only included where defined.
func SummaryValues(summaries []models.SeriesSummary, flavor, column string) []float64 {
	var values []float64
	for _, s := range summaries {
		if s.Tags.Flavor != flavor {
			continue
		}
		switch column {
		case "final_count":
			values = append(values, s.FinalCount)
		case "elapsed_s":
			values = append(values, s.Elapsed)
		case "data_rate":
			if s.RateDefined {
				values = append(values, s.Rate)
			}
		}
	}
	return values
}
