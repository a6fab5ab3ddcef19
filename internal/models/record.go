package models

import "fmt"

// Tags identify the series a record belongs to. One log yields a series per
// circuit, relay role and layout.
type Tags struct {
	Flavor  string `json:"cong_flavor"`
	Run     int    `json:"run"`
	Circuit int    `json:"circuit"`
	Relay   string `json:"relay,omitempty"`
	Layout  string `json:"layout,omitempty"`
}

func (t Tags) String() string {
	s := fmt.Sprintf("flavor=%s run=%d circuit=%d", t.Flavor, t.Run, t.Circuit)
	if t.Relay != "" {
		s += " relay=" + t.Relay
	}
	if t.Layout != "" {
		s += " layout=" + t.Layout
	}
	return s
}

// Record is one extracted line. Values are parallel to the fields of the
// layout that produced it.
type Record struct {
	Tags   Tags
	Line   int
	Values []float64
}

// SeriesSummary is derived once per series group.
type SeriesSummary struct {
	Tags       Tags    `json:"tags"`
	Records    int     `json:"records"`
	FinalCount float64 `json:"final_count"`
	// Elapsed is the span between the first and last record in seconds.
	Elapsed float64 `json:"elapsed_s"`
	// Rate is FinalCount/Elapsed and only meaningful when RateDefined is
	// true. A single-record group has zero elapsed time and no rate.
	Rate        float64 `json:"data_rate"`
	RateDefined bool    `json:"rate_defined"`
}

// Skipped is a group or job excluded from the results under the skip policy.
type Skipped struct {
	Tags   Tags
	Path   string
	Reason error
}
