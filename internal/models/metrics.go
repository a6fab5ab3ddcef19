package models

import "time"

// Metric is a single value sent to the tracking server.
type Metric struct {
	Key       string    `json:"key"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
	Step      int64     `json:"step"`
}

// Parameter is a single run parameter sent to the tracking server.
type Parameter struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
