package models

import "time"

// RunConfig describes a tracking run to create.
type RunConfig struct {
	ExperimentID string
	RunName      string
	Tags         map[string]string
	Description  string
}

type RunInfo struct {
	RunID        string            `json:"run_id"`
	ExperimentID string            `json:"experiment_id"`
	RunName      string            `json:"run_name"`
	Status       RunStatus         `json:"status"`
	StartTime    time.Time         `json:"start_time"`
	Tags         map[string]string `json:"tags,omitempty"`
}

type RunStatus string

const (
	RunStatusRunning  RunStatus = "RUNNING"
	RunStatusFinished RunStatus = "FINISHED"
	RunStatusFailed   RunStatus = "FAILED"
	RunStatusKilled   RunStatus = "KILLED"
)

// EndStatus is the terminal status of a run that ended with err.
func EndStatus(err error) RunStatus {
	if err != nil {
		return RunStatusFailed
	}
	return RunStatusFinished
}
