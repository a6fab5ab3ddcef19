package mlflow

import (
	"context"
	"fmt"
	"time"

	"github.com/databricks/databricks-sdk-go/service/ml"

	"github.com/imishinist/congstat/internal/models"
)

var runStatuses = map[models.RunStatus]ml.UpdateRunStatus{
	models.RunStatusRunning:  ml.UpdateRunStatusRunning,
	models.RunStatusFinished: ml.UpdateRunStatusFinished,
	models.RunStatusFailed:   ml.UpdateRunStatusFailed,
	models.RunStatusKilled:   ml.UpdateRunStatusKilled,
}

// RunTags converts a run configuration into tracking tags. The run name and
// description go into the reserved mlflow.* tags.
func RunTags(cfg *models.RunConfig, runName string) []ml.RunTag {
	tags := make([]ml.RunTag, 0, len(cfg.Tags)+2)
	for key, value := range cfg.Tags {
		tags = append(tags, ml.RunTag{Key: key, Value: value})
	}
	tags = append(tags, ml.RunTag{Key: "mlflow.runName", Value: runName})
	if cfg.Description != "" {
		tags = append(tags, ml.RunTag{Key: "mlflow.note.content", Value: cfg.Description})
	}
	return tags
}

func (c *Client) CreateRun(ctx context.Context, cfg *models.RunConfig) (*models.RunInfo, error) {
	if cfg.ExperimentID == "" {
		return nil, fmt.Errorf("experiment ID must be provided")
	}

	startTime := time.Now()
	runName := cfg.RunName
	if runName == "" {
		runName = "congstat-" + startTime.Format("2006-01-02-15-04-05")
	}

	resp, err := c.client.Experiments.CreateRun(ctx, ml.CreateRun{
		ExperimentId: cfg.ExperimentID,
		RunName:      runName,
		StartTime:    startTime.UnixMilli(),
		Tags:         RunTags(cfg, runName),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	return &models.RunInfo{
		RunID:        resp.Run.Info.RunId,
		ExperimentID: cfg.ExperimentID,
		RunName:      runName,
		Status:       models.RunStatusRunning,
		StartTime:    startTime,
		Tags:         cfg.Tags,
	}, nil
}

func (c *Client) UpdateRun(ctx context.Context, runID string, status models.RunStatus) error {
	mlStatus, ok := runStatuses[status]
	if !ok {
		return fmt.Errorf("invalid run status: %s", status)
	}

	updateRun := ml.UpdateRun{
		RunId:  runID,
		Status: mlStatus,
	}
	if status != models.RunStatusRunning {
		updateRun.EndTime = time.Now().UnixMilli()
	}

	if _, err := c.client.Experiments.UpdateRun(ctx, updateRun); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}
