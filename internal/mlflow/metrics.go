package mlflow

import (
	"context"
	"fmt"
	"time"

	"github.com/databricks/databricks-sdk-go/service/ml"

	"github.com/imishinist/congstat/internal/models"
)

// maxBatchMetrics is the tracking server's limit on metrics per LogBatch call.
const maxBatchMetrics = 1000

// LogBatchMetrics sends metrics in LogBatch calls of at most
// maxBatchMetrics each.
func (c *Client) LogBatchMetrics(ctx context.Context, runID string, metrics []models.Metric) error {
	for start := 0; start < len(metrics); start += maxBatchMetrics {
		end := start + maxBatchMetrics
		if end > len(metrics) {
			end = len(metrics)
		}

		batch := make([]ml.Metric, 0, end-start)
		for _, m := range metrics[start:end] {
			batch = append(batch, ml.Metric{
				Key:       m.Key,
				Value:     m.Value,
				Timestamp: m.Timestamp.UnixMilli(),
				Step:      m.Step,
			})
		}

		err := c.client.Experiments.LogBatch(ctx, ml.LogBatch{
			RunId:   runID,
			Metrics: batch,
		})
		if err != nil {
			return fmt.Errorf("failed to log metrics %d-%d: %w", start, end-1, err)
		}
	}
	return nil
}

// LogSummaries logs every summary as metrics, see SummaryMetrics.
func (c *Client) LogSummaries(ctx context.Context, runID string, summaries []models.SeriesSummary) (int, error) {
	metrics := SummaryMetrics(summaries, time.Now())
	if err := c.LogBatchMetrics(ctx, runID, metrics); err != nil {
		return 0, err
	}
	return len(metrics), nil
}

// SummaryMetrics turns summaries into metrics keyed
// <name>/<flavor>/<relay>/c<circuit> with the simulation run as step. The
// relay segment is left out for series without a relay role. data_rate is
// only emitted where the rate is defined.
func SummaryMetrics(summaries []models.SeriesSummary, ts time.Time) []models.Metric {
	metrics := make([]models.Metric, 0, 3*len(summaries))
	for _, s := range summaries {
		suffix := s.Tags.Flavor
		if s.Tags.Relay != "" {
			suffix += "/" + s.Tags.Relay
		}
		suffix += fmt.Sprintf("/c%d", s.Tags.Circuit)
		step := int64(s.Tags.Run)

		metrics = append(metrics,
			models.Metric{Key: "final_count/" + suffix, Value: s.FinalCount, Timestamp: ts, Step: step},
			models.Metric{Key: "elapsed_s/" + suffix, Value: s.Elapsed, Timestamp: ts, Step: step},
		)
		if s.RateDefined {
			metrics = append(metrics, models.Metric{Key: "data_rate/" + suffix, Value: s.Rate, Timestamp: ts, Step: step})
		}
	}
	return metrics
}
