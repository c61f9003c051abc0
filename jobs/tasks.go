// Package jobs contains the background worker: cache warmup and nightly
// grid snapshots.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportWarmup pre-populates the report cache for the current month.
	TaskReportWarmup = "reports:warmup"
	// TaskGridSnapshot renders the monthly grid PDF to the snapshot
	// directory for the HR archive share.
	TaskGridSnapshot = "reports:snapshot"
)

// WarmupPayload selects the period to warm. Zero values mean the current
// month.
type WarmupPayload struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// NewReportWarmupTask constructs an Asynq task.
func NewReportWarmupTask(payload WarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportWarmup, data), nil
}

// SnapshotPayload selects the period to snapshot.
type SnapshotPayload struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// NewGridSnapshotTask constructs an Asynq task.
func NewGridSnapshotTask(payload SnapshotPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGridSnapshot, data), nil
}
