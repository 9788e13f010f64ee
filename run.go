package pocketflow

import (
	"time"

	"github.com/viant/pocketflow/progress"
	"github.com/viant/pocketflow/service/dao"
	"github.com/viant/pocketflow/service/dao/criteria"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// RunRecord describes one top-level Service.Run call.
type RunRecord struct {
	ID        string            `json:"id" yaml:"id"`
	Unit      string            `json:"unit" yaml:"unit"`
	Kind      string            `json:"kind" yaml:"kind"`
	Status    string            `json:"status" yaml:"status"`
	Action    string            `json:"action,omitempty" yaml:"action,omitempty"`
	Error     string            `json:"error,omitempty" yaml:"error,omitempty"`
	StartedAt time.Time         `json:"startedAt" yaml:"startedAt"`
	EndedAt   *time.Time        `json:"endedAt,omitempty" yaml:"endedAt,omitempty"`
	Progress  progress.Counters `json:"progress" yaml:"progress"`
}

// Duration returns the run duration, zero while running.
func (r *RunRecord) Duration() time.Duration {
	if r.EndedAt == nil {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}

func runKey(r *RunRecord) string {
	return r.ID
}

// matchRun filters run records by the Status and Unit parameters.
func matchRun(r *RunRecord, parameters []*dao.Parameter) bool {
	return criteria.Match("Status", r.Status, parameters) && criteria.Match("Unit", r.Unit, parameters)
}
