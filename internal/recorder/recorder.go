package recorder

import (
	"time"

	"FuturesDesk/internal/model"
)

// RunStatus is the outcome of one analytics run for one symbol.
type RunStatus string

const (
	RunOK     RunStatus = "OK"
	RunFailed RunStatus = "FAILED"
)

// RunEvent describes one analytics run.
type RunEvent struct {
	ID        string
	Symbol    string
	StartedAt time.Time
	Duration  time.Duration
	Status    RunStatus
	Error     string
}

// Recorder persists analytics output for batch and backtest consumers.
type Recorder interface {
	RecordRun(evt *RunEvent) error
	RecordSnapshot(runID string, snap *model.Snapshot) error
	Close() error
}
