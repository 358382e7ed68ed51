package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"FuturesDesk/internal/collector"
	"FuturesDesk/internal/model"
	"FuturesDesk/internal/recorder"
	"FuturesDesk/internal/report"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// Result is the outcome of one symbol in a daily run.
type Result struct {
	Symbol   string
	RunID    string
	Snapshot *model.Snapshot
	Report   string
	Err      error
}

// Scheduler manages the cron tasks.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Recorder  recorder.Recorder
	Metrics   *Metrics
	Symbols   []string
	Ctx       context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, rec recorder.Recorder, m *Metrics, symbols []string) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Recorder:  rec,
		Metrics:   m,
		Symbols:   symbols,
		Ctx:       ctx,
	}
}

// RegisterAll registers the daily analytics task.
func (s *Scheduler) RegisterAll(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, func() { s.dailyTask() }); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the daily task immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() []Result {
	return s.dailyTask()
}

func (s *Scheduler) dailyTask() []Result {
	log.Printf("[INFO] running daily analytics for %d symbols", len(s.Symbols))
	results := make([]Result, 0, len(s.Symbols))
	for _, symbol := range s.Symbols {
		if err := s.Ctx.Err(); err != nil {
			log.Printf("[WARN] daily task cancelled: %v", err)
			break
		}
		results = append(results, s.runSymbol(symbol))
	}
	return results
}

func (s *Scheduler) runSymbol(symbol string) Result {
	res := Result{Symbol: symbol, RunID: uuid.NewString()}
	start := time.Now()

	snap, err := s.Collector.Collect(s.Ctx, symbol)
	elapsed := time.Since(start)
	if s.Metrics != nil {
		s.Metrics.Duration.WithLabelValues(symbol).Observe(elapsed.Seconds())
	}

	evt := &recorder.RunEvent{ID: res.RunID, Symbol: symbol, StartedAt: start, Duration: elapsed, Status: recorder.RunOK}
	if err != nil {
		log.Printf("[ERROR] collect %s: %v", symbol, err)
		res.Err = err
		evt.Status = recorder.RunFailed
		evt.Error = err.Error()
		s.countRun(symbol, evt.Status)
		s.recordRun(evt)
		return res
	}

	res.Snapshot = snap
	res.Report = report.FormatSnapshot(snap)
	log.Printf("[INFO] %s report:\n%s", symbol, res.Report)

	if s.Metrics != nil && len(snap.Excluded) > 0 {
		s.Metrics.Excluded.WithLabelValues(symbol).Add(float64(len(snap.Excluded)))
	}
	if err := s.Recorder.RecordSnapshot(res.RunID, snap); err != nil {
		log.Printf("[ERROR] record snapshot %s: %v", symbol, err)
	}
	s.countRun(symbol, evt.Status)
	s.recordRun(evt)
	return res
}

func (s *Scheduler) countRun(symbol string, status recorder.RunStatus) {
	if s.Metrics != nil {
		s.Metrics.Runs.WithLabelValues(symbol, string(status)).Inc()
	}
}

func (s *Scheduler) recordRun(evt *recorder.RunEvent) {
	if err := s.Recorder.RecordRun(evt); err != nil {
		log.Printf("[ERROR] record run %s: %v", evt.Symbol, err)
	}
}
