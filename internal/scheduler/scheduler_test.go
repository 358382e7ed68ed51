package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"FuturesDesk/internal/collector"
	"FuturesDesk/internal/holding"
	"FuturesDesk/internal/model"
	"FuturesDesk/internal/recorder"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRecorder struct {
	mu        sync.Mutex
	runs      []recorder.RunEvent
	snapshots map[string]*model.Snapshot
}

func (m *memRecorder) RecordRun(evt *recorder.RunEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, *evt)
	return nil
}

func (m *memRecorder) RecordSnapshot(runID string, snap *model.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snapshots == nil {
		m.snapshots = make(map[string]*model.Snapshot)
	}
	m.snapshots[runID] = snap
	return nil
}

func (m *memRecorder) Close() error { return nil }

func newCollector() *collector.Collector {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, 20)
	for i := range bars {
		c := 3500 + float64(i)*5
		bars[i] = model.Bar{Date: day.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 10}
	}
	last := bars[len(bars)-1].Date
	src := &collector.MockSource{
		Bars: map[string][]model.Bar{"IF2406": bars},
		Trends: map[string][]model.BrokerTrend{
			"IF2406": {
				{Broker: "中信期货", TotalVolume: 100, Records: []model.HoldingRecord{
					{Broker: "中信期货", Date: last, LongHeld: 30, ShortHeld: 20, LongChange: 3},
				}},
				{Broker: "空账户", TotalVolume: 0, Records: []model.HoldingRecord{
					{Broker: "空账户", Date: last},
				}},
			},
		},
		Contracts: map[string]model.Contract{"IF2406": {Symbol: "IF2406", Exchange: "CFFEX"}},
	}
	col := collector.NewCollector(src, holding.NewAggregator(nil), collector.Options{
		MAWindows:    []int{5},
		LookbackDays: 60,
		TopN:         5,
		ContractTTL:  time.Hour,
	})
	col.Now = func() time.Time { return time.Date(2024, 3, 25, 9, 0, 0, 0, time.UTC) }
	return col
}

func TestRunNow(t *testing.T) {
	rec := &memRecorder{}
	m := NewMetrics(prometheus.NewRegistry())
	s := NewScheduler(context.Background(), newCollector(), rec, m, []string{"IF2406", "IC2406"})

	results := s.RunNow()
	require.Len(t, results, 2)

	ok := results[0]
	require.NoError(t, ok.Err)
	assert.Equal(t, "IF2406", ok.Symbol)
	assert.NotEmpty(t, ok.RunID)
	assert.Equal(t, 20, ok.Snapshot.Bars)
	assert.Contains(t, ok.Report, "IF2406 日报")
	assert.Same(t, ok.Snapshot, rec.snapshots[ok.RunID])

	failed := results[1]
	assert.ErrorIs(t, failed.Err, collector.ErrNoBars)
	assert.Nil(t, failed.Snapshot)
	assert.NotEqual(t, ok.RunID, failed.RunID)

	require.Len(t, rec.runs, 2)
	assert.Equal(t, recorder.RunOK, rec.runs[0].Status)
	assert.Equal(t, recorder.RunFailed, rec.runs[1].Status)
	assert.NotEmpty(t, rec.runs[1].Error)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("IF2406", "OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("IC2406", "FAILED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Excluded.WithLabelValues("IF2406")))
}

func TestRunNow_NoMetrics(t *testing.T) {
	s := NewScheduler(context.Background(), newCollector(), recorder.NewNoopRecorder(), nil, []string{"IF2406"})
	results := s.RunNow()
	require.Len(t, results, 1)
	assert.NoError(t, results[0].Err)
}

func TestRunNow_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := &memRecorder{}
	s := NewScheduler(ctx, newCollector(), rec, nil, []string{"IF2406"})

	assert.Empty(t, s.RunNow())
	assert.Empty(t, rec.runs)
}

func TestRegisterAll(t *testing.T) {
	s := NewScheduler(context.Background(), newCollector(), recorder.NewNoopRecorder(), nil, nil)
	assert.Error(t, s.RegisterAll("not a cron"))
	require.NoError(t, s.RegisterAll("0 30 17 * * 1-5"))
	assert.Len(t, s.Cron.Entries(), 1)
}
