package metrics

import (
	"encoding/json"
	"sync"
	"time"
)

type InMemoryMetricsCollector struct {
	mu                 sync.Mutex
	CurrentLaunches    int64
	LaunchTotal        int64
	LaunchSuccess      int64
	LaunchFailure      int64
	PreconditionFailed int64
	LaunchCanceled     int64
	LaunchTimeout      int64
	Vanished           int64
	TotalDuration      time.Duration
	StartTime          time.Time
}

func NewInMemoryMetricsCollector() *InMemoryMetricsCollector {
	return &InMemoryMetricsCollector{
		StartTime: time.Now(),
	}
}

var _ LaunchMetricsCollector = (*InMemoryMetricsCollector)(nil)

// Helper to lock and increment to keep the counters tidy
func (m *InMemoryMetricsCollector) inc(field *int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*field++
}

func (m *InMemoryMetricsCollector) dec(field *int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*field--
}

func (m *InMemoryMetricsCollector) IncCurrentLaunches()    { m.inc(&m.CurrentLaunches) }
func (m *InMemoryMetricsCollector) DecCurrentLaunches()    { m.dec(&m.CurrentLaunches) }
func (m *InMemoryMetricsCollector) IncLaunchTotal()        { m.inc(&m.LaunchTotal) }
func (m *InMemoryMetricsCollector) IncLaunchSuccess()      { m.inc(&m.LaunchSuccess) }
func (m *InMemoryMetricsCollector) IncLaunchFailure()      { m.inc(&m.LaunchFailure) }
func (m *InMemoryMetricsCollector) IncPreconditionFailed() { m.inc(&m.PreconditionFailed) }
func (m *InMemoryMetricsCollector) IncLaunchCanceled()     { m.inc(&m.LaunchCanceled) }
func (m *InMemoryMetricsCollector) IncLaunchTimeout()      { m.inc(&m.LaunchTimeout) }
func (m *InMemoryMetricsCollector) IncVanished()           { m.inc(&m.Vanished) }

func (m *InMemoryMetricsCollector) ObserveLaunchDuration(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TotalDuration += time.Duration(seconds * float64(time.Second))
}

func (m *InMemoryMetricsCollector) PartName() string { return "launcher" }

func (m *InMemoryMetricsCollector) JSON() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	avg := 0.0
	// Avoid division by zero
	if m.LaunchTotal > 0 {
		avg = m.TotalDuration.Seconds() / float64(m.LaunchTotal)
	}

	data := map[string]interface{}{
		"current_launches":     m.CurrentLaunches,
		"launch_total":         m.LaunchTotal,
		"launch_success":       m.LaunchSuccess,
		"launch_failure":       m.LaunchFailure,
		"precondition_failed":  m.PreconditionFailed,
		"launch_canceled":      m.LaunchCanceled,
		"launch_timeout":       m.LaunchTimeout,
		"vanished":             m.Vanished,
		"launch_total_seconds": m.TotalDuration.Seconds(),
		"launch_avg_seconds":   avg,
		"start_time":           m.StartTime.Format(time.RFC3339),
		"uptime_seconds":       time.Since(m.StartTime).Seconds(),
	}
	b, _ := json.MarshalIndent(data, "", "  ")
	return b
}
