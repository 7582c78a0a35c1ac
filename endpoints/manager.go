package endpoints

import (
	"encoding/json"
	"sync"
)

// JSONCollector is anything that can report a named block of metrics.
type JSONCollector interface {
	JSON() []byte
	PartName() string
}

type MetricsManager struct {
	mu         sync.Mutex
	collectors []JSONCollector
}

func NewManager() *MetricsManager {
	return &MetricsManager{
		collectors: []JSONCollector{},
	}
}

type Manager interface {
	Register(c ...JSONCollector) *MetricsManager
	AggregateJSON() []byte
}

func (m *MetricsManager) Register(c ...JSONCollector) *MetricsManager {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collectors = append(m.collectors, c...)
	return m
}

func (m *MetricsManager) AggregateJSON() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	aggregated := make(map[string]interface{})

	for _, c := range m.collectors {
		var data map[string]interface{}
		if err := json.Unmarshal(c.JSON(), &data); err != nil {
			continue
		}
		aggregated[c.PartName()] = data
	}

	b, _ := json.MarshalIndent(aggregated, "", "  ")
	return b
}
