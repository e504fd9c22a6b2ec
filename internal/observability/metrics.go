package observability

import (
	"sort"
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu             sync.Mutex
	requestCount   map[string]int64
	errorCount     map[string]int64
	operationCount map[string]int64
	operationTime  map[string]time.Duration
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:   make(map[string]int64),
		errorCount:     make(map[string]int64),
		operationCount: make(map[string]int64),
		operationTime:  make(map[string]time.Duration),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordOperation counts a dispatched command or query by outcome.
func (m *Metrics) RecordOperation(op, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	key := op + "|" + outcome
	m.mu.Lock()
	defer m.mu.Unlock()
	m.operationCount[key]++
	m.operationTime[op] += duration
}

// OperationStat aggregates one operation.
type OperationStat struct {
	Operation  string           `json:"operation"`
	Outcomes   map[string]int64 `json:"outcomes"`
	TotalMilli float64          `json:"total_ms"`
}

// Snapshot is a point-in-time copy of every counter.
type Snapshot struct {
	Requests   map[string]int64 `json:"requests"`
	Errors     map[string]int64 `json:"errors"`
	Operations []OperationStat  `json:"operations"`
}

// Snapshot copies the current counters.
func (m *Metrics) Snapshot() Snapshot {
	snap := Snapshot{
		Requests:   map[string]int64{},
		Errors:     map[string]int64{},
		Operations: []OperationStat{},
	}
	if m == nil {
		return snap
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for k, v := range m.requestCount {
		snap.Requests[k] = v
	}
	for k, v := range m.errorCount {
		snap.Errors[k] = v
	}
	byOp := map[string]*OperationStat{}
	for key, count := range m.operationCount {
		op, outcome := splitKey(key)
		stat, ok := byOp[op]
		if !ok {
			stat = &OperationStat{
				Operation:  op,
				Outcomes:   map[string]int64{},
				TotalMilli: float64(m.operationTime[op]) / float64(time.Millisecond),
			}
			byOp[op] = stat
		}
		stat.Outcomes[outcome] = count
	}
	for _, stat := range byOp {
		snap.Operations = append(snap.Operations, *stat)
	}
	sort.Slice(snap.Operations, func(i, j int) bool {
		return snap.Operations[i].Operation < snap.Operations[j].Operation
	})
	return snap
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}

func splitKey(key string) (string, string) {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == '|' {
			return key[:i], key[i+1:]
		}
	}
	return key, ""
}
