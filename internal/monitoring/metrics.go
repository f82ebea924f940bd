package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Metrics accumulates in-process request counters. A single instance is
// created at startup and shared through the middleware closure.
type Metrics struct {
	mu            sync.RWMutex
	requestCount  int64
	errorCount    int64
	statusCodes   map[int]int64
	endpoints     map[string]int64
	totalDuration time.Duration
	startTime     time.Time
	lastRequest   time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{
		statusCodes: make(map[int]int64),
		endpoints:   make(map[string]int64),
		startTime:   time.Now(),
	}
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.record(c.Writer.Status(), c.Request.Method+" "+c.FullPath(), time.Since(start))
	}
}

func (m *Metrics) record(status int, endpoint string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requestCount++
	m.totalDuration += duration
	m.lastRequest = time.Now()
	if status >= 400 {
		m.errorCount++
	}
	m.statusCodes[status]++
	m.endpoints[endpoint]++
}

type Snapshot struct {
	RequestCount  int64            `json:"request_count"`
	ErrorCount    int64            `json:"error_count"`
	AvgDurationMs float64          `json:"avg_duration_ms"`
	StatusCodes   map[int]int64    `json:"status_codes"`
	Endpoints     map[string]int64 `json:"endpoint_calls"`
	UptimeSeconds float64          `json:"uptime_seconds"`
	LastRequest   time.Time        `json:"last_request"`
}

func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := Snapshot{
		RequestCount:  m.requestCount,
		ErrorCount:    m.errorCount,
		StatusCodes:   make(map[int]int64, len(m.statusCodes)),
		Endpoints:     make(map[string]int64, len(m.endpoints)),
		UptimeSeconds: time.Since(m.startTime).Seconds(),
		LastRequest:   m.lastRequest,
	}
	if m.requestCount > 0 {
		snap.AvgDurationMs = float64(m.totalDuration.Milliseconds()) / float64(m.requestCount)
	}
	for k, v := range m.statusCodes {
		snap.StatusCodes[k] = v
	}
	for k, v := range m.endpoints {
		snap.Endpoints[k] = v
	}
	return snap
}

func (m *Metrics) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, m.Snapshot())
	}
}

// HealthCheckFunc probes one dependency. A nil error means healthy.
type HealthCheckFunc func() error

// HealthHandler runs the registered checks and reports 503 if any fails.
func HealthHandler(checks map[string]HealthCheckFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(); err != nil {
				status = http.StatusServiceUnavailable
				results[name] = err.Error()
			} else {
				results[name] = "ok"
			}
		}
		c.JSON(status, gin.H{
			"status": http.StatusText(status),
			"checks": results,
		})
	}
}
