package server

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/Zanvi/lacasabarber/pkg/metrics"
)

// HealthResponse представляет ответ health check
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Version   string                 `json:"version,omitempty"`
	Uptime    string                 `json:"uptime,omitempty"`
	Checks    map[string]string      `json:"checks"`
	Metrics   map[string]interface{} `json:"metrics,omitempty"`
}

// Pinger проверяет доступность хранилища
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker проверяет состояние системы
type HealthChecker struct {
	store     Pinger
	startTime time.Time
	version   string
}

// NewHealthChecker создает новый health checker
func NewHealthChecker(store Pinger, version string) *HealthChecker {
	return &HealthChecker{
		store:     store,
		startTime: time.Now(),
		version:   version,
	}
}

// HealthHandler обрабатывает запросы health check
func (h *HealthChecker) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	overallStatus := "healthy"

	if err := h.checkStorage(ctx); err != nil {
		checks["storage"] = "unhealthy: " + err.Error()
		overallStatus = "unhealthy"
	} else {
		checks["storage"] = "healthy"
	}

	checks["memory"] = h.checkMemory()
	checks["goroutines"] = h.checkGoroutines()
	if overallStatus == "healthy" && (checks["memory"] != "healthy" || checks["goroutines"] != "healthy") {
		overallStatus = "warning"
	}

	response := HealthResponse{
		Status:    overallStatus,
		Timestamp: time.Now().Format(time.RFC3339),
		Version:   h.version,
		Uptime:    time.Since(h.startTime).String(),
		Checks:    checks,
		Metrics:   h.collectMetrics(),
	}

	status := http.StatusOK
	if overallStatus == "unhealthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, response)
}

func (h *HealthChecker) checkStorage(ctx context.Context) error {
	if h.store == nil {
		return nil
	}
	return h.store.Ping(ctx)
}

// checkMemory проверяет использование памяти
func (h *HealthChecker) checkMemory() string {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	metrics.MemoryUsage.Set(float64(m.Alloc))

	const warningLimit = 500 * 1024 * 1024
	const criticalLimit = 1024 * 1024 * 1024

	switch {
	case m.Alloc > criticalLimit:
		return "critical: memory usage > 1GB"
	case m.Alloc > warningLimit:
		return "warning: memory usage > 500MB"
	}
	return "healthy"
}

// checkGoroutines проверяет количество горутин
func (h *HealthChecker) checkGoroutines() string {
	count := runtime.NumGoroutine()
	metrics.GoroutinesCount.Set(float64(count))

	switch {
	case count > 1000:
		return "critical: too many goroutines"
	case count > 100:
		return "warning: high goroutine count"
	}
	return "healthy"
}

func (h *HealthChecker) collectMetrics() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return map[string]interface{}{
		"memory": map[string]interface{}{
			"alloc_bytes": m.Alloc,
			"sys_bytes":   m.Sys,
			"num_gc":      m.NumGC,
		},
		"runtime": map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"gomaxprocs": runtime.GOMAXPROCS(0),
			"version":    runtime.Version(),
		},
		"uptime_seconds": time.Since(h.startTime).Seconds(),
	}
}
