package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/timesync-io/timesync/internal/config"
	"github.com/timesync-io/timesync/internal/engine"
	"github.com/timesync-io/timesync/pkg/logger"
)

// Handlers contains HTTP request handlers
type Handlers struct {
	config   *config.Config
	registry *prometheus.Registry
	engine   *engine.Engine
}

// NewHandlers creates a new handlers instance
func NewHandlers(cfg *config.Config, registry *prometheus.Registry, e *engine.Engine) *Handlers {
	return &Handlers{
		config:   cfg,
		registry: registry,
		engine:   e,
	}
}

// MetricsHandler serves Prometheus metrics
func (h *Handlers) MetricsHandler(w http.ResponseWriter, r *http.Request) {
	handler := promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{
		ErrorLog:      &loggerAdapter{},
		ErrorHandling: promhttp.ContinueOnError,
	})

	handler.ServeHTTP(w, r)
}

// HealthHandler returns health status. The daemon is healthy as soon
// as it serves requests; the sync state tells whether the clock is
// usable yet.
func (h *Handlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	response := `{"status":"healthy","service":"timesyncd","sync_state":"` + h.engine.State().String() + `"}`
	w.Write([]byte(response))
}

// TimeResponse is the payload of the /time endpoint. Times are
// float64 milliseconds since the Unix epoch.
type TimeResponse struct {
	Now            float64 `json:"now"`
	PerformanceNow float64 `json:"performance_now"`
	Offset         float64 `json:"offset"`
	State          string  `json:"state"`
}

// TimeHandler serves the corrected clock readings
func (h *Handlers) TimeHandler(w http.ResponseWriter, r *http.Request) {
	resp := TimeResponse{
		Now:            h.engine.Now(),
		PerformanceNow: h.engine.PerformanceNow(),
		Offset:         h.engine.Offset(),
		State:          h.engine.State().String(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error("server", "Failed to encode time response", err)
	}
}

// IndexHandler serves the index page
func (h *Handlers) IndexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)

	html := `<!DOCTYPE html>
<html>
<head>
    <title>Timesync Daemon</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; }
        h1 { color: #333; }
        ul { list-style-type: none; padding: 0; }
        li { margin: 10px 0; }
        a { color: #0066cc; text-decoration: none; }
        a:hover { text-decoration: underline; }
        .info { background-color: #f0f0f0; padding: 15px; border-radius: 5px; }
    </style>
</head>
<body>
    <h1>Timesync Daemon</h1>
    <div class="info">
        <h2>Available Endpoints:</h2>
        <ul>
            <li><a href="/metrics">/metrics</a> - Prometheus metrics</li>
            <li><a href="/health">/health</a> - Health check</li>
            <li><a href="/time">/time</a> - Corrected clock readings</li>
        </ul>
        <h2>Configuration:</h2>
        <ul>
            <li>Transport: ` + h.config.Transport.Kind + `</li>
            <li>Sync interval: ` + h.config.Engine.SyncInterval.String() + `</li>
            <li>History size: ` + strconv.Itoa(h.config.Engine.HistorySize) + `</li>
            <li>Drift warning threshold: ` + h.config.Engine.DriftWarningThreshold.String() + `</li>
        </ul>
    </div>
</body>
</html>`

	w.Write([]byte(html))
}

// loggerAdapter adapts pkg/logger to promhttp logger interface
type loggerAdapter struct{}

func (l *loggerAdapter) Println(v ...interface{}) {
	msg := ""
	for i, val := range v {
		if i > 0 {
			msg += " "
		}
		if s, ok := val.(string); ok {
			msg += s
		} else if err, ok := val.(error); ok {
			msg += err.Error()
		}
	}
	logger.Error("promhttp", msg, nil)
}
