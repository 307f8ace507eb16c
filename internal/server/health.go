package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// HealthStatus is the JSON body of both probe endpoints. Service carries the
// configured application name so fleet dashboards can tell ETL deployments
// apart.
type HealthStatus struct {
	Service   string            `json:"service"`
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// LivenessHandler reports whether the process should be restarted. The ETL
// service holds no state between invocations, so this only goes red when the
// process itself is wedged.
func LivenessHandler(service string, checker HealthChecker, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "alive"
		statusCode := http.StatusOK

		if !checker.Liveness() {
			status = "not alive"
			statusCode = http.StatusServiceUnavailable
		}

		writeHealth(w, logger, statusCode, HealthStatus{
			Service:   service,
			Status:    status,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// ReadinessHandler reports whether the trigger endpoint can accept a storage
// notification. An invocation needs the object store and the table loader,
// so readiness reflects both clients, itemized in Checks.
func ReadinessHandler(service string, checker HealthChecker, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ready"
		statusCode := http.StatusOK

		if !checker.Readiness(r.Context()) {
			status = "not ready"
			statusCode = http.StatusServiceUnavailable
		}

		writeHealth(w, logger, statusCode, HealthStatus{
			Service:   service,
			Status:    status,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Checks:    checker.GetStatus(),
		})
	}
}

func writeHealth(w http.ResponseWriter, logger *slog.Logger, statusCode int, body HealthStatus) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to encode health response", "error", err)
	}
}
