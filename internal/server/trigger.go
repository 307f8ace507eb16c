package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	apperrors "github.com/gruporuiz/tripetl/internal/errors"
	"github.com/gruporuiz/tripetl/internal/job"
	"github.com/gruporuiz/tripetl/pkg/event"
)

// Trigger response bodies. The texts are part of the trigger contract.
const (
	responseOK               = "OK"
	responseNotJSON          = "Not JSON"
	responseMissingEventInfo = "Missing file/bucket info"
	responseNotJSONFile      = "Not a JSON file"
	responseUnexpectedBucket = "Unexpected bucket"
	responseJobFailed        = "ETL job failed"
)

// JobRunner runs one ETL invocation for a validated storage event.
type JobRunner interface {
	Run(ctx context.Context, evt *event.StorageEvent) (*job.Result, error)
}

// TriggerMetrics is the subset of metrics the trigger handler reports.
type TriggerMetrics interface {
	IncEventsReceived(outcome string)
	IncInvalidPayloads(reason string)
}

// TriggerHandler turns storage notifications into ETL runs.
//
// Rejections (400) are reserved for payloads that cannot identify an object;
// notifications for irrelevant objects are acknowledged with 200 so the
// platform does not redeliver them.
type TriggerHandler struct {
	rawBucket string
	validator event.Validator
	runner    JobRunner
	logger    *slog.Logger
	metrics   TriggerMetrics
}

// NewTriggerHandler creates the trigger handler. metrics may be nil.
func NewTriggerHandler(
	rawBucket string,
	validator event.Validator,
	runner JobRunner,
	logger *slog.Logger,
	metrics TriggerMetrics,
) *TriggerHandler {
	return &TriggerHandler{
		rawBucket: rawBucket,
		validator: validator,
		runner:    runner,
		logger:    logger,
		metrics:   metrics,
	}
}

// ServeHTTP implements http.Handler.
func (h *TriggerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.reject(w, http.StatusBadRequest, responseNotJSON, "unreadable_body")
		return
	}

	evt, err := event.Parse(body)
	if err != nil {
		h.logger.Warn("received a request that is not JSON, skipping")
		h.reject(w, http.StatusBadRequest, responseNotJSON, "not_json")
		return
	}

	if err := h.validator.Validate(evt); err != nil {
		h.logger.Warn("missing name or bucket in event data", "error", err)
		h.reject(w, http.StatusBadRequest, responseMissingEventInfo, "missing_fields")
		return
	}

	if !evt.IsJSONObject() {
		h.logger.Info("skipping object, not a JSON file", "object", evt.Name)
		h.respond(w, http.StatusOK, responseNotJSONFile, "skipped")
		return
	}

	if evt.Bucket != h.rawBucket {
		h.logger.Info("skipping object from unexpected bucket",
			"object", evt.Name, "bucket", evt.Bucket, "expected", h.rawBucket)
		h.respond(w, http.StatusOK, responseUnexpectedBucket, "skipped")
		return
	}

	result, err := h.runner.Run(r.Context(), evt)
	if err != nil {
		// Retryability tells the platform operator whether redelivering the
		// notification is worth anything.
		h.logger.Error("ETL invocation failed",
			"object", evt.Name,
			"retryable", apperrors.IsRetryable(err),
			"error", err,
		)
		h.respond(w, http.StatusInternalServerError, responseJobFailed, "failed")
		return
	}

	h.logger.Info("ETL invocation succeeded",
		"object", evt.Name,
		"archive_uri", result.ArchiveURI,
		"rows_loaded", result.RowsLoaded,
	)
	h.respond(w, http.StatusOK, responseOK, "processed")
}

func (h *TriggerHandler) reject(w http.ResponseWriter, code int, body, reason string) {
	if h.metrics != nil {
		h.metrics.IncInvalidPayloads(reason)
		h.metrics.IncEventsReceived("rejected")
	}
	h.write(w, code, body)
}

func (h *TriggerHandler) respond(w http.ResponseWriter, code int, body, outcome string) {
	if h.metrics != nil {
		h.metrics.IncEventsReceived(outcome)
	}
	h.write(w, code, body)
}

func (h *TriggerHandler) write(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	if _, err := io.WriteString(w, body); err != nil {
		h.logger.Error("failed to write trigger response", "error", err)
	}
}
