package labd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/GoSim-25-26J-441/knapsack-lab/internal/report"
	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/logger"
	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/models"
)

// NotificationPayload is posted to an experiment's callback URL when it
// reaches a terminal status.
type NotificationPayload struct {
	ExperimentID    string                  `json:"experiment_id"`
	Kind            models.ExperimentKind   `json:"kind"`
	Status          models.ExperimentStatus `json:"status"`
	CreatedAtUnixMs int64                   `json:"created_at_unix_ms"`
	StartedAtUnixMs int64                   `json:"started_at_unix_ms,omitempty"`
	EndedAtUnixMs   int64                   `json:"ended_at_unix_ms,omitempty"`
	Error           string                  `json:"error,omitempty"`
	BestMethod      *report.Best            `json:"best_method,omitempty"`
	Timestamp       int64                   `json:"timestamp"`
}

// Notifier delivers completion callbacks with retries.
type Notifier struct {
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
}

func NewNotifier() *Notifier {
	return &Notifier{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		maxRetries: 3,
		baseDelay:  time.Second,
	}
}

// Notify sends the record's payload in the background. {id} in the
// callback URL is replaced by the experiment ID.
func (n *Notifier) Notify(rec Record) {
	if rec.CallbackURL == "" {
		return
	}
	url := strings.ReplaceAll(rec.CallbackURL, "{id}", rec.ID)
	go n.send(context.Background(), url, newPayload(rec))
}

func newPayload(rec Record) NotificationPayload {
	p := NotificationPayload{
		ExperimentID:    rec.ID,
		Kind:            rec.Kind,
		Status:          rec.Status,
		CreatedAtUnixMs: rec.CreatedAtUnixMs,
		StartedAtUnixMs: rec.StartedAtUnixMs,
		EndedAtUnixMs:   rec.EndedAtUnixMs,
		Error:           rec.Error,
		Timestamp:       time.Now().UTC().UnixMilli(),
	}
	if rec.Results != nil {
		best := report.BestMethod(reportInput(rec.Problem, rec.Repetitions, *rec.Results))
		if best.Type != "unknown" {
			p.BestMethod = &best
		}
	}
	return p
}

func (n *Notifier) send(ctx context.Context, url string, payload NotificationPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		logger.Error("failed to marshal notification payload", "experiment_id", payload.ExperimentID, "error", err)
		return err
	}

	var lastErr error
	for attempt := 0; attempt <= n.maxRetries; attempt++ {
		if attempt > 0 {
			delay := n.baseDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create notification request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", "knapsack-lab/"+report.Version)

		resp, err := n.httpClient.Do(req)
		if err != nil {
			lastErr = err
			logger.Warn("notification attempt failed",
				"experiment_id", payload.ExperimentID, "attempt", attempt+1, "error", err)
			continue
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			logger.Info("notification sent",
				"experiment_id", payload.ExperimentID, "status", payload.Status, "status_code", resp.StatusCode)
			return nil
		}
		lastErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		logger.Warn("notification returned non-2xx status",
			"experiment_id", payload.ExperimentID, "status_code", resp.StatusCode, "attempt", attempt+1)
	}

	logger.Error("failed to send notification after retries",
		"experiment_id", payload.ExperimentID, "max_retries", n.maxRetries, "last_error", lastErr)
	return lastErr
}
