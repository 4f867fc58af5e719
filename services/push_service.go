package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MixtapeHQ/mixtape-backend/config"
	"github.com/MixtapeHQ/mixtape-backend/internal/store"
	"github.com/MixtapeHQ/mixtape-backend/logger"
	"github.com/MixtapeHQ/mixtape-backend/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const (
	// errDeviceNotRegistered is the provider's machine-readable code for a
	// permanently invalid device token.
	errDeviceNotRegistered = "DeviceNotRegistered"
)

// PushService delivers composed payloads to all of a user's registered
// devices, respecting provider batch-size limits, and reports outcomes
// without failing on partial delivery problems.
type PushService interface {
	// SendToUser fans a payload out to every device registered for userID.
	// Zero registered devices is not an error. The error return is reserved
	// for programmer error (nil payload) and token registry unavailability
	// before any batch was attempted.
	SendToUser(ctx context.Context, userID string, payload *types.NotificationPayload) (*types.DeliveryReport, error)

	// SendToUsers fans a payload out to several users. A failure for one user
	// never prevents attempts for the others; per-user outcomes are collected
	// into one combined report.
	SendToUsers(ctx context.Context, userIDs []string, payload *types.NotificationPayload) (*types.BulkDeliveryReport, error)

	// Stats returns process-lifetime delivery counters.
	Stats() types.NotificationStats
}

// expoMessage is the provider's per-device message format.
type expoMessage struct {
	To       string                 `json:"to"`
	Title    string                 `json:"title,omitempty"`
	Body     string                 `json:"body,omitempty"`
	Data     map[string]interface{} `json:"data,omitempty"`
	Sound    string                 `json:"sound,omitempty"`
	Priority string                 `json:"priority,omitempty"`
}

// expoResponse is the provider's batch response envelope.
type expoResponse struct {
	Data []expoTicket `json:"data"`
}

// expoTicket is the provider's per-message delivery acknowledgment.
type expoTicket struct {
	Status  string            `json:"status"` // "ok" or "error"
	ID      string            `json:"id,omitempty"`
	Message string            `json:"message,omitempty"`
	Details *expoErrorDetails `json:"details,omitempty"`
}

type expoErrorDetails struct {
	Error string `json:"error,omitempty"`
}

// pushMetrics holds Prometheus counters for the dispatcher.
type pushMetrics struct {
	attempted prometheus.Counter
	sent      prometheus.Counter
	failed    prometheus.Counter
	invalid   prometheus.Counter
	batches   prometheus.Counter
}

var (
	pushMetricsInstance *pushMetrics
	pushMetricsOnce     sync.Once
	pushMetricsRegistry = prometheus.DefaultRegisterer
)

func newPushMetrics() *pushMetrics {
	pushMetricsOnce.Do(func() {
		pushMetricsInstance = &pushMetrics{
			attempted: promauto.With(pushMetricsRegistry).NewCounter(prometheus.CounterOpts{
				Name: "push_deliveries_attempted_total",
				Help: "Total device deliveries submitted to the push provider",
			}),
			sent: promauto.With(pushMetricsRegistry).NewCounter(prometheus.CounterOpts{
				Name: "push_deliveries_sent_total",
				Help: "Total device deliveries acknowledged ok by the provider",
			}),
			failed: promauto.With(pushMetricsRegistry).NewCounter(prometheus.CounterOpts{
				Name: "push_deliveries_failed_total",
				Help: "Total device deliveries that failed at the provider",
			}),
			invalid: promauto.With(pushMetricsRegistry).NewCounter(prometheus.CounterOpts{
				Name: "push_deliveries_invalid_token_total",
				Help: "Total deliveries skipped due to malformed or unregistered tokens",
			}),
			batches: promauto.With(pushMetricsRegistry).NewCounter(prometheus.CounterOpts{
				Name: "push_batches_submitted_total",
				Help: "Total batches submitted to the push provider",
			}),
		}
	})
	return pushMetricsInstance
}

// expoPushService implements PushService against an Expo-style push API.
// One long-lived HTTP client is reused across all calls.
type expoPushService struct {
	pushTokenStore store.PushTokenStore
	httpClient     *http.Client
	apiURL         string
	maxBatchSize   int
	logger         *zap.SugaredLogger
	metrics        *pushMetrics

	fanOuts   atomic.Int64
	attempted atomic.Int64
	sent      atomic.Int64
	failed    atomic.Int64
	invalid   atomic.Int64
}

// NewExpoPushService creates a push notification dispatcher backed by an
// Expo-style provider.
func NewExpoPushService(pts store.PushTokenStore, cfg config.PushConfig) PushService {
	return &expoPushService{
		pushTokenStore: pts,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		apiURL:       cfg.APIURL,
		maxBatchSize: cfg.MaxBatchSize,
		logger:       logger.GetLogger().Named("push-service"),
		metrics:      newPushMetrics(),
	}
}

// SendToUser fans a payload out to every device registered for userID.
func (s *expoPushService) SendToUser(ctx context.Context, userID string, payload *types.NotificationPayload) (*types.DeliveryReport, error) {
	if payload == nil {
		return nil, fmt.Errorf("nil notification payload")
	}

	s.fanOuts.Add(1)

	tokens, err := s.pushTokenStore.ListTokens(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokens for user %s: %w", userID, err)
	}

	report := &types.DeliveryReport{UserID: userID}

	if len(tokens) == 0 {
		// Expected: the user simply has no registered devices.
		s.logger.Debugw("No push tokens registered", "userID", userID)
		return report, nil
	}

	// Drop malformed tokens before they reach the provider.
	valid := make([]*types.PushToken, 0, len(tokens))
	for _, t := range tokens {
		if !isExpoPushToken(t.Token) {
			report.Invalid++
			report.Outcomes = append(report.Outcomes, types.DeliveryOutcome{
				Token:  t.Token,
				Status: types.DeliveryInvalidToken,
				Error:  "malformed token",
			})
			s.invalid.Add(1)
			s.metrics.invalid.Inc()
			continue
		}
		valid = append(valid, t)
	}

	// Submit batches in formation order; a failed batch never aborts siblings.
	for start := 0; start < len(valid); start += s.maxBatchSize {
		end := start + s.maxBatchSize
		if end > len(valid) {
			end = len(valid)
		}
		s.sendBatch(ctx, valid[start:end], payload, report)
	}

	s.logger.Infow("Fan-out complete",
		"userID", userID,
		"category", payload.Category,
		"attempted", report.Attempted,
		"sent", report.Sent,
		"failed", report.Failed,
		"invalid", report.Invalid)

	return report, nil
}

// SendToUsers fans a payload out to several users, collecting per-user
// outcomes into one combined report.
func (s *expoPushService) SendToUsers(ctx context.Context, userIDs []string, payload *types.NotificationPayload) (*types.BulkDeliveryReport, error) {
	if payload == nil {
		return nil, fmt.Errorf("nil notification payload")
	}

	bulk := &types.BulkDeliveryReport{Reports: make([]*types.DeliveryReport, 0, len(userIDs))}

	for _, userID := range userIDs {
		report, err := s.SendToUser(ctx, userID, payload)
		if err != nil {
			// Registry failure for one user must not block the others.
			s.logger.Errorw("Fan-out failed for user", "userID", userID, "error", err)
			report = &types.DeliveryReport{UserID: userID, Error: err.Error()}
		}
		bulk.Attempted += report.Attempted
		bulk.Sent += report.Sent
		bulk.Failed += report.Failed
		bulk.Invalid += report.Invalid
		bulk.Reports = append(bulk.Reports, report)
	}

	return bulk, nil
}

// Stats returns process-lifetime delivery counters.
func (s *expoPushService) Stats() types.NotificationStats {
	return types.NotificationStats{
		FanOuts:   s.fanOuts.Load(),
		Attempted: s.attempted.Load(),
		Sent:      s.sent.Load(),
		Failed:    s.failed.Load(),
		Invalid:   s.invalid.Load(),
	}
}

// sendBatch submits one provider-sized batch and folds the outcome into the
// report. All failure modes are recorded, never returned.
func (s *expoPushService) sendBatch(ctx context.Context, batch []*types.PushToken, payload *types.NotificationPayload, report *types.DeliveryReport) {
	messages := make([]expoMessage, len(batch))
	for i, t := range batch {
		messages[i] = expoMessage{
			To:       t.Token,
			Title:    payload.Title,
			Body:     payload.Body,
			Data:     payload.Data,
			Sound:    "default",
			Priority: "high",
		}
	}

	report.Attempted += len(batch)
	s.attempted.Add(int64(len(batch)))
	s.metrics.attempted.Add(float64(len(batch)))
	s.metrics.batches.Inc()

	tickets, err := s.submit(ctx, messages)
	if err != nil {
		// Transient batch failure: every token in this batch is a provider
		// error, and processing continues with the next batch.
		s.logger.Errorw("Push batch submission failed",
			"batchSize", len(batch),
			"error", err)
		for _, t := range batch {
			report.Failed++
			report.Outcomes = append(report.Outcomes, types.DeliveryOutcome{
				Token:  t.Token,
				Status: types.DeliveryProviderError,
				Error:  err.Error(),
			})
		}
		s.failed.Add(int64(len(batch)))
		s.metrics.failed.Add(float64(len(batch)))
		return
	}

	s.processTickets(ctx, batch, tickets, report)
}

// submit posts one batch to the provider and returns its tickets.
func (s *expoPushService) submit(ctx context.Context, messages []expoMessage) ([]expoTicket, error) {
	body, err := json.Marshal(messages)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal messages: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send push batch: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("push provider returned status %d", resp.StatusCode)
	}

	var parsed expoResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse provider response: %w", err)
	}

	return parsed.Data, nil
}

// processTickets maps provider tickets onto per-token outcomes. Tickets are
// positional: ticket i corresponds to message i of the batch.
func (s *expoPushService) processTickets(ctx context.Context, batch []*types.PushToken, tickets []expoTicket, report *types.DeliveryReport) {
	for i, t := range batch {
		if i >= len(tickets) {
			// Provider returned fewer tickets than messages; treat the
			// unacknowledged remainder as provider errors.
			report.Failed++
			report.Outcomes = append(report.Outcomes, types.DeliveryOutcome{
				Token:  t.Token,
				Status: types.DeliveryProviderError,
				Error:  "no ticket returned",
			})
			s.failed.Add(1)
			s.metrics.failed.Inc()
			continue
		}

		ticket := tickets[i]
		switch {
		case ticket.Status == "ok":
			report.Sent++
			report.Outcomes = append(report.Outcomes, types.DeliveryOutcome{
				Token:  t.Token,
				Status: types.DeliverySent,
			})
			s.sent.Add(1)
			s.metrics.sent.Inc()

		case ticket.Details != nil && ticket.Details.Error == errDeviceNotRegistered:
			report.Invalid++
			report.Outcomes = append(report.Outcomes, types.DeliveryOutcome{
				Token:  t.Token,
				Status: types.DeliveryInvalidToken,
				Error:  ticket.Details.Error,
			})
			s.invalid.Add(1)
			s.metrics.invalid.Inc()

			s.logger.Infow("Removing unregistered token", "token", logger.MaskToken(t.Token))
			if err := s.pushTokenStore.InvalidateToken(ctx, t.Token); err != nil {
				s.logger.Errorw("Failed to invalidate token", "error", err)
			}

		default:
			report.Failed++
			report.Outcomes = append(report.Outcomes, types.DeliveryOutcome{
				Token:  t.Token,
				Status: types.DeliveryProviderError,
				Error:  ticket.Message,
			})
			s.failed.Add(1)
			s.metrics.failed.Inc()

			s.logger.Warnw("Push delivery failed",
				"token", logger.MaskToken(t.Token),
				"status", ticket.Status,
				"message", ticket.Message)
		}
	}
}

// isExpoPushToken reports whether a token matches the provider's format.
// Malformed tokens are dropped before submission.
func isExpoPushToken(token string) bool {
	return (strings.HasPrefix(token, "ExponentPushToken[") ||
		strings.HasPrefix(token, "ExpoPushToken[")) &&
		strings.HasSuffix(token, "]")
}
