package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mikesamcali-dev/memoryconnector-backend/internal/platform/logger"
)

const (
	AlertSeverityInfo     = "info"
	AlertSeverityWarning  = "warning"
	AlertSeverityCritical = "critical"
)

// AlertingService is the outbound notification channel. Alerts are best-effort:
// a delivery failure must never fail the caller's critical path.
type AlertingService interface {
	Alert(ctx context.Context, channel string, severity string, message string, details map[string]any)
}

type alertingService struct {
	log        *logger.Logger
	webhookURL string
	httpClient *http.Client
}

func NewAlertingService(baseLog *logger.Logger) AlertingService {
	return &alertingService{
		log:        baseLog.With("service", "AlertingService"),
		webhookURL: strings.TrimSpace(os.Getenv("SLACK_WEBHOOK_URL")),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *alertingService) Alert(ctx context.Context, channel string, severity string, message string, details map[string]any) {
	if s.webhookURL == "" {
		s.log.Warn("Slack alert (Slack not configured)",
			"channel", channel,
			"severity", severity,
			"message", message,
		)
		return
	}

	payload := map[string]any{
		"channel": channel,
		"text":    fmt.Sprintf("[%s] %s", strings.ToUpper(severity), message),
	}
	if len(details) > 0 {
		payload["details"] = details
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		s.log.Warn("Failed to marshal alert payload", "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(raw))
	if err != nil {
		s.log.Warn("Failed to build alert request", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.log.Warn("Slack alert delivery failed", "error", err, "severity", severity)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		s.log.Warn("Slack alert rejected", "status", resp.StatusCode, "severity", severity)
		return
	}

	s.log.Info("Alert sent", "channel", channel, "severity", severity, "message", message)
}
