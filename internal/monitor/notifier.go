package monitor

import (
	"context"
	"encoding/json"
	"time"

	"github.com/trendloop/trendops/internal/execshell"
)

const (
	curlFailFlagConstant         = "-fsS"
	curlMaxTimeFlagConstant      = "-m"
	curlMaxTimeSecondsConstant   = "10"
	curlRetryFlagConstant        = "--retry"
	curlRetryCountConstant       = "3"
	curlMethodFlagConstant       = "-X"
	curlPostMethodConstant       = "POST"
	curlHeaderFlagConstant       = "-H"
	curlJSONContentTypeConstant  = "Content-Type: application/json"
	curlDataFlagConstant         = "-d"
	heartbeatFailurePathConstant = "/fail"
)

// CurlExecutor is the subset of execshell.ShellExecutor used for notifications.
type CurlExecutor interface {
	ExecuteCurl(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// WebhookNotifier delivers heartbeat pings and alert payloads through curl.
type WebhookNotifier struct {
	executor CurlExecutor
}

// NewWebhookNotifier constructs a notifier over the provided executor.
func NewWebhookNotifier(executor CurlExecutor) (*WebhookNotifier, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &WebhookNotifier{executor: executor}, nil
}

// Ping signals a healthy run to the heartbeat endpoint; unhealthy runs signal
// the endpoint's failure path instead.
func (notifier *WebhookNotifier) Ping(executionContext context.Context, heartbeatURL string, healthy bool) error {
	targetURL := heartbeatURL
	if !healthy {
		targetURL += heartbeatFailurePathConstant
	}

	_, pingError := notifier.executor.ExecuteCurl(executionContext, execshell.CommandDetails{
		Arguments: []string{
			curlFailFlagConstant,
			curlMaxTimeFlagConstant, curlMaxTimeSecondsConstant,
			curlRetryFlagConstant, curlRetryCountConstant,
			targetURL,
		},
	})

	return pingError
}

// alertPayload is the JSON body posted to the alert webhook.
type alertPayload struct {
	Timestamp time.Time `json:"timestamp"`
	Host      string    `json:"host"`
	Alerts    []string  `json:"alerts"`
}

// SendAlerts posts the alert list to the webhook endpoint.
func (notifier *WebhookNotifier) SendAlerts(executionContext context.Context, webhookURL string, hostName string, occurredAt time.Time, alerts []string) error {
	payloadBytes, encodingError := json.Marshal(alertPayload{Timestamp: occurredAt, Host: hostName, Alerts: alerts})
	if encodingError != nil {
		return encodingError
	}

	_, deliveryError := notifier.executor.ExecuteCurl(executionContext, execshell.CommandDetails{
		Arguments: []string{
			curlFailFlagConstant,
			curlMaxTimeFlagConstant, curlMaxTimeSecondsConstant,
			curlMethodFlagConstant, curlPostMethodConstant,
			curlHeaderFlagConstant, curlJSONContentTypeConstant,
			curlDataFlagConstant, string(payloadBytes),
			webhookURL,
		},
	})

	return deliveryError
}
