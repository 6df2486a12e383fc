// Package formrelay posts inquiries to a hosted form-relay endpoint.
package formrelay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"devstudio-site/internal/common/config"
	commonhttp "devstudio-site/internal/common/http"
	"devstudio-site/internal/common/logger"
	"devstudio-site/internal/delivery"
	"devstudio-site/internal/models"
)

const ChannelName = config.ChannelRelay

// Payload is the body posted to the relay. The subject and reply-to fields
// are understood by the common hosted form services.
type Payload struct {
	models.Inquiry
	Subject string `json:"_subject"`
	ReplyTo string `json:"_replyto"`
}

// relayResponse is the part of the relay's answer that is inspected.
type relayResponse struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

type Notifier struct {
	cfg    config.FormRelayConfig
	client *commonhttp.Client
	logger logger.Logger
}

// Option customizes a Notifier.
type Option func(*Notifier)

// WithClient replaces the HTTP client.
func WithClient(c *commonhttp.Client) Option {
	return func(n *Notifier) { n.client = c }
}

func New(cfg config.ContactConfig, log logger.Logger, opts ...Option) *Notifier {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	n := &Notifier{
		cfg:    cfg.Relay,
		logger: log.With(map[string]interface{}{"channel": ChannelName}),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.client == nil {
		n.client = commonhttp.NewClient(config.GetDuration(cfg.Relay.Timeout))
	}
	return n
}

func (n *Notifier) Name() string { return ChannelName }

// Validate requires an absolute http(s) endpoint.
func (n *Notifier) Validate() error {
	if err := delivery.MissingSettings(ChannelName, "url", n.cfg.URL); err != nil {
		return err
	}
	u, err := url.Parse(n.cfg.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %s url %q is not an absolute http(s) URL", delivery.ErrNotConfigured, ChannelName, n.cfg.URL)
	}
	return nil
}

// Submit posts the inquiry once. A 2xx answer whose JSON body does not
// report success:false is the only success signal.
func (n *Notifier) Submit(ctx context.Context, inq models.Inquiry) error {
	headers := map[string]string{}
	if n.cfg.Token != "" {
		headers["Authorization"] = "Bearer " + n.cfg.Token
	}

	payload := Payload{
		Inquiry: inq,
		Subject: delivery.HeaderSafe("New project inquiry from " + inq.Name),
		ReplyTo: inq.Email,
	}

	resp, err := n.client.PostJSON(ctx, n.cfg.URL, headers, payload)
	if err != nil {
		n.logger.Error("Form relay request failed", map[string]interface{}{"error": err})
		return fmt.Errorf("form relay: %w", err)
	}

	if !resp.OK() {
		n.logger.Error("Form relay rejected inquiry", map[string]interface{}{
			"status": resp.StatusCode,
			"body":   snippet(resp.Body),
		})
		return fmt.Errorf("form relay returned status %d", resp.StatusCode)
	}

	var parsed relayResponse
	if err := json.Unmarshal(resp.Body, &parsed); err == nil && parsed.Success != nil && !*parsed.Success {
		n.logger.Error("Form relay reported failure", map[string]interface{}{
			"status":  resp.StatusCode,
			"message": parsed.Message,
		})
		if parsed.Message != "" {
			return fmt.Errorf("form relay reported failure: %s", parsed.Message)
		}
		return fmt.Errorf("form relay reported failure")
	}

	n.logger.Info("Inquiry relayed", map[string]interface{}{"status": resp.StatusCode})
	return nil
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		return s[:200]
	}
	return s
}
