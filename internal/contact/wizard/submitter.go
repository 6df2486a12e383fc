package wizard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	commonhttp "devstudio-site/internal/common/http"
	"devstudio-site/internal/contact/idempotency"
	"devstudio-site/internal/models"
)

// Submitter forwards a completed inquiry under an idempotency key. A non-nil
// error means the relay could not be reached or answered with something
// unreadable; a relay that refused the inquiry is reported through the
// result.
type Submitter interface {
	Submit(ctx context.Context, inq models.Inquiry, idempotencyKey string) (*models.SubmissionResult, error)
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, inq models.Inquiry, idempotencyKey string) (*models.SubmissionResult, error)

func (f SubmitterFunc) Submit(ctx context.Context, inq models.Inquiry, idempotencyKey string) (*models.SubmissionResult, error) {
	return f(ctx, inq, idempotencyKey)
}

// HTTPSubmitter posts the inquiry to a relay endpoint as JSON.
type HTTPSubmitter struct {
	URL     string
	Client  *commonhttp.Client
	Headers map[string]string
}

func NewHTTPSubmitter(url string, client *commonhttp.Client) *HTTPSubmitter {
	return &HTTPSubmitter{URL: url, Client: client}
}

// Submit sends idempotencyKey in the Idempotency-Key header. A 409 from the
// relay is reported as a duplicate.
func (s *HTTPSubmitter) Submit(ctx context.Context, inq models.Inquiry, idempotencyKey string) (*models.SubmissionResult, error) {
	headers := make(map[string]string, len(s.Headers)+1)
	for k, v := range s.Headers {
		headers[k] = v
	}
	if idempotencyKey != "" {
		headers[idempotency.HeaderName] = idempotencyKey
	}

	resp, err := s.Client.PostJSON(ctx, s.URL, headers, inq)
	if err != nil {
		return nil, err
	}

	var result models.SubmissionResult
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("decode relay response (status %d): %w", resp.StatusCode, err)
	}
	if !resp.OK() {
		result.Success = false
	}
	if resp.StatusCode == http.StatusConflict {
		result.Duplicate = true
	}
	return &result, nil
}
