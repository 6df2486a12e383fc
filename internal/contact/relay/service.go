package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"devstudio-site/internal/common/errors"
	"devstudio-site/internal/common/logger"
	"devstudio-site/internal/common/metrics"
	"devstudio-site/internal/common/observability"
	"devstudio-site/internal/contact/idempotency"
	"devstudio-site/internal/delivery"
	"devstudio-site/internal/models"
)

type Service struct {
	config   *Config
	notifier delivery.Notifier
	guard    *idempotency.Guard
	obs      *observability.Observability
	logger   logger.Logger
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	if config == nil {
		config = DefaultConfig()
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	guard := deps.Guard
	if !config.Idempotency.Enabled {
		guard = nil
	}
	return &Service{
		config:   config,
		notifier: deps.Notifier,
		guard:    guard,
		obs:      deps.Observability,
		logger:   log,
	}
}

// Channel names the configured delivery channel.
func (s *Service) Channel() string {
	if s.notifier == nil {
		return "none"
	}
	return s.notifier.Name()
}

// Execute validates raw and forwards it. Every failure is a *errors.StandardError;
// the notifier is only reached once the payload is valid and the channel is
// configured.
func (s *Service) Execute(ctx context.Context, raw []byte, idempotencyKey string) (*models.SubmissionResult, error) {
	if err := payloadValidator.Validate(raw); err != nil {
		return nil, errors.NewInvalidPayloadError(err)
	}

	var inq models.Inquiry
	if err := json.Unmarshal(raw, &inq); err != nil {
		return nil, errors.NewInvalidPayloadError(err)
	}
	inq = inq.Normalize()

	if err := validateInquiry(inq); err != nil {
		return nil, err
	}

	if s.notifier == nil {
		return nil, errors.NewServiceNotConfiguredError("none", fmt.Errorf("no notifier"))
	}
	if err := s.notifier.Validate(); err != nil {
		return nil, errors.NewServiceNotConfiguredError(s.notifier.Name(), err)
	}

	claimed, err := s.claim(ctx, idempotencyKey)
	if err != nil {
		return nil, err
	}

	if err := s.deliver(ctx, inq); err != nil {
		if claimed {
			s.release(idempotencyKey)
		}
		return nil, errors.NewUpstreamError(s.notifier.Name(), err)
	}

	return &models.SubmissionResult{Success: true}, nil
}

// SubmitInquiry runs inq through Execute under idempotencyKey and folds any
// failure into the result, the way a client of the HTTP endpoint would see
// it. A key that was already claimed is reported as a duplicate.
func (s *Service) SubmitInquiry(ctx context.Context, inq models.Inquiry, idempotencyKey string) *models.SubmissionResult {
	raw, err := json.Marshal(inq)
	if err != nil {
		return &models.SubmissionResult{Success: false, Message: errors.MsgInternal}
	}
	result, err := s.Execute(ctx, raw, idempotencyKey)
	if err != nil {
		stdErr := errors.Normalize(err)
		s.logger.Warn("Inquiry not forwarded", map[string]interface{}{
			"errorCode":     string(stdErr.Code),
			"errorCategory": errors.GetErrorCategory(stdErr.Code),
			"details":       stdErr.Details,
		})
		s.record(ctx, string(stdErr.Code))
		return &models.SubmissionResult{
			Success:   false,
			Message:   stdErr.Message,
			Duplicate: stdErr.Code == errors.ErrCodeDuplicateSubmission,
		}
	}
	s.record(ctx, OutcomeSuccess)
	return result
}

// claim reports whether a key was stored. Store failures are logged and the
// submission proceeds unguarded.
func (s *Service) claim(ctx context.Context, key string) (bool, error) {
	if s.guard == nil || key == "" {
		return false, nil
	}
	ok, err := s.guard.Claim(ctx, key)
	if err != nil {
		s.logger.Warn("Idempotency check skipped", map[string]interface{}{"error": err})
		return false, nil
	}
	if !ok {
		return false, errors.NewDuplicateSubmissionError(key)
	}
	return true, nil
}

func (s *Service) release(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.guard.Release(ctx, key); err != nil {
		s.logger.Warn("Failed to release idempotency key", map[string]interface{}{"error": err})
	}
}

func (s *Service) deliver(ctx context.Context, inq models.Inquiry) error {
	channel := s.notifier.Name()
	submissionID := uuid.NewString()

	ctx, span := s.obs.StartSpan(ctx, "contact.deliver",
		attribute.String("contact.channel", channel),
		attribute.String("contact.submission_id", submissionID),
	)
	defer span.End()

	metrics.ContactDeliveriesActive.WithLabelValues(channel).Inc()
	defer metrics.ContactDeliveriesActive.WithLabelValues(channel).Dec()

	s.logger.Info("Forwarding inquiry", map[string]interface{}{
		"channel":      channel,
		"submissionId": submissionID,
		"budgetRange":  inq.BudgetRange,
	})

	start := time.Now()
	err := s.notifier.Submit(ctx, inq)
	duration := time.Since(start)

	status := "success"
	if err != nil {
		status = "failed"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	metrics.ContactDeliveryDuration.WithLabelValues(channel, status).Observe(duration.Seconds())
	s.obs.RecordDeliveryDuration(ctx, duration, channel, status)

	if err != nil {
		s.logger.Error("Contact delivery failed", map[string]interface{}{
			"channel":      channel,
			"submissionId": submissionID,
			"durationMs":   duration.Milliseconds(),
			"error":        err,
		})
		return err
	}

	s.logger.Info("Inquiry forwarded", map[string]interface{}{
		"channel":      channel,
		"submissionId": submissionID,
		"durationMs":   duration.Milliseconds(),
	})
	return nil
}

// record counts one submission outcome.
func (s *Service) record(ctx context.Context, outcome string) {
	channel := s.Channel()
	metrics.ContactSubmissions.WithLabelValues(channel, outcome).Inc()
	s.obs.RecordSubmission(ctx, channel, outcome)
}
