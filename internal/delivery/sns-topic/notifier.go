// Package snstopic publishes inquiries to an SNS topic. Subscribers (mail,
// chat, ticketing) fan them out.
package snstopic

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/google/uuid"

	"devstudio-site/internal/common/config"
	"devstudio-site/internal/common/logger"
	"devstudio-site/internal/delivery"
	"devstudio-site/internal/models"
)

const ChannelName = config.ChannelSNS

// EventType is set as a message attribute so subscribers can filter.
const EventType = "contact.inquiry.submitted"

// SNSService is the subset of the SNS client used here.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Event is the published message body.
type Event struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	SubmittedAt time.Time      `json:"submittedAt"`
	Inquiry     models.Inquiry `json:"inquiry"`
}

type Notifier struct {
	cfg    config.SNSConfig
	client SNSService
	logger logger.Logger
	now    func() time.Time
}

func New(cfg config.ContactConfig, client SNSService, log logger.Logger) *Notifier {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Notifier{
		cfg:    cfg.SNS,
		client: client,
		logger: log.With(map[string]interface{}{"channel": ChannelName}),
		now:    time.Now,
	}
}

func (n *Notifier) Name() string { return ChannelName }

func (n *Notifier) Validate() error {
	if n.client == nil {
		return (&delivery.Unconfigured{Channel: ChannelName}).Validate()
	}
	return delivery.MissingSettings(ChannelName,
		"region", n.cfg.Region,
		"topic_arn", n.cfg.TopicARN,
	)
}

func (n *Notifier) Submit(ctx context.Context, inq models.Inquiry) error {
	event := Event{
		ID:          uuid.NewString(),
		Type:        EventType,
		SubmittedAt: n.now().UTC(),
		Inquiry:     inq,
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	out, err := n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.cfg.TopicARN),
		Subject:  aws.String(truncate(delivery.HeaderSafe("New project inquiry from "+inq.Name), 100)),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"eventType": {DataType: aws.String("String"), StringValue: aws.String(EventType)},
			"budgetRange": {DataType: aws.String("String"), StringValue: aws.String(inq.BudgetRange)},
		},
	})
	if err != nil {
		n.logger.Error("Failed to publish inquiry", map[string]interface{}{"error": err, "eventId": event.ID})
		return fmt.Errorf("publish to %s: %w", n.cfg.TopicARN, err)
	}

	n.logger.Info("Inquiry published", map[string]interface{}{
		"eventId":   event.ID,
		"messageId": aws.ToString(out.MessageId),
	})
	return nil
}

// truncate cuts s to at most max runes. SNS subjects are limited to 100.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
