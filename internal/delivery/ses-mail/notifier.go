// Package sesmail forwards inquiries as two mails through Amazon SES.
package sesmail

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"devstudio-site/internal/common/config"
	"devstudio-site/internal/common/logger"
	"devstudio-site/internal/delivery"
	"devstudio-site/internal/models"
)

const ChannelName = config.ChannelSES

// SESService is the subset of the SES client used here.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type Notifier struct {
	cfg      config.SESConfig
	receiver string
	client   SESService
	logger   logger.Logger
}

func New(cfg config.ContactConfig, client SESService, log logger.Logger) *Notifier {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	receiver := cfg.Receiver
	if receiver == "" {
		receiver = cfg.SES.FromEmail
	}
	return &Notifier{
		cfg:      cfg.SES,
		receiver: receiver,
		client:   client,
		logger:   log.With(map[string]interface{}{"channel": ChannelName}),
	}
}

func (n *Notifier) Name() string { return ChannelName }

func (n *Notifier) Validate() error {
	if n.client == nil {
		return (&delivery.Unconfigured{Channel: ChannelName}).Validate()
	}
	return delivery.MissingSettings(ChannelName,
		"region", n.cfg.Region,
		"from_email", n.cfg.FromEmail,
		"receiver", n.receiver,
	)
}

// Submit sends both mails concurrently; either failure fails the inquiry.
func (n *Notifier) Submit(ctx context.Context, inq models.Inquiry) error {
	msgs := delivery.Compose(inq, n.cfg.FromEmail, n.receiver)

	if err := delivery.SendAll(ctx, ChannelName, delivery.MailSenderFunc(n.send), msgs); err != nil {
		n.logger.Error("Contact mail error", map[string]interface{}{"error": err})
		return err
	}

	n.logger.Info("Contact mails sent", map[string]interface{}{"receiver": n.receiver})
	return nil
}

func (n *Notifier) send(ctx context.Context, msg delivery.Message) error {
	input := &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{msg.To.String()},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(msg.Text), Charset: aws.String("UTF-8")},
				Html: &types.Content{Data: aws.String(msg.HTML), Charset: aws.String("UTF-8")},
			},
		},
		Source: aws.String(msg.From.String()),
	}
	if msg.ReplyTo != nil {
		input.ReplyToAddresses = []string{msg.ReplyTo.String()}
	}

	out, err := n.client.SendEmail(ctx, input)
	if err != nil {
		return err
	}
	n.logger.Debug("SES accepted mail", map[string]interface{}{
		"kind":      msg.Kind,
		"messageId": aws.ToString(out.MessageId),
	})
	return nil
}
