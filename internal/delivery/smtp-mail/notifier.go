// Package smtpmail forwards inquiries as two mails over authenticated SMTP.
package smtpmail

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"strings"
	"time"

	"github.com/google/uuid"

	"devstudio-site/internal/common/config"
	"devstudio-site/internal/common/logger"
	"devstudio-site/internal/delivery"
	"devstudio-site/internal/models"
)

const ChannelName = config.ChannelSMTP

type Notifier struct {
	cfg       config.SMTPConfig
	receiver  string
	transport Transport
	logger    logger.Logger
	now       func() time.Time
}

// Option customizes a Notifier.
type Option func(*Notifier)

// WithTransport replaces the network transport, mainly for tests.
func WithTransport(t Transport) Option {
	return func(n *Notifier) { n.transport = t }
}

func New(cfg config.ContactConfig, log logger.Logger, opts ...Option) *Notifier {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	n := &Notifier{
		cfg:      cfg.SMTP,
		receiver: cfg.Receiver,
		logger:   log.With(map[string]interface{}{"channel": ChannelName}),
		now:      time.Now,
	}
	if n.receiver == "" {
		n.receiver = cfg.SMTP.Username
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.transport == nil {
		n.transport = NewNetTransport(cfg.SMTP)
	}
	return n
}

func (n *Notifier) Name() string { return ChannelName }

// Validate requires the sending account and a receiver.
func (n *Notifier) Validate() error {
	return delivery.MissingSettings(ChannelName,
		"username", n.cfg.Username,
		"password", n.cfg.Password,
		"receiver", n.receiver,
		"host", n.cfg.Host,
	)
}

// Submit sends the notification and the acknowledgment concurrently. It
// fails if either mail fails.
func (n *Notifier) Submit(ctx context.Context, inq models.Inquiry) error {
	msgs := delivery.Compose(inq, n.cfg.Username, n.receiver)

	err := delivery.SendAll(ctx, ChannelName, delivery.MailSenderFunc(n.send), msgs)
	if err != nil {
		n.logger.Error("Contact mail error", map[string]interface{}{
			"error": err,
			"host":  n.cfg.Host,
		})
		return err
	}

	n.logger.Info("Contact mails sent", map[string]interface{}{
		"host":     n.cfg.Host,
		"receiver": n.receiver,
	})
	return nil
}

func (n *Notifier) send(ctx context.Context, msg delivery.Message) error {
	raw := n.buildMessage(msg)
	return n.transport.Send(ctx, msg.From.Address, msg.Recipients(), raw)
}

// buildMessage renders msg as a text/plain RFC 5322 message.
func (n *Notifier) buildMessage(msg delivery.Message) []byte {
	var builder bytes.Buffer

	builder.WriteString(fmt.Sprintf("From: %s\r\n", msg.From.String()))
	builder.WriteString(fmt.Sprintf("To: %s\r\n", msg.To.String()))
	if msg.ReplyTo != nil {
		builder.WriteString(fmt.Sprintf("Reply-To: %s\r\n", msg.ReplyTo.String()))
	}
	builder.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("utf-8", delivery.HeaderSafe(msg.Subject))))
	builder.WriteString(fmt.Sprintf("Date: %s\r\n", n.now().UTC().Format(time.RFC1123Z)))
	builder.WriteString(fmt.Sprintf("Message-ID: <%s@%s>\r\n", uuid.NewString(), n.cfg.Host))
	builder.WriteString("MIME-Version: 1.0\r\n")
	builder.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	builder.WriteString("Content-Transfer-Encoding: quoted-printable\r\n")
	builder.WriteString("\r\n")

	qp := quotedprintable.NewWriter(&builder)
	_, _ = qp.Write([]byte(strings.ReplaceAll(msg.Text, "\n", "\r\n")))
	_ = qp.Close()

	return builder.Bytes()
}
