// Package factory builds the delivery.Notifier selected by contact.channel.
package factory

import (
	"context"
	"fmt"
	"strings"

	"devstudio-site/internal/common/aws"
	"devstudio-site/internal/common/config"
	"devstudio-site/internal/common/logger"
	"devstudio-site/internal/delivery"
	formrelay "devstudio-site/internal/delivery/form-relay"
	sesmail "devstudio-site/internal/delivery/ses-mail"
	smtpmail "devstudio-site/internal/delivery/smtp-mail"
	snstopic "devstudio-site/internal/delivery/sns-topic"
)

// New returns the notifier for cfg.Channel. It never fails: a channel whose
// client cannot be built is returned as delivery.Unconfigured so the site
// still serves and the relay answers with a configuration error.
func New(ctx context.Context, cfg config.ContactConfig, log logger.Logger) delivery.Notifier {
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	channel := strings.ToLower(strings.TrimSpace(cfg.Channel))
	if channel == "" {
		channel = config.ChannelSMTP
	}

	switch channel {
	case config.ChannelSMTP:
		return smtpmail.New(cfg, log)

	case config.ChannelSES:
		client, err := aws.NewSESClient(ctx, cfg.SES.Region)
		if err != nil {
			log.Warn("SES client unavailable", map[string]interface{}{"error": err})
			return &delivery.Unconfigured{Channel: channel, Reason: err}
		}
		return sesmail.New(cfg, client, log)

	case config.ChannelSNS:
		client, err := aws.NewSNSClient(ctx, cfg.SNS.Region)
		if err != nil {
			log.Warn("SNS client unavailable", map[string]interface{}{"error": err})
			return &delivery.Unconfigured{Channel: channel, Reason: err}
		}
		return snstopic.New(cfg, client, log)

	case config.ChannelRelay:
		return formrelay.New(cfg, log)

	default:
		return &delivery.Unconfigured{
			Channel: channel,
			Reason:  fmt.Errorf("unsupported channel %q", cfg.Channel),
		}
	}
}
