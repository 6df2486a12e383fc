// Package delivery defines how an accepted inquiry leaves the process.
//
// A Notifier forwards one inquiry to one external channel. Implementations
// live in the sub-packages (smtp-mail, ses-mail, sns-topic, form-relay) and
// are chosen at start-up by the factory package.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"devstudio-site/internal/models"
)

// ErrNotConfigured is wrapped by Validate when the channel lacks settings.
var ErrNotConfigured = errors.New("delivery channel is not configured")

// Notifier forwards an inquiry. Submit is only called after Validate
// returned nil and must report success only when the channel accepted the
// whole inquiry.
type Notifier interface {
	Submit(ctx context.Context, inquiry models.Inquiry) error
	Validate() error
	Name() string
}

// MissingSettings returns ErrNotConfigured naming the empty settings, or nil.
// settings alternates name, value.
func MissingSettings(channel string, settings ...string) error {
	var missing []string
	for i := 0; i+1 < len(settings); i += 2 {
		if strings.TrimSpace(settings[i+1]) == "" {
			missing = append(missing, settings[i])
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s missing %s", ErrNotConfigured, channel, strings.Join(missing, ", "))
}

// Unconfigured is a Notifier for a channel whose client could not be built.
// Validate always fails so the relay answers with a configuration error.
type Unconfigured struct {
	Channel string
	Reason  error
}

func (u *Unconfigured) Name() string { return u.Channel }

func (u *Unconfigured) Validate() error {
	if u.Reason == nil {
		return fmt.Errorf("%w: %s", ErrNotConfigured, u.Channel)
	}
	return fmt.Errorf("%w: %s: %v", ErrNotConfigured, u.Channel, u.Reason)
}

func (u *Unconfigured) Submit(context.Context, models.Inquiry) error {
	return u.Validate()
}
