package smtpmail

import (
	"context"
	"errors"
	"io"
	"mime"
	"mime/quotedprintable"
	"net/mail"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"devstudio-site/internal/common/config"
	"devstudio-site/internal/common/logger"
	"devstudio-site/internal/delivery"
	"devstudio-site/internal/models"
)

// ==========================
// Mock Transport
// ==========================

type MockTransport struct {
	mock.Mock
	mu   sync.Mutex
	sent map[string][]byte
}

func (m *MockTransport) Send(ctx context.Context, from string, to []string, msg []byte) error {
	args := m.Called(ctx, from, to, msg)
	m.mu.Lock()
	if m.sent == nil {
		m.sent = map[string][]byte{}
	}
	m.sent[to[0]] = msg
	m.mu.Unlock()
	return args.Error(0)
}

func (m *MockTransport) message(t *testing.T, to string) *mail.Message {
	t.Helper()
	m.mu.Lock()
	raw, ok := m.sent[to]
	m.mu.Unlock()
	require.True(t, ok, "no mail sent to %s", to)
	parsed, err := mail.ReadMessage(strings.NewReader(string(raw)))
	require.NoError(t, err)
	return parsed
}

// ==========================
// Test Helpers
// ==========================

func createTestConfig() config.ContactConfig {
	return config.ContactConfig{
		Channel:  config.ChannelSMTP,
		Receiver: "sales@devstudio.test",
		SMTP: config.SMTPConfig{
			Host:     "smtp.devstudio.test",
			Port:     465,
			Username: "studio@devstudio.test",
			Password: "secret",
			Secure:   true,
		},
	}
}

func createTestInquiry() models.Inquiry {
	return models.Inquiry{
		Name:         "Ada Lovelace",
		Email:        "ada@example.com",
		Company:      "Analytical Engines",
		BudgetRange:  "$10k - $25k",
		ProjectBrief: "Rebuild our marketing site.",
	}
}

func readBody(t *testing.T, msg *mail.Message) string {
	t.Helper()
	body, err := io.ReadAll(quotedprintable.NewReader(msg.Body))
	require.NoError(t, err)
	return string(body)
}

// ==========================
// Tests
// ==========================

func TestNotifier_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.ContactConfig)
		wantErr bool
	}{
		{"complete", func(c *config.ContactConfig) {}, false},
		{"missing username", func(c *config.ContactConfig) { c.SMTP.Username = ""; c.Receiver = "x@y.z" }, true},
		{"missing password", func(c *config.ContactConfig) { c.SMTP.Password = "" }, true},
		{"receiver falls back to username", func(c *config.ContactConfig) { c.Receiver = "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := createTestConfig()
			tt.mutate(&cfg)
			err := New(cfg, logger.NewTestLogger(t), WithTransport(&MockTransport{})).Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, delivery.ErrNotConfigured)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNotifier_SubmitSendsBothMails(t *testing.T) {
	transport := &MockTransport{}
	transport.On("Send", mock.Anything, "studio@devstudio.test", mock.Anything, mock.Anything).Return(nil).Twice()

	n := New(createTestConfig(), logger.NewTestLogger(t), WithTransport(transport))
	require.NoError(t, n.Submit(context.Background(), createTestInquiry()))
	transport.AssertExpectations(t)

	notification := transport.message(t, "sales@devstudio.test")
	assert.Equal(t, "New project inquiry from Ada Lovelace", decodeHeader(t, notification.Header.Get("Subject")))
	assert.Contains(t, notification.Header.Get("Reply-To"), "ada@example.com")
	assert.Contains(t, notification.Header.Get("From"), "Dev Studio Contact")
	assert.Contains(t, readBody(t, notification), "Budget Range: $10k - $25k")

	ack := transport.message(t, "ada@example.com")
	assert.Equal(t, "We received your inquiry", decodeHeader(t, ack.Header.Get("Subject")))
	assert.Empty(t, ack.Header.Get("Reply-To"))
	assert.Contains(t, readBody(t, ack), "Hi Ada Lovelace,")
}

func TestNotifier_SubmitFailsWhenEitherMailFails(t *testing.T) {
	for _, failing := range []string{"sales@devstudio.test", "ada@example.com"} {
		t.Run(failing, func(t *testing.T) {
			transport := &MockTransport{}
			transport.On("Send", mock.Anything, mock.Anything, []string{failing}, mock.Anything).Return(errors.New("550 rejected"))
			transport.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

			n := New(createTestConfig(), logger.NewTestLogger(t), WithTransport(transport))
			err := n.Submit(context.Background(), createTestInquiry())
			require.Error(t, err)
			assert.Contains(t, err.Error(), "550 rejected")
		})
	}
}

func TestNotifier_SubjectHeaderIsEncoded(t *testing.T) {
	transport := &MockTransport{}
	transport.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	inq := createTestInquiry()
	inq.Name = "Zoë\r\nBcc: victim@example.com"
	require.NoError(t, New(createTestConfig(), nil, WithTransport(transport)).Submit(context.Background(), inq))

	notification := transport.message(t, "sales@devstudio.test")
	assert.Empty(t, notification.Header.Get("Bcc"))
	assert.Equal(t, "New project inquiry from Zoë Bcc: victim@example.com", decodeHeader(t, notification.Header.Get("Subject")))
}

func TestNotifier_Name(t *testing.T) {
	assert.Equal(t, "smtp", New(createTestConfig(), nil).Name())
}

func decodeHeader(t *testing.T, v string) string {
	t.Helper()
	out, err := new(mime.WordDecoder).DecodeHeader(v)
	require.NoError(t, err)
	return out
}
