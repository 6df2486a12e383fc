package smtpmail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"time"

	"devstudio-site/internal/common/config"
)

// Transport delivers a raw RFC 5322 message to an SMTP server.
type Transport interface {
	Send(ctx context.Context, from string, to []string, msg []byte) error
}

// NetTransport talks to an authenticated SMTP server. With Secure the
// connection is TLS from the first byte (port 465); otherwise STARTTLS is
// used when the server offers it.
type NetTransport struct {
	Host      string
	Port      int
	Username  string
	Password  string
	Secure    bool
	Timeout   time.Duration
	TLSConfig *tls.Config
}

func NewNetTransport(cfg config.SMTPConfig) *NetTransport {
	return &NetTransport{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		Secure:   cfg.Secure,
		Timeout:  config.GetDuration(cfg.Timeout),
	}
}

func (t *NetTransport) tlsConfig() *tls.Config {
	if t.TLSConfig != nil {
		return t.TLSConfig
	}
	return &tls.Config{ServerName: t.Host, MinVersion: tls.VersionTLS12}
}

func (t *NetTransport) dial(ctx context.Context) (net.Conn, error) {
	addr := net.JoinHostPort(t.Host, fmt.Sprintf("%d", t.Port))
	dialer := &net.Dialer{Timeout: t.Timeout}

	if t.Secure {
		tlsDialer := &tls.Dialer{NetDialer: dialer, Config: t.tlsConfig()}
		return tlsDialer.DialContext(ctx, "tcp", addr)
	}
	return dialer.DialContext(ctx, "tcp", addr)
}

func (t *NetTransport) Send(ctx context.Context, from string, to []string, msg []byte) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before sending email: %w", err)
	}

	conn, err := t.dial(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}

	var deadline time.Time
	if t.Timeout > 0 {
		deadline = time.Now().Add(t.Timeout)
	}
	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}
	if !deadline.IsZero() {
		_ = conn.SetDeadline(deadline)
	}

	// Abort the conversation when the request goes away.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	client, err := smtp.NewClient(conn, t.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to start SMTP session: %w", err)
	}
	defer client.Close()

	if !t.Secure {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err = client.StartTLS(t.tlsConfig()); err != nil {
				return fmt.Errorf("failed to start TLS: %w", err)
			}
		}
	}

	if t.Username != "" {
		auth := smtp.PlainAuth("", t.Username, t.Password, t.Host)
		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err = client.Mail(from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, addr := range to {
		if err = client.Rcpt(addr); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", addr, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data writer: %w", err)
	}
	if _, err = w.Write(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	return client.Quit()
}
