// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Server        ServerConfig        `mapstructure:"server"`
	Site          SiteConfig          `mapstructure:"site"`
	Contact       ContactConfig       `mapstructure:"contact"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address           string `mapstructure:"address"`
	ReadHeaderTimeout int    `mapstructure:"read_header_timeout"` // milliseconds
	WriteTimeout      int    `mapstructure:"write_timeout"`       // milliseconds
	ShutdownTimeout   int    `mapstructure:"shutdown_timeout"`    // milliseconds
	// Absolute URL of the contact relay used by the wizard. Empty means the
	// wizard calls the relay in-process.
	RelayURL string `mapstructure:"relay_url"`
}

// SiteConfig points at the page content. An empty ContentPath selects the
// content bundled into the binary.
type SiteConfig struct {
	ContentPath string `mapstructure:"content_path"`
	BaseURL     string `mapstructure:"base_url"`
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- Contact relay ---

// Supported delivery channels.
const (
	ChannelSMTP  = "smtp"
	ChannelSES   = "ses"
	ChannelSNS   = "sns"
	ChannelRelay = "relay"
)

// ContactConfig selects and configures the channel inquiries are forwarded to.
type ContactConfig struct {
	Channel string `mapstructure:"channel"`
	// Business inbox receiving the notification mail. Falls back to the
	// SMTP username.
	Receiver    string            `mapstructure:"receiver"`
	SMTP        SMTPConfig        `mapstructure:"smtp"`
	SES         SESConfig         `mapstructure:"ses"`
	SNS         SNSConfig         `mapstructure:"sns"`
	Relay       FormRelayConfig   `mapstructure:"relay"`
	Idempotency IdempotencyConfig `mapstructure:"idempotency"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Secure   bool   `mapstructure:"secure"`
	Timeout  int    `mapstructure:"timeout"` // milliseconds
}

// Address returns host:port.
func (s SMTPConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type SESConfig struct {
	Region    string `mapstructure:"region"`
	FromEmail string `mapstructure:"from_email"`
}

type SNSConfig struct {
	Region   string `mapstructure:"region"`
	TopicARN string `mapstructure:"topic_arn"`
}

type FormRelayConfig struct {
	URL     string `mapstructure:"url"`
	Token   string `mapstructure:"token"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

type IdempotencyConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	TTL     int    `mapstructure:"ttl"` // milliseconds
	Prefix  string `mapstructure:"prefix"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// ObservabilityConfig holds metrics and tracing settings.
type ObservabilityConfig struct {
	ServiceName    string  `mapstructure:"service_name"`
	MetricsEnabled bool    `mapstructure:"metrics_enabled"`
	TracingEnabled bool    `mapstructure:"tracing_enabled"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	SampleRatio    float64 `mapstructure:"sample_ratio"`
}
