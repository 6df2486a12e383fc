// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top
// and applies environment overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()

	// CONTACT_SMTP_HOST overrides contact.smtp.host and so on.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("app.name", "devstudio-site")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("contact.channel", ChannelSMTP)
	v.SetDefault("contact.smtp.host", "smtp.gmail.com")
	v.SetDefault("contact.smtp.port", 465)
	v.SetDefault("contact.smtp.secure", true)
	v.SetDefault("contact.idempotency.enabled", false)
	v.SetDefault("observability.metrics_enabled", true)
	v.SetDefault("observability.tracing_enabled", false)

	// Env names used by existing deployments win over the structured names.
	_ = v.BindEnv("contact.smtp.host", "EMAIL_HOST", "CONTACT_SMTP_HOST")
	_ = v.BindEnv("contact.smtp.port", "EMAIL_PORT", "CONTACT_SMTP_PORT")
	_ = v.BindEnv("contact.smtp.secure", "EMAIL_SECURE", "CONTACT_SMTP_SECURE")

	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)
	normalizeSecure(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideEmptyConfig(&cfg)
	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads the first .env found walking towards the project root.
func loadEnvFile() string {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			// Unset placeholders expand to "" so overrideEmptyConfig and
			// applyDefaults still see the field as empty.
			if expanded := os.ExpandEnv(strVal); expanded != strVal {
				v.Set(key, strings.TrimSpace(expanded))
			}
		}
	}
}

// normalizeSecure treats anything but "true" as false so a typo in
// EMAIL_SECURE downgrades to STARTTLS instead of failing startup.
func normalizeSecure(v *viper.Viper) {
	raw := v.Get("contact.smtp.secure")
	s, ok := raw.(string)
	if !ok {
		return
	}
	s = strings.TrimSpace(s)
	if s == "" {
		v.Set("contact.smtp.secure", true)
		return
	}
	v.Set("contact.smtp.secure", strings.EqualFold(s, "true"))
}

// overrideEmptyConfig fills credentials from the plain env names when the
// config file left them empty.
func overrideEmptyConfig(cfg *Config) {
	setIfEmpty(&cfg.Contact.SMTP.Username, "EMAIL_USER")
	setIfEmpty(&cfg.Contact.SMTP.Password, "EMAIL_PASSWORD")
	setIfEmpty(&cfg.Contact.Receiver, "CONTACT_RECEIVER_EMAIL")

	setIfEmpty(&cfg.Contact.SES.Region, "AWS_REGION")
	setIfEmpty(&cfg.Contact.SES.FromEmail, "SES_FROM_EMAIL")
	setIfEmpty(&cfg.Contact.SNS.Region, "AWS_REGION")
	setIfEmpty(&cfg.Contact.SNS.TopicARN, "CONTACT_TOPIC_ARN")

	setIfEmpty(&cfg.Contact.Relay.URL, "FORM_RELAY_URL")
	setIfEmpty(&cfg.Contact.Relay.Token, "FORM_RELAY_TOKEN")

	setIfEmpty(&cfg.Database.Redis.Address, "REDIS_ADDR")
	setIfEmpty(&cfg.Database.Redis.Password, "REDIS_PASSWORD")

	if cfg.Server.Address == "" {
		if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
			if _, err := strconv.Atoi(port); err == nil {
				cfg.Server.Address = ":" + port
			}
		}
	}

	cfg.Contact.SMTP.Username = strings.TrimSpace(cfg.Contact.SMTP.Username)
	cfg.Contact.SMTP.Password = strings.TrimSpace(cfg.Contact.SMTP.Password)
	cfg.Contact.Receiver = strings.TrimSpace(cfg.Contact.Receiver)
}

func setIfEmpty(dst *string, envName string) {
	if *dst != "" {
		return
	}
	if val := strings.TrimSpace(os.Getenv(envName)); val != "" {
		*dst = val
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.ReadHeaderTimeout == 0 {
		cfg.Server.ReadHeaderTimeout = 5000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10000
	}

	cfg.Contact.Channel = strings.ToLower(strings.TrimSpace(cfg.Contact.Channel))
	if cfg.Contact.Channel == "" {
		cfg.Contact.Channel = ChannelSMTP
	}
	if cfg.Contact.Receiver == "" {
		cfg.Contact.Receiver = cfg.Contact.SMTP.Username
	}
	if cfg.Contact.Receiver == "" {
		cfg.Contact.Receiver = cfg.Contact.SES.FromEmail
	}
	if cfg.Contact.SMTP.Host == "" {
		cfg.Contact.SMTP.Host = "smtp.gmail.com"
	}
	if cfg.Contact.SMTP.Port == 0 {
		cfg.Contact.SMTP.Port = 465
	}
	if cfg.Contact.SMTP.Timeout == 0 {
		cfg.Contact.SMTP.Timeout = 30000
	}
	if cfg.Contact.Relay.Timeout == 0 {
		cfg.Contact.Relay.Timeout = 10000
	}
	if cfg.Contact.Idempotency.TTL == 0 {
		cfg.Contact.Idempotency.TTL = 24 * 60 * 60 * 1000
	}
	if cfg.Contact.Idempotency.Prefix == "" {
		cfg.Contact.Idempotency.Prefix = "contact:idem:"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = cfg.App.Name
	}
	if cfg.Observability.SampleRatio == 0 {
		cfg.Observability.SampleRatio = 1.0
	}
}

// validateConfig checks server-level settings only. Channel credentials are
// checked per request so a half-configured deployment still serves the page.
func validateConfig(cfg *Config) error {
	switch cfg.Contact.Channel {
	case ChannelSMTP, ChannelSES, ChannelSNS, ChannelRelay:
	default:
		return fmt.Errorf("contact.channel %q is not supported", cfg.Contact.Channel)
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not supported", cfg.Logging.Level)
	}

	if cfg.Contact.SMTP.Port < 0 || cfg.Contact.SMTP.Port > 65535 {
		return fmt.Errorf("contact.smtp.port %d is out of range", cfg.Contact.SMTP.Port)
	}

	if cfg.Contact.Idempotency.Enabled && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when contact.idempotency is enabled")
	}

	if cfg.Observability.TracingEnabled && cfg.Observability.JaegerEndpoint == "" {
		return fmt.Errorf("observability.jaeger_endpoint is required when tracing is enabled")
	}

	if cfg.Observability.SampleRatio < 0 || cfg.Observability.SampleRatio > 1 {
		return fmt.Errorf("observability.sample_ratio must be within [0,1]")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
