package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvConfig carries environment-sourced settings: secrets, HTTP tuning and
// observability. Site selection and keywords stay in the YAML document;
// only things that differ per deployment (or must never be committed) live
// here.
type EnvConfig struct {
	ConfigPath string
	RunOnce    bool
	Site       SiteEnvConfig
	Line       LineEnvConfig
	SMTP       SMTPEnvConfig
	OTel       OTelEnvConfig
}

type SiteEnvConfig struct {
	HTTPTimeout time.Duration
	UserAgent   string
}

// LineEnvConfig holds the LINE Messaging API credentials. They are injected
// into the sender as a struct so tests can run with fakes instead of
// reading ambient process state.
type LineEnvConfig struct {
	ChannelAccessToken string
	UserID             string
	// MinSendInterval spaces out pushes; the Messaging API has a
	// per-period send cap.
	MinSendInterval time.Duration
}

type SMTPEnvConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

type OTelEnvConfig struct {
	Enabled     bool
	ServiceName string
	Endpoint    string
	Protocol    string // "grpc" or "http/protobuf"
	Insecure    bool
	SampleRatio float64
}

func LoadEnv() EnvConfig {
	return EnvConfig{
		ConfigPath: envString("AUCTIONWATCH_CONFIG", "auctionwatch.yaml"),
		RunOnce:    envBool("RUN_ONCE", false),
		Site: SiteEnvConfig{
			HTTPTimeout: envDuration("SITE_HTTP_TIMEOUT", 10*time.Second),
			UserAgent:   envString("SITE_USER_AGENT", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		},
		Line: LineEnvConfig{
			ChannelAccessToken: envString("LINE_CHANNEL_ACCESS_TOKEN", ""),
			UserID:             envString("LINE_USER_ID", ""),
			MinSendInterval:    envDuration("LINE_MIN_SEND_INTERVAL", time.Second),
		},
		SMTP: SMTPEnvConfig{
			Host:     envString("SMTP_HOST", ""),
			Port:     envInt("SMTP_PORT", 587),
			Username: envString("SMTP_USER", ""),
			Password: envString("SMTP_PASSWORD", ""),
		},
		OTel: OTelEnvConfig{
			Enabled:     envBool("OTEL_ENABLED", false),
			ServiceName: envString("OTEL_SERVICE_NAME", "auctionwatch"),
			Endpoint:    envString("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Protocol:    strings.ToLower(envString("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")),
			Insecure:    envBool("OTEL_EXPORTER_OTLP_INSECURE", true),
			SampleRatio: clamp01(envFloat("OTEL_TRACES_SAMPLE_RATIO", 1.0)),
		},
	}
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func envFloat(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := parseDurationExtended(v)
	if err != nil {
		return fallback
	}
	return d
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
