package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Document is the top-level structure of an auctionwatch.yaml file.
type Document struct {
	Trigger TriggerConfig `yaml:"trigger"`
	Sources []Source      `yaml:"sources"`
	Notify  NotifyConfig  `yaml:"notify"`
	Store   StoreConfig   `yaml:"store,omitempty"`
}

// TriggerConfig wraps the supported trigger types.
type TriggerConfig struct {
	Cron *CronTrigger `yaml:"cron,omitempty"`
}

// CronTrigger schedules monitoring passes.
type CronTrigger struct {
	Schedule string `yaml:"schedule"`
	Timezone string `yaml:"timezone,omitempty"`
}

// Source configures one monitored marketplace.
//
// Enabled defaults to false: a source that does not say `enabled: true`
// explicitly is skipped, so a half-written config block never silently
// starts hitting a site.
type Source struct {
	Name     string   `yaml:"name"`
	Site     string   `yaml:"site"` // "yahoo" or "feed"
	Enabled  bool     `yaml:"enabled,omitempty"`
	Keywords []string `yaml:"keywords"`
	MinPrice int      `yaml:"min_price,omitempty"`
	// Filter is an optional expr rule over notify candidates,
	// e.g. `price >= 10000 && title contains "FE2"`.
	Filter string `yaml:"filter,omitempty"`
	// FeedURL is the search feed template for site "feed"; %s is replaced
	// with the URL-escaped keyword.
	FeedURL string `yaml:"feed_url,omitempty"`
}

// NotifyConfig selects the outbound channels. Credentials come from the
// environment, not from this file.
type NotifyConfig struct {
	Line  *LineNotify  `yaml:"line,omitempty"`
	Email *EmailNotify `yaml:"email,omitempty"`
}

// LineNotify enables LINE Messaging API push delivery.
type LineNotify struct {
	Enabled bool `yaml:"enabled,omitempty"`
}

// EmailNotify enables SMTP delivery.
type EmailNotify struct {
	To      string `yaml:"to"`
	From    string `yaml:"from,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// StoreConfig selects the seen-state backend.
type StoreConfig struct {
	Backend string `yaml:"backend,omitempty"` // "file" (default) or "sqlite"
	Dir     string `yaml:"dir,omitempty"`     // file backend: directory for per-source state files
	DSN     string `yaml:"dsn,omitempty"`     // sqlite backend: database path or DSN
}

const (
	StoreBackendFile   = "file"
	StoreBackendSQLite = "sqlite"
)

// Load reads and validates a Document from path.
func Load(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	doc := &Document{}
	if err := yaml.Unmarshal(raw, doc); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

func (d *Document) Validate() error {
	if len(d.Sources) == 0 {
		return fmt.Errorf("at least one source is required")
	}
	names := map[string]bool{}
	for i, src := range d.Sources {
		if src.Name == "" {
			return fmt.Errorf("sources[%d]: name is required", i)
		}
		if names[src.Name] {
			return fmt.Errorf("sources[%d]: duplicate source name %q", i, src.Name)
		}
		names[src.Name] = true
		if src.Site == "" {
			return fmt.Errorf("source %q: site is required", src.Name)
		}
		if src.MinPrice < 0 {
			return fmt.Errorf("source %q: min_price must be >= 0", src.Name)
		}
	}
	switch d.Store.Backend {
	case "", StoreBackendFile, StoreBackendSQLite:
	default:
		return fmt.Errorf("store.backend %q is not supported", d.Store.Backend)
	}
	if d.Notify.Email != nil && d.Notify.Email.To == "" {
		return fmt.Errorf("notify.email.to is required when email notification is configured")
	}
	return nil
}
