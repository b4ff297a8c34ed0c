package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleDocument = `
trigger:
  cron:
    schedule: "*/30 * * * *"
sources:
  - name: yahoo
    site: yahoo
    enabled: true
    keywords: ["nikon fe2", "canon a-1"]
    min_price: 3000
    filter: 'price >= 3000 && title contains "FE2"'
  - name: surplus-feed
    site: feed
    keywords: ["thinkpad"]
    feed_url: "https://example.com/search.rss?q=%s"
notify:
  line:
    enabled: true
store:
  backend: file
  dir: data
`

func writeDocument(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "auctionwatch.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadParsesDocument(t *testing.T) {
	doc, err := Load(writeDocument(t, sampleDocument))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if doc.Trigger.Cron == nil || doc.Trigger.Cron.Schedule != "*/30 * * * *" {
		t.Fatalf("unexpected trigger: %+v", doc.Trigger)
	}
	if len(doc.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(doc.Sources))
	}
	if doc.Sources[0].MinPrice != 3000 {
		t.Fatalf("unexpected min_price: %d", doc.Sources[0].MinPrice)
	}
	if doc.Notify.Line == nil || !doc.Notify.Line.Enabled {
		t.Fatalf("expected line notify enabled")
	}
}

func TestEnabledDefaultsToDisabled(t *testing.T) {
	doc, err := Load(writeDocument(t, sampleDocument))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	// The feed source omits `enabled`; an unconfirmed source must not be
	// monitored.
	if doc.Sources[1].Enabled {
		t.Fatalf("a source without explicit enabled: true must be disabled")
	}
	if !doc.Sources[0].Enabled {
		t.Fatalf("explicitly enabled source should be enabled")
	}
}

func TestMinPriceDefaultsToZero(t *testing.T) {
	doc, err := Load(writeDocument(t, sampleDocument))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if doc.Sources[1].MinPrice != 0 {
		t.Fatalf("min_price should default to 0, got %d", doc.Sources[1].MinPrice)
	}
}

func TestValidateRejectsBadDocuments(t *testing.T) {
	cases := map[string]string{
		"no sources":     "sources: []\n",
		"missing name":   "sources:\n  - site: yahoo\n",
		"missing site":   "sources:\n  - name: a\n",
		"duplicate name": "sources:\n  - name: a\n    site: yahoo\n  - name: a\n    site: yahoo\n",
		"negative price": "sources:\n  - name: a\n    site: yahoo\n    min_price: -1\n",
		"bad backend":    "sources:\n  - name: a\n    site: yahoo\nstore:\n  backend: redis\n",
		"email no to":    "sources:\n  - name: a\n    site: yahoo\nnotify:\n  email:\n    from: x@example.com\n",
	}
	for label, body := range cases {
		if _, err := Load(writeDocument(t, body)); err == nil {
			t.Fatalf("%s: expected validation error", label)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
