package factory

import (
	"testing"
	"time"

	"github.com/yhirano/auctionwatch/internal/config"
)

func testEnv() config.EnvConfig {
	return config.EnvConfig{
		Site: config.SiteEnvConfig{HTTPTimeout: 5 * time.Second, UserAgent: "test"},
	}
}

func TestBuildAssemblesSources(t *testing.T) {
	doc := &config.Document{
		Sources: []config.Source{
			{Name: "yahoo", Site: "yahoo", Enabled: true, Keywords: []string{"camera"}, MinPrice: 500},
			{Name: "mercari", Site: "feed", Enabled: true, Keywords: []string{"camera"},
				FeedURL: "https://example.com/search?q=%s"},
		},
		Store: config.StoreConfig{Backend: config.StoreBackendFile, Dir: t.TempDir()},
	}

	mon, closer, err := Build(nil, doc, testEnv())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	defer closer()
	if mon == nil {
		t.Fatalf("expected a monitor")
	}
}

func TestBuildSkipsBrokenSources(t *testing.T) {
	doc := &config.Document{
		Sources: []config.Source{
			{Name: "good", Site: "yahoo", Enabled: true, Keywords: []string{"camera"}},
			{Name: "bad-site", Site: "ebay", Enabled: true, Keywords: []string{"camera"}},
			{Name: "bad-filter", Site: "yahoo", Enabled: true, Keywords: []string{"camera"},
				Filter: "price >>> oops"},
		},
		Store: config.StoreConfig{Dir: t.TempDir()},
	}

	mon, closer, err := Build(nil, doc, testEnv())
	if err != nil {
		t.Fatalf("build must survive broken source blocks: %v", err)
	}
	defer closer()
	if mon == nil {
		t.Fatalf("expected a monitor")
	}
}

func TestBuildFailsWithoutUsableSources(t *testing.T) {
	doc := &config.Document{
		Sources: []config.Source{
			{Name: "bad", Site: "nope", Enabled: true, Keywords: []string{"x"}},
		},
	}
	if _, _, err := Build(nil, doc, testEnv()); err == nil {
		t.Fatalf("expected error when every source is unusable")
	}
}

func TestBuildSkipsLineWithoutCredentials(t *testing.T) {
	doc := &config.Document{
		Sources: []config.Source{
			{Name: "yahoo", Site: "yahoo", Enabled: true, Keywords: []string{"camera"}},
		},
		Notify: config.NotifyConfig{Line: &config.LineNotify{Enabled: true}},
		Store:  config.StoreConfig{Dir: t.TempDir()},
	}

	// No LINE_CHANNEL_ACCESS_TOKEN in the env: the channel is skipped with
	// a warning instead of failing the whole startup.
	mon, closer, err := Build(nil, doc, testEnv())
	if err != nil {
		t.Fatalf("missing line credentials must not be fatal: %v", err)
	}
	defer closer()
	if mon == nil {
		t.Fatalf("expected a monitor")
	}
}

func TestBuildRequiresValidEmailConfig(t *testing.T) {
	doc := &config.Document{
		Sources: []config.Source{
			{Name: "yahoo", Site: "yahoo", Enabled: true, Keywords: []string{"camera"}},
		},
		// Email is in the YAML, so a broken SMTP setup is a config error.
		Notify: config.NotifyConfig{Email: &config.EmailNotify{To: "me@example.com"}},
	}
	if _, _, err := Build(nil, doc, testEnv()); err == nil {
		t.Fatalf("expected error for email notify without smtp host")
	}
}
