// Package feed adapts marketplaces that expose keyword search as an
// RSS/Atom feed. The configured URL template gets the URL-escaped keyword
// substituted for %s.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/yhirano/auctionwatch/internal/core"
	"github.com/yhirano/auctionwatch/internal/retry"
)

const fetchAttempts = 3

type Adapter struct {
	name     string
	template string
	parser   *gofeed.Parser
	logger   *slog.Logger
}

func New(name, template string, timeout time.Duration, userAgent string, logger *slog.Logger) (*Adapter, error) {
	if !strings.Contains(template, "%s") {
		return nil, fmt.Errorf("feed source %q: feed_url must contain %%s for the keyword", name)
	}
	if logger == nil {
		logger = slog.Default()
	}
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	parser.UserAgent = userAgent
	return &Adapter{
		name:     name,
		template: template,
		parser:   parser,
		logger:   logger,
	}, nil
}

func (a *Adapter) Name() string {
	return a.name
}

func (a *Adapter) Search(ctx context.Context, keyword string) ([]core.Item, error) {
	target := fmt.Sprintf(a.template, url.QueryEscape(keyword))

	var parsed *gofeed.Feed
	err := retry.Do(ctx, fetchAttempts, func() error {
		f, err := a.parser.ParseURLWithContext(target, ctx)
		if err != nil {
			return err
		}
		parsed = f
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch feed %q: %w", target, err)
	}

	items := make([]core.Item, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		item := core.Item{
			ID:    entry.GUID,
			Title: strings.TrimSpace(entry.Title),
			URL:   entry.Link,
			Price: priceFromText(entry.Title + " " + entry.Description),
		}
		if item.ID == "" {
			item.ID = entry.Link
		}
		items = append(items, item)
	}
	a.logger.Debug("feed search complete", "source", a.name, "keyword", keyword, "items", len(items))
	return items, nil
}

// ItemID falls back to the listing URL; for a feed that is as canonical an
// identifier as we get.
func (a *Adapter) ItemID(item core.Item) string {
	if item.ID != "" {
		return item.ID
	}
	return item.URL
}

var feedPricePattern = regexp.MustCompile(`[¥￥]\s?([0-9][0-9,]*)`)

// priceFromText pulls the first yen-marked amount out of the entry text.
// Feeds rarely carry structured prices; absence means 0 (unknown).
func priceFromText(text string) int {
	m := feedPricePattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n := 0
	for _, r := range m[1] {
		if r >= '0' && r <= '9' {
			n = n*10 + int(r-'0')
		}
	}
	return n
}
