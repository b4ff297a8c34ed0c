// Package yahoo scrapes Yahoo! Auctions keyword search results.
//
// The markup of the search page changes without notice; the parser reads
// the Product cards it knows about and falls back to a generic scan of
// auction links when the primary selectors come up empty, preferring
// partial results over none.
package yahoo

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/yhirano/auctionwatch/internal/core"
	"github.com/yhirano/auctionwatch/internal/notify"
	"github.com/yhirano/auctionwatch/internal/retry"
)

const (
	baseURL        = "https://auctions.yahoo.co.jp"
	searchPath     = "/search/search"
	resultsPerPage = 50
	fetchAttempts  = 3
)

type Adapter struct {
	client    *http.Client
	logger    *slog.Logger
	userAgent string
	searchURL string
}

func New(timeout time.Duration, userAgent string, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
		userAgent: userAgent,
		searchURL: baseURL + searchPath,
	}
}

func (a *Adapter) Name() string {
	return "yahoo"
}

func (a *Adapter) Search(ctx context.Context, keyword string) ([]core.Item, error) {
	params := url.Values{}
	params.Set("va", keyword)
	params.Set("exflg", "1")
	params.Set("b", "1")
	params.Set("n", strconv.Itoa(resultsPerPage))
	target := a.searchURL + "?" + params.Encode()

	var body []byte
	err := retry.Do(ctx, fetchAttempts, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", a.userAgent)
		resp, err := a.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 400 {
			return fmt.Errorf("search returned status %d", resp.StatusCode)
		}
		body, err = io.ReadAll(resp.Body)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("yahoo search %q: %w", keyword, err)
	}

	items, err := a.parse(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("yahoo parse %q: %w", keyword, err)
	}
	a.logger.Debug("yahoo search complete", "keyword", keyword, "items", len(items))
	return items, nil
}

func (a *Adapter) parse(r io.Reader) ([]core.Item, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	products := doc.Find("li.Product")
	if products.Length() == 0 {
		products = doc.Find("div.Product")
	}

	items := []core.Item{}
	products.Each(func(_ int, product *goquery.Selection) {
		item, ok := extractProduct(product)
		if ok {
			items = append(items, item)
		}
	})

	if len(items) == 0 {
		items = fallbackParse(doc)
	}
	return items, nil
}

func extractProduct(product *goquery.Selection) (core.Item, bool) {
	title := product.Find("a.Product__titleLink").First()
	if title.Length() == 0 {
		title = product.Find("h3 a").First()
	}
	if title.Length() == 0 {
		return core.Item{}, false
	}

	item := core.Item{Title: strings.TrimSpace(title.Text())}
	href, _ := title.Attr("href")
	item.URL = absoluteURL(href)
	if item.Title == "" || item.URL == "" {
		return core.Item{}, false
	}

	price := product.Find("span.Product__priceValue").First()
	if price.Length() > 0 {
		item.Price = parsePrice(price.Text())
	}
	item.ID = itemIDFromURL(item.URL)
	return item, true
}

// fallbackParse scans bare auction links when the Product card structure is
// gone; results carry no price, which detection treats as price 0.
func fallbackParse(doc *goquery.Document) []core.Item {
	items := []core.Item{}
	doc.Find(`a[href*="/auction/"]`).EachWithBreak(func(_ int, link *goquery.Selection) bool {
		title := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		if title == "" || href == "" {
			return true
		}
		u := absoluteURL(href)
		items = append(items, core.Item{
			ID:    itemIDFromURL(u),
			Title: title,
			URL:   u,
		})
		return len(items) < resultsPerPage
	})
	return items
}

func (a *Adapter) ItemID(item core.Item) string {
	if item.ID != "" {
		return item.ID
	}
	return itemIDFromURL(item.URL)
}

// FormatMessage keeps the banner style of the notification channel this
// tool grew up with.
func (a *Adapter) FormatMessage(item core.Item) string {
	return fmt.Sprintf("[YAHOO] New listing!\n\nTitle: %s\nPrice: %s\nURL: %s",
		item.Title, notify.FormatPrice(item.Price), item.URL)
}

var auctionIDPattern = regexp.MustCompile(`/auction/([a-z0-9]+)`)

// itemIDFromURL extracts the auction id from a listing URL shaped like
// /jp/auction/{id}.
func itemIDFromURL(u string) string {
	m := auctionIDPattern.FindStringSubmatch(u)
	if m == nil {
		return ""
	}
	return m[1]
}

func absoluteURL(href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "/") {
		return baseURL + href
	}
	return href
}

// parsePrice strips everything but digits from strings like "1,200円" or
// "¥3,980". Unparseable prices become 0.
func parsePrice(s string) int {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	if digits == "" {
		return 0
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}
