package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yhirano/auctionwatch/internal/core"
)

func TestFormatPrice(t *testing.T) {
	cases := map[int]string{
		0:        "¥0",
		5:        "¥5",
		999:      "¥999",
		1000:     "¥1,000",
		12300:    "¥12,300",
		1234567:  "¥1,234,567",
		10000000: "¥10,000,000",
	}
	for n, want := range cases {
		if got := FormatPrice(n); got != want {
			t.Fatalf("FormatPrice(%d)=%q, want %q", n, got, want)
		}
	}
}

func TestFormatMessageIncludesTitlePriceURL(t *testing.T) {
	msg := FormatMessage("yahoo", core.Item{Title: "Nikon FE2", Price: 12000, URL: "https://example.com/a"})
	for _, want := range []string{"YAHOO", "Nikon FE2", "¥12,000", "https://example.com/a"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message %q missing %q", msg, want)
		}
	}
}

type stubNotifier struct {
	err   error
	calls int
}

func (s *stubNotifier) Notify(ctx context.Context, message string, item core.Item) error {
	s.calls++
	return s.err
}

func TestMultiDeliversToAllChannels(t *testing.T) {
	a := &stubNotifier{}
	b := &stubNotifier{err: errors.New("down")}
	c := &stubNotifier{}

	err := Multi{a, b, c}.Notify(context.Background(), "m", core.Item{ID: "x"})
	if err == nil {
		t.Fatalf("expected joined error from failing channel")
	}
	if a.calls != 1 || b.calls != 1 || c.calls != 1 {
		t.Fatalf("one failing channel must not block the others: %d %d %d", a.calls, b.calls, c.calls)
	}
}

func TestEmptyMultiAcceptsEverything(t *testing.T) {
	if err := (Multi{}).Notify(context.Background(), "m", core.Item{}); err != nil {
		t.Fatalf("empty multi should accept: %v", err)
	}
}
