// Package notify defines the outbound notification contract and the
// default message format. One message is delivered per newly discovered
// listing; delivery failure is reported as an error and never panics.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yhirano/auctionwatch/internal/core"
)

// Notifier delivers one message per newly discovered listing.
type Notifier interface {
	Notify(ctx context.Context, message string, item core.Item) error
}

// FormatMessage builds the default notification text. Title, price and URL
// are always present so the message is legible on any channel.
func FormatMessage(site string, item core.Item) string {
	return fmt.Sprintf("[%s] New listing!\n\nTitle: %s\nPrice: %s\nURL: %s",
		strings.ToUpper(site), item.Title, FormatPrice(item.Price), item.URL)
}

// FormatPrice renders n as a yen value with thousands separators, e.g.
// "¥12,300". Zero means the listing price could not be resolved.
func FormatPrice(n int) string {
	if n == 0 {
		return "¥0"
	}
	digits := fmt.Sprintf("%d", n)
	var b strings.Builder
	b.WriteString("¥")
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
		if len(digits) > lead {
			b.WriteString(",")
		}
	}
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(digits[i : i+3])
		if i+3 < len(digits) {
			b.WriteString(",")
		}
	}
	return b.String()
}

// Multi fans one notification out to several channels. Errors are joined so
// a failing channel does not hide the others; an empty Multi silently
// accepts everything.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, message string, item core.Item) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, message, item); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
