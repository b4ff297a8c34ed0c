// Package sites defines the contract a marketplace adapter fulfills and the
// constructor registry used to build adapters from configuration.
package sites

import (
	"context"

	"github.com/yhirano/auctionwatch/internal/core"
)

// Adapter turns a keyword into the marketplace's current listings.
type Adapter interface {
	Name() string
	// Search fetches and parses the search results for keyword. The
	// monitor loop is the recovery boundary: an error here is logged and
	// treated as zero items for the pass, never propagated further.
	Search(ctx context.Context, keyword string) ([]core.Item, error)
	// ItemID resolves the stable identifier used for dedup tracking,
	// typically from the listing's canonical URL. An empty result means
	// the listing cannot be tracked and is dropped by detection.
	ItemID(item core.Item) string
}

// MessageFormatter is an optional override point: adapters that implement
// it control the notification text for their listings. Others get the
// default format from the notify package.
type MessageFormatter interface {
	FormatMessage(item core.Item) string
}
