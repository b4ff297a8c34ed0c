package mock

import (
	"context"
	"sync"

	"github.com/yhirano/auctionwatch/internal/core"
)

// Notifier records deliveries and can be scripted to fail for specific
// item ids.
type Notifier struct {
	mu       sync.Mutex
	Messages []string
	Items    []core.Item
	Err      error
	FailFor  map[string]error
}

func (n *Notifier) Notify(ctx context.Context, message string, item core.Item) error {
	_ = ctx
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Messages = append(n.Messages, message)
	n.Items = append(n.Items, item)
	if n.FailFor != nil {
		if err, ok := n.FailFor[item.ID]; ok {
			return err
		}
	}
	return n.Err
}

// NotifiedIDs returns the ids of every item delivered so far.
func (n *Notifier) NotifiedIDs() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	ids := make([]string, 0, len(n.Items))
	for _, item := range n.Items {
		ids = append(ids, item.ID)
	}
	return ids
}
