package mock

import (
	"context"

	"github.com/yhirano/auctionwatch/internal/core"
)

// Adapter is a scriptable site adapter for tests.
type Adapter struct {
	SiteName     string
	ItemsByQuery map[string][]core.Item
	ErrByQuery   map[string]error
	Searches     []string
}

func (a *Adapter) Name() string {
	if a.SiteName == "" {
		return "mock"
	}
	return a.SiteName
}

func (a *Adapter) Search(ctx context.Context, keyword string) ([]core.Item, error) {
	_ = ctx
	a.Searches = append(a.Searches, keyword)
	if a.ErrByQuery != nil {
		if err, ok := a.ErrByQuery[keyword]; ok {
			return nil, err
		}
	}
	return a.ItemsByQuery[keyword], nil
}

func (a *Adapter) ItemID(item core.Item) string {
	return item.ID
}
