package sites

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/yhirano/auctionwatch/internal/config"
	"github.com/yhirano/auctionwatch/internal/sites/feed"
	"github.com/yhirano/auctionwatch/internal/sites/yahoo"
)

// Constructor builds an adapter for one configured source.
type Constructor func(cfg config.Source, env config.EnvConfig, logger *slog.Logger) (Adapter, error)

var constructors = map[string]Constructor{
	"yahoo": func(cfg config.Source, env config.EnvConfig, logger *slog.Logger) (Adapter, error) {
		return yahoo.New(env.Site.HTTPTimeout, env.Site.UserAgent, logger), nil
	},
	"feed": func(cfg config.Source, env config.EnvConfig, logger *slog.Logger) (Adapter, error) {
		return feed.New(cfg.Name, cfg.FeedURL, env.Site.HTTPTimeout, env.Site.UserAgent, logger)
	},
}

// New builds the adapter selected by cfg.Site.
func New(cfg config.Source, env config.EnvConfig, logger *slog.Logger) (Adapter, error) {
	build, ok := constructors[cfg.Site]
	if !ok {
		return nil, fmt.Errorf("unknown site %q (known: %v)", cfg.Site, Known())
	}
	return build(cfg, env, logger)
}

// Known lists the registered site names.
func Known() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
