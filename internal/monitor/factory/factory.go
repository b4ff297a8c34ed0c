// Package factory assembles a Monitor from the YAML document and the
// environment. Config problems in one source disable that source with a
// logged reason instead of refusing to start; a watch that covers the
// rest of the config beats no watch at all.
package factory

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/yhirano/auctionwatch/internal/config"
	"github.com/yhirano/auctionwatch/internal/filter"
	"github.com/yhirano/auctionwatch/internal/monitor"
	"github.com/yhirano/auctionwatch/internal/notify"
	"github.com/yhirano/auctionwatch/internal/notify/email"
	"github.com/yhirano/auctionwatch/internal/notify/line"
	"github.com/yhirano/auctionwatch/internal/seen"
	"github.com/yhirano/auctionwatch/internal/sites"
)

// Build wires adapters, stores, filters and notifiers per the document
// and returns the monitor plus a closer that releases every store.
func Build(logger *slog.Logger, doc *config.Document, env config.EnvConfig) (*monitor.Monitor, func() error, error) {
	if logger == nil {
		logger = slog.Default()
	}

	notifier, err := buildNotifier(logger, doc, env)
	if err != nil {
		return nil, nil, err
	}

	var targets []monitor.Target
	var stores []seen.Store
	for _, src := range doc.Sources {
		target, store, terr := buildTarget(logger, src, doc.Store, env)
		if terr != nil {
			// One bad source block must not stop the others from being
			// watched. It is reported and left out of this run.
			logger.Error("source disabled by config error", "source", src.Name, "error", terr)
			continue
		}
		targets = append(targets, target)
		stores = append(stores, store)
	}
	if len(targets) == 0 {
		return nil, nil, fmt.Errorf("no usable sources configured")
	}

	closer := func() error {
		var errs []error
		for _, store := range stores {
			errs = append(errs, store.Close())
		}
		return errors.Join(errs...)
	}
	return monitor.New(logger, notifier, targets), closer, nil
}

func buildTarget(logger *slog.Logger, src config.Source, store config.StoreConfig, env config.EnvConfig) (monitor.Target, seen.Store, error) {
	adapter, err := sites.New(src, env, logger)
	if err != nil {
		return monitor.Target{}, nil, err
	}

	var rule *filter.Rule
	if src.Filter != "" {
		rule, err = filter.Compile(src.Filter)
		if err != nil {
			return monitor.Target{}, nil, fmt.Errorf("compile filter: %w", err)
		}
	}

	seenStore, err := buildStore(logger, src.Name, store)
	if err != nil {
		return monitor.Target{}, nil, err
	}

	return monitor.Target{
		Name:     src.Name,
		Enabled:  src.Enabled,
		Keywords: src.Keywords,
		MinPrice: src.MinPrice,
		Adapter:  adapter,
		Store:    seenStore,
		Filter:   rule,
	}, seenStore, nil
}

func buildStore(logger *slog.Logger, source string, cfg config.StoreConfig) (seen.Store, error) {
	switch cfg.Backend {
	case "", config.StoreBackendFile:
		dir := cfg.Dir
		if dir == "" {
			dir = "."
		}
		path := filepath.Join(dir, source+"_seen_items.json")
		return seen.NewFileStore(path, logger), nil
	case config.StoreBackendSQLite:
		dsn := cfg.DSN
		if dsn == "" {
			dsn = "auctionwatch.db"
		}
		return seen.NewSQLiteStore(dsn, source, logger)
	default:
		return nil, fmt.Errorf("store backend %q is not supported", cfg.Backend)
	}
}

func buildNotifier(logger *slog.Logger, doc *config.Document, env config.EnvConfig) (notify.Notifier, error) {
	var channels notify.Multi

	if doc.Notify.Line != nil && doc.Notify.Line.Enabled {
		creds := line.Credentials{
			ChannelAccessToken: env.Line.ChannelAccessToken,
			UserID:             env.Line.UserID,
		}
		sender, err := line.NewSender(creds, env.Site.HTTPTimeout, env.Line.MinSendInterval, logger)
		if err != nil {
			// Credentials live in the environment, not the YAML; a missing
			// token on a dev box should not stop a dry run.
			logger.Warn("line notifications disabled", "error", err)
		} else {
			channels = append(channels, sender)
		}
	}

	if doc.Notify.Email != nil {
		sender, err := email.NewSender(email.Config{
			Host:     env.SMTP.Host,
			Port:     env.SMTP.Port,
			Username: env.SMTP.Username,
			Password: env.SMTP.Password,
			From:     doc.Notify.Email.From,
			To:       doc.Notify.Email.To,
			Subject:  doc.Notify.Email.Subject,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("configure email notifications: %w", err)
		}
		channels = append(channels, sender)
	}

	if len(channels) == 0 {
		logger.Warn("no notification channel configured, new listings will only be logged")
	}
	return channels, nil
}
