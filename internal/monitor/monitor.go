// Package monitor orchestrates one monitoring pass: for every enabled
// source and keyword it fetches fresh listings, runs detection against the
// persisted seen state, delivers notifications and saves the state. A
// failure anywhere in one keyword or source never aborts the rest of the
// pass, and nothing here may take the process down; the scheduler gets to
// retry on the next tick.
package monitor

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yhirano/auctionwatch/internal/core"
	"github.com/yhirano/auctionwatch/internal/detect"
	"github.com/yhirano/auctionwatch/internal/filter"
	"github.com/yhirano/auctionwatch/internal/notify"
	"github.com/yhirano/auctionwatch/internal/seen"
	"github.com/yhirano/auctionwatch/internal/sites"
	"github.com/yhirano/auctionwatch/internal/trigger"
)

// defaultPace spaces keyword fetches within a source as a courtesy to the
// origin server. Deliberately a constant, not configuration.
const defaultPace = 2 * time.Second

// Target is one configured source bound to its collaborators.
type Target struct {
	Name     string
	Enabled  bool
	Keywords []string
	MinPrice int
	Adapter  sites.Adapter
	Store    seen.Store
	Filter   *filter.Rule
}

type Monitor struct {
	logger   *slog.Logger
	notifier notify.Notifier
	targets  []Target
	pace     time.Duration
	tracer   trace.Tracer
}

func New(logger *slog.Logger, notifier notify.Notifier, targets []Target) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = notify.Multi{}
	}
	return &Monitor{
		logger:   logger,
		notifier: notifier,
		targets:  targets,
		pace:     defaultPace,
		tracer:   otel.Tracer("auctionwatch/monitor"),
	}
}

// Run executes one pass per trigger event until the context ends or the
// event channel closes.
func (m *Monitor) Run(ctx context.Context, events <-chan trigger.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			m.logger.Info("pass triggered", "at", event.Timestamp)
			m.RunPass(ctx)
		}
	}
}

// RunPass monitors every target once.
func (m *Monitor) RunPass(ctx context.Context) {
	ctx, span := m.tracer.Start(ctx, "monitor.pass")
	defer span.End()

	m.logger.Info("monitoring pass started", "targets", len(m.targets))
	for _, target := range m.targets {
		m.runTarget(ctx, target)
	}
	m.logger.Info("monitoring pass finished")
}

func (m *Monitor) runTarget(ctx context.Context, t Target) {
	logger := m.logger.With("source", t.Name)

	// Last line of defense: a programming error in one source's pass must
	// not take the process down with it.
	defer func() {
		if r := recover(); r != nil {
			logger.Error("source pass panicked", "panic", r)
		}
	}()

	if !t.Enabled {
		logger.Info("source disabled, skipping")
		return
	}
	if len(t.Keywords) == 0 {
		logger.Warn("source has no keywords, skipping")
		return
	}

	logger.Info("monitoring source", "keywords", len(t.Keywords))
	for i, keyword := range t.Keywords {
		if i > 0 && !m.sleep(ctx) {
			return
		}
		m.runKeyword(core.WithLogger(ctx, logger), t, keyword)
	}
}

func (m *Monitor) runKeyword(ctx context.Context, t Target, keyword string) {
	logger := core.LoggerFromContext(ctx).With("keyword", keyword)
	ctx, span := m.tracer.Start(ctx, "monitor.keyword", trace.WithAttributes(
		attribute.String("source", t.Name),
		attribute.String("keyword", keyword),
	))
	defer span.End()

	items, err := t.Adapter.Search(ctx, keyword)
	if err != nil {
		// Transient fetch and parse trouble ends here: zero items this
		// pass, the keyword gets another chance on the next tick.
		logger.Error("search failed, treating as zero items this pass", "error", err)
		items = nil
	}

	// Let the adapter resolve ids it left blank; listings that stay
	// unidentifiable are dropped by detection rather than re-notified
	// forever.
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = t.Adapter.ItemID(items[i])
		}
	}

	set := t.Store.Keyword(keyword)
	result := detect.Process(items, set, t.MinPrice)
	changed := result.Recorded > 0

	if result.Mode == detect.Bootstrap {
		logger.Info("first run for keyword, recorded current listings without notifying",
			"recorded", result.Recorded)
	} else if len(result.Candidates) > 0 {
		logger.Info("new listings found", "count", len(result.Candidates))
	} else {
		logger.Debug("no new listings")
	}

	for _, item := range result.Candidates {
		if t.Filter != nil {
			ok, ferr := t.Filter.Match(item)
			if ferr != nil {
				// An evaluation error keeps the listing; the rule is a
				// refinement, not a gate worth losing notifications over.
				logger.Warn("filter evaluation failed, keeping listing", "item_id", item.ID, "error", ferr)
			} else if !ok {
				// Filtered listings were fully evaluated, so they count as
				// seen; the rule is not re-run for them every pass.
				if set.Add(item.ID) {
					changed = true
				}
				continue
			}
		}

		message := m.formatMessage(t.Adapter, item)
		if nerr := m.notifier.Notify(ctx, message, item); nerr != nil {
			logger.Error("notification failed", "item_id", item.ID, "title", item.Title, "error", nerr)
		} else {
			logger.Info("notified", "item_id", item.ID, "title", item.Title, "price", item.Price)
		}
		// Seen is marked whether or not delivery worked: a persistently
		// failing channel must not turn into a storm of retries for the
		// same listings on every pass.
		if set.Add(item.ID) {
			changed = true
		}
	}

	if changed {
		if serr := t.Store.Save(); serr != nil {
			logger.Error("saving seen state failed, will retry next pass", "error", serr)
		}
	}
}

func (m *Monitor) formatMessage(adapter sites.Adapter, item core.Item) string {
	if f, ok := adapter.(sites.MessageFormatter); ok {
		return f.FormatMessage(item)
	}
	return notify.FormatMessage(adapter.Name(), item)
}

func (m *Monitor) sleep(ctx context.Context) bool {
	if m.pace <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(m.pace)
	select {
	case <-ctx.Done():
		timer.Stop()
		return false
	case <-timer.C:
		return true
	}
}
