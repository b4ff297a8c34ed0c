// Package trigger schedules monitoring passes.
package trigger

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Event marks that a monitoring pass is due.
type Event struct {
	Timestamp time.Time
}

// Cron emits an Event on each schedule tick. Events are dropped rather
// than queued while a pass is still running; the next tick covers the
// same ground anyway.
type Cron struct {
	schedule string
	timezone string
	cron     *cron.Cron
	events   chan Event
}

func NewCron(schedule, timezone string) *Cron {
	return &Cron{schedule: schedule, timezone: timezone}
}

func (c *Cron) Start(ctx context.Context) (<-chan Event, error) {
	if c.schedule == "" {
		return nil, fmt.Errorf("cron schedule is required")
	}
	location := time.Local
	if c.timezone != "" {
		tz, err := time.LoadLocation(c.timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid timezone %q: %w", c.timezone, err)
		}
		location = tz
	}

	c.events = make(chan Event, 1)
	c.cron = cron.New(cron.WithLocation(location))
	if _, err := c.cron.AddFunc(c.schedule, func() {
		select {
		case c.events <- Event{Timestamp: time.Now().UTC()}:
		default:
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid cron schedule %q: %w", c.schedule, err)
	}
	c.cron.Start()

	go func() {
		<-ctx.Done()
		c.Stop()
	}()

	return c.events, nil
}

func (c *Cron) Stop() {
	if c.cron != nil {
		<-c.cron.Stop().Done()
		c.cron = nil
	}
	if c.events != nil {
		close(c.events)
		c.events = nil
	}
}
