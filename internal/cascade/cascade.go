// Package cascade materializes reminder notification cascades.
//
// Given a target instant and a payload, the engine computes the ordered set
// of lead-time fire instants (24h down to "now") and writes one scheduled
// message per lead time that is still in the future. Materialization is
// at-most-once per lead time: a cascade is never re-computed or retried once
// the call returns.
package cascade

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/taskbell/taskbell/internal/models"
	"github.com/taskbell/taskbell/internal/store"
)

// LeadTime is one notification offset before the target instant.
type LeadTime struct {
	Minutes int
	Label   string
}

// LeadTimes is the fixed ordered cascade, largest offset first.
var LeadTimes = []LeadTime{
	{1440, "24 hours"},
	{720, "12 hours"},
	{360, "6 hours"},
	{120, "2 hours"},
	{60, "1 hour"},
	{30, "30 minutes"},
	{15, "15 minutes"},
	{5, "5 minutes"},
	{1, "1 minute"},
	{0, "NOW"},
}

// FormatMessage renders the notification text for one lead time.
func FormatMessage(payload string, lt LeadTime) string {
	msg := fmt.Sprintf("🔔 REMINDER: %s", payload)
	if lt.Minutes > 0 {
		msg += fmt.Sprintf("\n⏰ %s left!", lt.Label)
	}
	return msg
}

// Opts holds configuration options for the engine.
type Opts struct {
	// Now overrides the wall-clock source, for tests.
	Now func() time.Time
}

// Option defines a configuration option for the engine.
type Option func(*Opts)

// WithNow overrides the wall-clock source.
func WithNow(now func() time.Time) Option {
	return func(o *Opts) { o.Now = now }
}

// Engine writes reminder cascades into the scheduled-message collection.
type Engine struct {
	acc *store.Accessor
	now func() time.Time
}

// NewEngine creates a cascade engine backed by the given accessor.
func NewEngine(acc *store.Accessor, opts ...Option) *Engine {
	cfg := Opts{Now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Engine{acc: acc, now: cfg.Now}
}

// Schedule materializes the cascade for one reminder. Lead times whose fire
// instant has already passed are silently skipped, so a target less than one
// minute away produces only the "now" entry and a target in the past
// produces nothing.
func (e *Engine) Schedule(ctx context.Context, chatID int64, payload string, target time.Time) error {
	msgs, err := e.acc.ScheduledMessages(ctx)
	if err != nil {
		return fmt.Errorf("failed to load scheduled messages: %w", err)
	}

	now := e.now()
	added := 0
	for _, lt := range LeadTimes {
		fireAt := target.Add(-time.Duration(lt.Minutes) * time.Minute)
		if !fireAt.After(now) {
			continue
		}
		msgs = append(msgs, models.ScheduledMessage{
			ID:           newEntryID(),
			ChatID:       chatID,
			Text:         FormatMessage(payload, lt),
			ScheduleTime: fireAt.Unix(),
			Sent:         false,
		})
		added++
	}

	if err := e.acc.SaveScheduledMessages(ctx, msgs); err != nil {
		return fmt.Errorf("failed to save scheduled messages: %w", err)
	}
	slog.Debug("Cascade materialized", "chat_id", chatID, "target", target, "entries", added)
	return nil
}

// newEntryID builds an id from the creation instant plus random jitter so
// two entries created in the same nanosecond tick cannot collide.
func newEntryID() int64 {
	return time.Now().UnixNano() + rand.Int64N(1<<16)
}
