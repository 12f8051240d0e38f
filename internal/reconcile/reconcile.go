// Package reconcile implements the periodic read-fire-write sweep over the
// scheduled-message collection and the daily digest trigger.
//
// Both run on an external tick expected at least once per minute. Delivery
// is best-effort: a failed send is logged and the sweep continues, with no
// retry, backoff, or dead-letter. If the tick cadence is coarser than a
// minute, digests and reminders degrade by being missed, not duplicated.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taskbell/taskbell/internal/clock"
	"github.com/taskbell/taskbell/internal/store"
	"github.com/taskbell/taskbell/internal/telegram"
)

// DefaultTolerance is the maximum lateness after its target instant during
// which a due entry is still delivered.
const DefaultTolerance = 120 * time.Second

// digestHours are the local day-partition marks at which the digest fires.
var digestHours = map[int]bool{0: true, 6: true, 12: true, 18: true}

// Opts holds configuration options for the reconciler.
type Opts struct {
	// Tolerance is the lateness window for due entries.
	Tolerance time.Duration
	// DeliverMissed delivers entries missed by more than the tolerance
	// window once, late, with a "(late)" annotation, instead of silently
	// dropping them.
	DeliverMissed bool
}

// Option defines a configuration option for the reconciler.
type Option func(*Opts)

// WithTolerance sets the lateness window for due entries.
func WithTolerance(d time.Duration) Option {
	return func(o *Opts) { o.Tolerance = d }
}

// WithDeliverMissed enables late delivery of entries missed by more than the
// tolerance window.
func WithDeliverMissed(enabled bool) Option {
	return func(o *Opts) { o.DeliverMissed = enabled }
}

// Reconciler sweeps the scheduled-message collection and emits the daily
// task digest.
type Reconciler struct {
	acc           *store.Accessor
	notifier      telegram.Notifier
	clock         *clock.Clock
	tolerance     time.Duration
	deliverMissed bool
}

// New creates a reconciler.
func New(acc *store.Accessor, notifier telegram.Notifier, clk *clock.Clock, opts ...Option) *Reconciler {
	cfg := Opts{Tolerance: DefaultTolerance}
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("Creating reconciler", "tolerance", cfg.Tolerance, "deliver_missed", cfg.DeliverMissed)
	return &Reconciler{
		acc:           acc,
		notifier:      notifier,
		clock:         clk,
		tolerance:     cfg.Tolerance,
		deliverMissed: cfg.DeliverMissed,
	}
}

// Tick runs one reconciliation pass: the scheduled-message sweep followed by
// the daily digest check. Store failures abort the tick; delivery failures
// do not.
func (r *Reconciler) Tick(ctx context.Context) error {
	if err := r.Sweep(ctx); err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}
	if err := r.Digest(ctx); err != nil {
		return fmt.Errorf("digest failed: %w", err)
	}
	return nil
}

// Sweep partitions the scheduled-message collection into due, future, and
// expired-without-firing entries. Due entries are delivered best-effort;
// only future entries are persisted back, so both delivered and missed
// entries leave the collection. Entries missed by more than the tolerance
// window are dropped without delivery unless DeliverMissed is set.
func (r *Reconciler) Sweep(ctx context.Context) error {
	msgs, err := r.acc.ScheduledMessages(ctx)
	if err != nil {
		return fmt.Errorf("failed to load scheduled messages: %w", err)
	}

	now := r.clock.Now().Unix()
	oldest := now - int64(r.tolerance.Seconds())

	var due, future, missed []int
	for i, m := range msgs {
		switch {
		case m.ScheduleTime > now:
			future = append(future, i)
		case m.ScheduleTime >= oldest:
			due = append(due, i)
		default:
			missed = append(missed, i)
		}
	}
	slog.Debug("Sweep partitioned scheduled messages", "total", len(msgs), "due", len(due), "future", len(future), "missed", len(missed))

	for _, i := range due {
		m := msgs[i]
		if err := r.notifier.SendText(ctx, m.ChatID, m.Text); err != nil {
			slog.Error("Failed to deliver scheduled message", "error", err, "chat_id", m.ChatID, "entry_id", m.ID)
			continue
		}
		slog.Info("Delivered scheduled message", "chat_id", m.ChatID, "entry_id", m.ID, "late_seconds", now-m.ScheduleTime)
	}

	if r.deliverMissed {
		for _, i := range missed {
			m := msgs[i]
			if err := r.notifier.SendText(ctx, m.ChatID, m.Text+" (late)"); err != nil {
				slog.Error("Failed to deliver missed scheduled message", "error", err, "chat_id", m.ChatID, "entry_id", m.ID)
				continue
			}
			slog.Warn("Delivered scheduled message late", "chat_id", m.ChatID, "entry_id", m.ID, "late_seconds", now-m.ScheduleTime)
		}
	} else if len(missed) > 0 {
		slog.Warn("Dropping scheduled messages missed beyond tolerance", "count", len(missed))
	}

	remaining := msgs[:0:0]
	for _, i := range future {
		remaining = append(remaining, msgs[i])
	}
	if err := r.acc.SaveScheduledMessages(ctx, remaining); err != nil {
		return fmt.Errorf("failed to save scheduled messages: %w", err)
	}

	return r.pruneReminders(ctx, now)
}

// pruneReminders removes reminders whose target instant has passed, i.e.
// whose final ("now") cascade entry has fired or been dropped by this sweep.
func (r *Reconciler) pruneReminders(ctx context.Context, now int64) error {
	reminders, err := r.acc.Reminders(ctx)
	if err != nil {
		return fmt.Errorf("failed to load reminders: %w", err)
	}

	kept := reminders[:0:0]
	for _, rem := range reminders {
		parts := strings.SplitN(rem.DateTime, " ", 2)
		if len(parts) != 2 {
			slog.Warn("Dropping reminder with malformed date/time", "reminder_id", rem.ID, "datetime", rem.DateTime)
			continue
		}
		target, err := r.clock.ToAbsolute(parts[0], parts[1])
		if err != nil {
			slog.Warn("Dropping reminder with unparseable date/time", "reminder_id", rem.ID, "datetime", rem.DateTime)
			continue
		}
		if target.Unix() <= now {
			slog.Debug("Pruning completed reminder", "reminder_id", rem.ID, "chat_id", rem.ChatID)
			continue
		}
		kept = append(kept, rem)
	}

	if len(kept) == len(reminders) {
		return nil
	}
	if err := r.acc.SaveReminders(ctx, kept); err != nil {
		return fmt.Errorf("failed to save reminders: %w", err)
	}
	return nil
}

// Digest checks whether local time sits exactly on a day-partition mark
// (hours 0, 6, 12, 18 at minute 0) and, if so, sends every registered chat
// with a non-empty task list one summary message. There is no persisted
// fired-slot marker: a skipped minute means a skipped digest.
func (r *Reconciler) Digest(ctx context.Context) error {
	local := r.clock.LocalNow()
	if !digestHours[local.Hour()] || local.Minute() != 0 {
		return nil
	}
	slog.Info("Digest slot reached", "hour", local.Hour())

	users, err := r.acc.Users(ctx)
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}

	for _, chatID := range users {
		tasks, err := r.acc.Tasks(ctx, chatID)
		if err != nil {
			return fmt.Errorf("failed to load tasks for chat %d: %w", chatID, err)
		}
		if len(tasks) == 0 {
			continue
		}

		var b strings.Builder
		b.WriteString("⏰ Daily Task Alert:\n\n")
		for i, task := range tasks {
			fmt.Fprintf(&b, "%d. %s", i+1, task.Text)
			if task.Deadline != "" {
				fmt.Fprintf(&b, " 📅 %s (%s)", task.Deadline, r.clock.DaysUntil(task.Deadline))
			}
			b.WriteString("\n")
		}

		if err := r.notifier.SendText(ctx, chatID, b.String()); err != nil {
			slog.Error("Failed to deliver daily digest", "error", err, "chat_id", chatID)
			continue
		}
		slog.Debug("Delivered daily digest", "chat_id", chatID, "tasks", len(tasks))
	}
	return nil
}
