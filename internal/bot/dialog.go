// Package bot implements inbound event handling for TaskBell.
//
// This file is the wizard transition function: it maps (current dialog
// state, input) to (next state, side effects). Illegal combinations answer
// with a corrective prompt and leave the state unchanged.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"time"

	"github.com/taskbell/taskbell/internal/models"
)

var clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// parseClockTime validates a typed "HH:MM" string and returns it
// zero-padded.
func parseClockTime(text string) (string, error) {
	m := clockPattern.FindStringSubmatch(text)
	if m == nil {
		return "", models.ErrInvalidTime
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	if hours > 23 || minutes > 59 {
		return "", models.ErrInvalidTime
	}
	return fmt.Sprintf("%02d:%02d", hours, minutes), nil
}

// advanceDialog consumes one typed input for a chat inside a wizard.
func (h *Handler) advanceDialog(ctx context.Context, chatID int64, st models.DialogState, input string) error {
	slog.Debug("Advancing dialog", "chat_id", chatID, "kind", st.Kind)

	switch st.Kind {
	case models.DialogAwaitingTaskText:
		if err := h.addTask(ctx, chatID, input); err != nil {
			return err
		}
		if err := h.acc.ClearDialogState(ctx, chatID); err != nil {
			return err
		}
		return h.notify(ctx, chatID, fmt.Sprintf("✅ Task added: %s", input))

	case models.DialogAwaitingReminderText:
		next := models.DialogState{Kind: models.DialogAwaitingReminderDate, Text: input}
		if err := h.acc.SetDialogState(ctx, chatID, next); err != nil {
			return err
		}
		if err := h.notify(ctx, chatID, fmt.Sprintf("Reminder text: %q\n\nNow select date:", input)); err != nil {
			return err
		}
		local := h.clock.LocalNow()
		return h.sendCalendar(ctx, chatID, local.Year(), local.Month())

	case models.DialogAwaitingReminderTime, models.DialogAwaitingTaskReminderTime:
		timeStr, err := parseClockTime(input)
		if err != nil {
			if clockPattern.MatchString(input) {
				return h.notify(ctx, chatID, "Invalid time. Hours: 0-23, Minutes: 0-59")
			}
			return h.notify(ctx, chatID, "Invalid time format. Use HH:MM (e.g., 10:45 or 22:30)")
		}
		return h.completeReminder(ctx, chatID, st, timeStr)

	case models.DialogAwaitingReminderDate, models.DialogAwaitingTaskReminderDate:
		return h.notify(ctx, chatID, "Please pick a date from the calendar above")

	default:
		// Stale or unknown state tag: reset rather than trap the chat.
		if err := h.acc.ClearDialogState(ctx, chatID); err != nil {
			return err
		}
		return h.notify(ctx, chatID, "Error: No waiting state found")
	}
}

// handleDateSelection consumes a calendar_{YYYY-MM-DD} button press.
func (h *Handler) handleDateSelection(ctx context.Context, chatID int64, dateStr string) error {
	if _, err := time.Parse("2006-01-02", dateStr); err != nil {
		return h.notify(ctx, chatID, "Invalid date selected")
	}

	st, err := h.acc.DialogState(ctx, chatID)
	if err != nil {
		return err
	}
	if st == nil || !st.AwaitsDate() {
		return h.notify(ctx, chatID, "Error: No waiting state found")
	}

	next := *st
	next.Date = dateStr
	if st.Kind == models.DialogAwaitingReminderDate {
		next.Kind = models.DialogAwaitingReminderTime
	} else {
		next.Kind = models.DialogAwaitingTaskReminderTime
	}
	if err := h.acc.SetDialogState(ctx, chatID, next); err != nil {
		return err
	}
	return h.notify(ctx, chatID, fmt.Sprintf("Selected date: %s\n\nType time in HH:MM format (e.g., 12:30 or 22:30):", dateStr))
}

// handleTimeSelection consumes a time_{HH:MM} button press.
func (h *Handler) handleTimeSelection(ctx context.Context, chatID int64, timeStr string) error {
	parsed, err := parseClockTime(timeStr)
	if err != nil {
		return h.notify(ctx, chatID, "Invalid time format. Use HH:MM (e.g., 10:45 or 22:30)")
	}

	st, err := h.acc.DialogState(ctx, chatID)
	if err != nil {
		return err
	}
	if st == nil || !st.AwaitsTime() {
		return h.notify(ctx, chatID, "Error: No waiting state found")
	}
	return h.completeReminder(ctx, chatID, *st, parsed)
}

// handleMonthChange consumes a month_{m}_{y} navigation press and redraws
// the calendar.
func (h *Handler) handleMonthChange(ctx context.Context, chatID int64, monthData string) error {
	var month, year int
	if _, err := fmt.Sscanf(monthData, "%d_%d", &month, &year); err != nil || month < 1 || month > 12 {
		slog.Debug("Ignoring malformed month navigation", "chat_id", chatID, "data", monthData)
		return nil
	}
	return h.sendCalendar(ctx, chatID, year, time.Month(month))
}

// completeReminder finishes either wizard once date and time are known: it
// persists the Reminder, materializes the notification cascade, and clears
// the dialog state.
func (h *Handler) completeReminder(ctx context.Context, chatID int64, st models.DialogState, timeStr string) error {
	dateTime := st.Date + " " + timeStr
	target, err := h.clock.ToAbsolute(st.Date, timeStr)
	if err != nil {
		return h.notify(ctx, chatID, "Invalid date/time, please start over with /setreminder")
	}

	var payload string
	rem := models.Reminder{
		ID:       time.Now().UnixMilli(),
		ChatID:   chatID,
		DateTime: dateTime,
		Timezone: h.clock.Location().String(),
		Created:  time.Now(),
	}

	switch st.Kind {
	case models.DialogAwaitingReminderTime:
		rem.Text = st.Text
		rem.IsCustom = true
		payload = st.Text
	case models.DialogAwaitingTaskReminderTime:
		task := h.findTask(ctx, chatID, st.TaskID)
		if task == nil {
			if err := h.acc.ClearDialogState(ctx, chatID); err != nil {
				return err
			}
			return h.notify(ctx, chatID, "❌ Task not found. Use /list to see your tasks.")
		}
		rem.TaskID = st.TaskID
		payload = task.Text
	default:
		return h.notify(ctx, chatID, "Error: No waiting state found")
	}

	if err := rem.Validate(); err != nil {
		return err
	}

	reminders, err := h.acc.Reminders(ctx)
	if err != nil {
		return err
	}
	reminders = append(reminders, rem)
	if err := h.acc.SaveReminders(ctx, reminders); err != nil {
		return err
	}

	if err := h.engine.Schedule(ctx, chatID, payload, target); err != nil {
		return err
	}
	if err := h.acc.ClearDialogState(ctx, chatID); err != nil {
		return err
	}
	slog.Info("Reminder set", "chat_id", chatID, "reminder_id", rem.ID, "custom", rem.IsCustom, "target", target)

	if rem.IsCustom {
		return h.notify(ctx, chatID, fmt.Sprintf("✅ Custom reminder set: %q at %s (%s)", payload, dateTime, rem.Timezone))
	}
	return h.notify(ctx, chatID, fmt.Sprintf("✅ Reminder set for %q at %s (%s)", payload, dateTime, rem.Timezone))
}
