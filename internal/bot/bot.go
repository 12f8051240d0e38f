// Package bot implements inbound event handling for TaskBell: command
// dispatch, inline-keyboard callbacks, and the multi-step input wizards for
// tasks and reminders.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/taskbell/taskbell/internal/cascade"
	"github.com/taskbell/taskbell/internal/clock"
	"github.com/taskbell/taskbell/internal/models"
	"github.com/taskbell/taskbell/internal/reconcile"
	"github.com/taskbell/taskbell/internal/store"
	"github.com/taskbell/taskbell/internal/telegram"
)

// overdueGrace is how far past its target a reminder may be before the
// listing pass prunes it.
const overdueGrace = 5 * time.Minute

const welcomeText = "Welcome to Todo List Bot!\n\n" +
	"📝 Commands:\n\n" +
	"1️⃣ /add - Add a new task\n" +
	"Example: /add Buy groceries\n\n" +
	"2️⃣ /list - Show all your tasks\n" +
	"Example: /list\n\n" +
	"3️⃣ /deadline - Set deadline for a task\n" +
	"Example: /deadline 1 2025-10-20\n" +
	"(Sets deadline for task #1)\n\n" +
	"4️⃣ /reminder - Show all your reminders\n" +
	"5️⃣ /setreminder - Set new custom reminder\n\n" +
	"✅ Click the Done button under any task to complete it\n\n" +
	"⏰ You will receive reminders at 12 AM, 6 AM, and 6 PM daily"

// Handler processes inbound updates. Each invocation runs one logical task
// to completion; there is no locking beyond the store's last-write-wins.
type Handler struct {
	acc        *store.Accessor
	notifier   telegram.Notifier
	clock      *clock.Clock
	engine     *cascade.Engine
	reconciler *reconcile.Reconciler
}

// New creates a Handler wired to its collaborators.
func New(acc *store.Accessor, notifier telegram.Notifier, clk *clock.Clock, engine *cascade.Engine, rec *reconcile.Reconciler) *Handler {
	return &Handler{
		acc:        acc,
		notifier:   notifier,
		clock:      clk,
		engine:     engine,
		reconciler: rec,
	}
}

// HandleUpdate dispatches one inbound webhook event.
func (h *Handler) HandleUpdate(ctx context.Context, upd models.Update) error {
	switch {
	case upd.Message != nil:
		return h.handleMessage(ctx, *upd.Message)
	case upd.CallbackQuery != nil:
		return h.handleCallback(ctx, *upd.CallbackQuery)
	default:
		slog.Debug("Ignoring update with no message or callback", "update_id", upd.UpdateID)
		return nil
	}
}

func (h *Handler) handleMessage(ctx context.Context, msg models.Message) error {
	chatID := msg.Chat.ID
	text := msg.Text
	slog.Debug("Handling message", "chat_id", chatID, "text_len", len(text))

	if err := h.acc.RegisterUser(ctx, chatID); err != nil {
		return fmt.Errorf("failed to register chat %d: %w", chatID, err)
	}

	st, err := h.acc.DialogState(ctx, chatID)
	if err != nil {
		return fmt.Errorf("failed to load dialog state for chat %d: %w", chatID, err)
	}
	if st != nil && !strings.HasPrefix(text, "/") {
		return h.advanceDialog(ctx, chatID, *st, text)
	}

	return h.handleCommand(ctx, chatID, text)
}

func (h *Handler) handleCommand(ctx context.Context, chatID int64, text string) error {
	switch {
	case text == "/start":
		return h.notify(ctx, chatID, welcomeText)

	case text == "/add":
		if err := h.acc.SetDialogState(ctx, chatID, models.DialogState{Kind: models.DialogAwaitingTaskText}); err != nil {
			return err
		}
		return h.notify(ctx, chatID, "Type your task:")

	case strings.HasPrefix(text, "/add "):
		taskText := strings.TrimSpace(text[len("/add "):])
		if taskText == "" {
			return nil
		}
		if err := h.addTask(ctx, chatID, taskText); err != nil {
			return err
		}
		return h.notify(ctx, chatID, fmt.Sprintf("✅ Task added: %s", taskText))

	case text == "/list":
		return h.listTasks(ctx, chatID)

	case text == "/reminder":
		return h.listReminders(ctx, chatID)

	case text == "/setreminder":
		if err := h.acc.SetDialogState(ctx, chatID, models.DialogState{Kind: models.DialogAwaitingReminderText}); err != nil {
			return err
		}
		return h.notify(ctx, chatID, "Type your reminder text:")

	case strings.HasPrefix(text, "/deadline "):
		return h.setDeadline(ctx, chatID, strings.TrimSpace(text[len("/deadline "):]))

	case text == "/testreminders":
		if err := h.reconciler.Sweep(ctx); err != nil {
			return err
		}
		return h.notify(ctx, chatID, "Reminder check completed")

	case text == "/forcecheck":
		msgs, err := h.acc.ScheduledMessages(ctx)
		if err != nil {
			return err
		}
		if err := h.reconciler.Sweep(ctx); err != nil {
			return err
		}
		return h.notify(ctx, chatID, fmt.Sprintf("Checked %d scheduled messages", len(msgs)))

	case text == "/debugreminders":
		return h.debugReminders(ctx, chatID)

	default:
		slog.Debug("Ignoring unknown command or stray text", "chat_id", chatID)
		return nil
	}
}

func (h *Handler) handleCallback(ctx context.Context, cb models.CallbackQuery) error {
	if cb.Message == nil {
		slog.Debug("Ignoring callback without originating message", "callback_id", cb.ID)
		return nil
	}
	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID
	data := cb.Data
	slog.Debug("Handling callback", "chat_id", chatID, "data", data)

	switch {
	case strings.HasPrefix(data, "done_"):
		taskID, err := strconv.ParseInt(data[len("done_"):], 10, 64)
		if err != nil {
			return h.answer(ctx, cb.ID, "Unknown task")
		}
		if err := h.removeTask(ctx, chatID, taskID); err != nil {
			return err
		}
		if err := h.answer(ctx, cb.ID, "Task completed!"); err != nil {
			return err
		}
		if err := h.notifier.DeleteMessage(ctx, chatID, messageID); err != nil {
			slog.Error("Failed to delete completed task message", "error", err, "chat_id", chatID, "message_id", messageID)
		}
		return nil

	case strings.HasPrefix(data, "reminder_"):
		taskID, err := strconv.ParseInt(data[len("reminder_"):], 10, 64)
		if err != nil {
			return h.answer(ctx, cb.ID, "Unknown task")
		}
		st := models.DialogState{Kind: models.DialogAwaitingTaskReminderDate, TaskID: taskID}
		if err := h.acc.SetDialogState(ctx, chatID, st); err != nil {
			return err
		}
		if err := h.answer(ctx, cb.ID, "Select reminder time:"); err != nil {
			return err
		}
		local := h.clock.LocalNow()
		return h.sendCalendar(ctx, chatID, local.Year(), local.Month())

	case strings.HasPrefix(data, "calendar_"):
		return h.handleDateSelection(ctx, chatID, data[len("calendar_"):])

	case strings.HasPrefix(data, "time_"):
		return h.handleTimeSelection(ctx, chatID, data[len("time_"):])

	case strings.HasPrefix(data, "month_"):
		return h.handleMonthChange(ctx, chatID, data[len("month_"):])

	default:
		// Filler cells and unknown buttons are no-ops.
		return nil
	}
}

func (h *Handler) addTask(ctx context.Context, chatID int64, text string) error {
	task := models.Task{
		ID:      time.Now().UnixMilli(),
		Text:    text,
		Created: time.Now(),
	}
	if err := task.Validate(); err != nil {
		return err
	}

	tasks, err := h.acc.Tasks(ctx, chatID)
	if err != nil {
		return err
	}
	tasks = append(tasks, task)
	if err := h.acc.SaveTasks(ctx, chatID, tasks); err != nil {
		return err
	}
	slog.Info("Task added", "chat_id", chatID, "task_id", task.ID)
	return nil
}

func (h *Handler) removeTask(ctx context.Context, chatID, taskID int64) error {
	tasks, err := h.acc.Tasks(ctx, chatID)
	if err != nil {
		return err
	}
	kept := tasks[:0:0]
	for _, t := range tasks {
		if t.ID != taskID {
			kept = append(kept, t)
		}
	}
	if err := h.acc.SaveTasks(ctx, chatID, kept); err != nil {
		return err
	}
	slog.Info("Task removed", "chat_id", chatID, "task_id", taskID)
	return nil
}

func (h *Handler) setDeadline(ctx context.Context, chatID int64, args string) error {
	parts := strings.Fields(args)
	if len(parts) < 2 {
		return h.notify(ctx, chatID, "Usage: /deadline <task_number> <date>")
	}
	num, err := strconv.Atoi(parts[0])
	if err != nil {
		return h.notify(ctx, chatID, "❌ Invalid task number. Use /list to see task numbers.")
	}
	deadline := strings.Join(parts[1:], " ")

	tasks, err := h.acc.Tasks(ctx, chatID)
	if err != nil {
		return err
	}
	if num < 1 || num > len(tasks) {
		return h.notify(ctx, chatID, "❌ Invalid task number. Use /list to see task numbers.")
	}
	tasks[num-1].Deadline = deadline
	if err := h.acc.SaveTasks(ctx, chatID, tasks); err != nil {
		return err
	}
	if err := h.notify(ctx, chatID, fmt.Sprintf("✅ Deadline set for task %d: %s", num, deadline)); err != nil {
		return err
	}
	return h.listTasks(ctx, chatID)
}

// listTasks sends one message per task so each carries its own action
// buttons.
func (h *Handler) listTasks(ctx context.Context, chatID int64) error {
	tasks, err := h.acc.Tasks(ctx, chatID)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		return h.notify(ctx, chatID, "No tasks yet. Use /add to create one!")
	}

	for i, task := range tasks {
		text := fmt.Sprintf("%d. %s", i+1, task.Text)
		if task.Deadline != "" {
			text += fmt.Sprintf("\n📅 Deadline: %s (%s)", task.Deadline, h.clock.DaysUntil(task.Deadline))
		}
		keyboard := models.InlineKeyboardMarkup{
			InlineKeyboard: [][]models.InlineKeyboardButton{{
				{Text: "✅ Done", CallbackData: fmt.Sprintf("done_%d", task.ID)},
				{Text: "⏰ Remind me", CallbackData: fmt.Sprintf("reminder_%d", task.ID)},
			}},
		}
		if err := h.notifier.SendKeyboard(ctx, chatID, text, keyboard); err != nil {
			slog.Error("Failed to send task entry", "error", err, "chat_id", chatID, "task_id", task.ID)
		}
	}
	return nil
}

// listReminders renders the chat's reminders with time-left annotations,
// pruning entries more than five minutes past their target on the way.
func (h *Handler) listReminders(ctx context.Context, chatID int64) error {
	reminders, err := h.acc.Reminders(ctx)
	if err != nil {
		return err
	}

	now := h.clock.Now()
	var active []models.Reminder
	overdue := 0
	kept := reminders[:0:0]
	for _, rem := range reminders {
		if rem.ChatID != chatID {
			kept = append(kept, rem)
			continue
		}
		target, err := h.reminderTarget(rem)
		if err != nil || now.Sub(target) > overdueGrace {
			overdue++
			continue
		}
		active = append(active, rem)
		kept = append(kept, rem)
	}

	if overdue > 0 {
		if err := h.acc.SaveReminders(ctx, kept); err != nil {
			return err
		}
		if err := h.notify(ctx, chatID, fmt.Sprintf("🗑️ Removed %d overdue reminder(s)", overdue)); err != nil {
			return err
		}
	}

	if len(active) == 0 {
		return h.notify(ctx, chatID, "No active reminders. Use /setreminder to create one.")
	}

	var b strings.Builder
	b.WriteString("📅 Your Reminders:\n\n")
	for i, rem := range active {
		target, _ := h.reminderTarget(rem)
		label := "Task reminder"
		if rem.IsCustom {
			label = rem.Text
		} else if task := h.findTask(ctx, chatID, rem.TaskID); task != nil {
			label = task.Text
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, label)
		fmt.Fprintf(&b, "   📅 %s (%s)\n", rem.DateTime, rem.Timezone)
		fmt.Fprintf(&b, "   ⏰ %s\n\n", formatTimeLeft(target.Sub(now)))
	}
	b.WriteString("Use /setreminder to add new reminder")

	return h.notify(ctx, chatID, b.String())
}

func (h *Handler) debugReminders(ctx context.Context, chatID int64) error {
	msgs, err := h.acc.ScheduledMessages(ctx)
	if err != nil {
		return err
	}
	now := h.clock.Now().Unix()

	var b strings.Builder
	fmt.Fprintf(&b, "Total scheduled: %d\n\n", len(msgs))
	for i, m := range msgs {
		if i >= 5 {
			break
		}
		text := m.Text
		if runes := []rune(text); len(runes) > 30 {
			text = string(runes[:30])
		}
		fmt.Fprintf(&b, "- %s\n  Time: %d\n  Left: %d mins\n\n", text, m.ScheduleTime, (m.ScheduleTime-now)/60)
	}
	return h.notify(ctx, chatID, b.String())
}

// reminderTarget converts a reminder's local date/time string to an absolute
// instant.
func (h *Handler) reminderTarget(rem models.Reminder) (time.Time, error) {
	parts := strings.SplitN(rem.DateTime, " ", 2)
	if len(parts) != 2 {
		return time.Time{}, models.ErrInvalidDate
	}
	return h.clock.ToAbsolute(parts[0], parts[1])
}

func (h *Handler) findTask(ctx context.Context, chatID, taskID int64) *models.Task {
	tasks, err := h.acc.Tasks(ctx, chatID)
	if err != nil {
		return nil
	}
	for i := range tasks {
		if tasks[i].ID == taskID {
			return &tasks[i]
		}
	}
	return nil
}

// formatTimeLeft renders the remaining duration the way the reminder listing
// shows it.
func formatTimeLeft(d time.Duration) string {
	if d < 0 {
		return "In progress"
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%d days, %d hours left", days, hours)
	case hours > 0:
		return fmt.Sprintf("%d hours, %d minutes left", hours, minutes)
	default:
		return fmt.Sprintf("%d minutes left", minutes)
	}
}

// notify sends text best-effort and reports the failure to the caller.
func (h *Handler) notify(ctx context.Context, chatID int64, text string) error {
	if err := h.notifier.SendText(ctx, chatID, text); err != nil {
		slog.Error("Failed to send message", "error", err, "chat_id", chatID)
		return err
	}
	return nil
}

func (h *Handler) answer(ctx context.Context, callbackID, text string) error {
	if err := h.notifier.AnswerCallback(ctx, callbackID, text); err != nil {
		slog.Error("Failed to answer callback", "error", err, "callback_id", callbackID)
		return err
	}
	return nil
}
