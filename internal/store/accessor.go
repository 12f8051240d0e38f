// Package store provides storage backends for TaskBell.
//
// This file implements the typed accessor over the key-value backend. Each
// logical collection lives under one key and is serialized as JSON; every
// write is a full-collection overwrite of that key (last write wins).
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/taskbell/taskbell/internal/models"
)

// Keys for the logical collections.
const (
	usersKey     = "users"
	remindersKey = "reminders"
	scheduledKey = "scheduled_messages"
)

func taskKey(chatID int64) string {
	return fmt.Sprintf("tasks_%d", chatID)
}

func waitingKey(chatID int64) string {
	return fmt.Sprintf("waiting_%d", chatID)
}

// Accessor provides typed get/set/delete over a Store for the bot's
// collections: per-chat task lists, the registered-user set, reminders,
// scheduled messages, and per-chat dialog state.
type Accessor struct {
	store Store
}

// NewAccessor creates an Accessor backed by the given Store.
func NewAccessor(st Store) *Accessor {
	slog.Debug("Creating store accessor")
	return &Accessor{store: st}
}

func (a *Accessor) getJSON(ctx context.Context, key string, out any) (bool, error) {
	data, err := a.store.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		slog.Error("Accessor failed to decode stored value", "error", err, "key", key)
		return false, fmt.Errorf("failed to decode value for key %s: %w", key, err)
	}
	return true, nil
}

func (a *Accessor) putJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode value for key %s: %w", key, err)
	}
	return a.store.Put(ctx, key, data)
}

// Tasks returns the task list for a chat, empty when none exists.
func (a *Accessor) Tasks(ctx context.Context, chatID int64) ([]models.Task, error) {
	var tasks []models.Task
	if _, err := a.getJSON(ctx, taskKey(chatID), &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// SaveTasks overwrites the task list for a chat.
func (a *Accessor) SaveTasks(ctx context.Context, chatID int64, tasks []models.Task) error {
	if tasks == nil {
		tasks = []models.Task{}
	}
	return a.putJSON(ctx, taskKey(chatID), tasks)
}

// Users returns the registered chat identifiers.
func (a *Accessor) Users(ctx context.Context) ([]int64, error) {
	var users []int64
	if _, err := a.getJSON(ctx, usersKey, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// RegisterUser adds a chat identifier to the registry if not yet present.
func (a *Accessor) RegisterUser(ctx context.Context, chatID int64) error {
	users, err := a.Users(ctx)
	if err != nil {
		return err
	}
	for _, id := range users {
		if id == chatID {
			return nil
		}
	}
	users = append(users, chatID)
	slog.Debug("Registering new chat", "chat_id", chatID, "total_users", len(users))
	return a.putJSON(ctx, usersKey, users)
}

// Reminders returns the global reminder collection.
func (a *Accessor) Reminders(ctx context.Context) ([]models.Reminder, error) {
	var reminders []models.Reminder
	if _, err := a.getJSON(ctx, remindersKey, &reminders); err != nil {
		return nil, err
	}
	return reminders, nil
}

// SaveReminders overwrites the global reminder collection.
func (a *Accessor) SaveReminders(ctx context.Context, reminders []models.Reminder) error {
	if reminders == nil {
		reminders = []models.Reminder{}
	}
	return a.putJSON(ctx, remindersKey, reminders)
}

// ScheduledMessages returns the global scheduled-message collection.
func (a *Accessor) ScheduledMessages(ctx context.Context) ([]models.ScheduledMessage, error) {
	var msgs []models.ScheduledMessage
	if _, err := a.getJSON(ctx, scheduledKey, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// SaveScheduledMessages overwrites the global scheduled-message collection.
func (a *Accessor) SaveScheduledMessages(ctx context.Context, msgs []models.ScheduledMessage) error {
	if msgs == nil {
		msgs = []models.ScheduledMessage{}
	}
	return a.putJSON(ctx, scheduledKey, msgs)
}

// DialogState returns the current wizard state for a chat, nil when the chat
// is not inside a wizard.
func (a *Accessor) DialogState(ctx context.Context, chatID int64) (*models.DialogState, error) {
	var st models.DialogState
	found, err := a.getJSON(ctx, waitingKey(chatID), &st)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &st, nil
}

// SetDialogState overwrites the wizard state for a chat.
func (a *Accessor) SetDialogState(ctx context.Context, chatID int64, st models.DialogState) error {
	slog.Debug("Setting dialog state", "chat_id", chatID, "kind", st.Kind)
	return a.putJSON(ctx, waitingKey(chatID), st)
}

// ClearDialogState removes the wizard state for a chat.
func (a *Accessor) ClearDialogState(ctx context.Context, chatID int64) error {
	slog.Debug("Clearing dialog state", "chat_id", chatID)
	return a.store.Delete(ctx, waitingKey(chatID))
}
