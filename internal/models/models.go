// Package models defines the core data structures for TaskBell.
//
// It includes types for tasks, reminders, materialized scheduled messages,
// and the dialog state machine, which are shared across modules.
package models

import (
	"errors"
	"time"
)

// Validation constants for input validation
const (
	// MaxTaskTextLength defines the maximum allowed length for task text
	MaxTaskTextLength = 4096
	// MaxReminderTextLength defines the maximum allowed length for custom reminder text
	MaxReminderTextLength = 4096
)

// Error variables for better error handling and testability
var (
	ErrEmptyTaskText       = errors.New("task text cannot be empty")
	ErrTaskTextTooLong     = errors.New("task text exceeds maximum length")
	ErrEmptyReminderText   = errors.New("reminder text cannot be empty")
	ErrReminderTextTooLong = errors.New("reminder text exceeds maximum length")
	ErrReminderShape       = errors.New("reminder must carry exactly one of task id or text")
	ErrTaskNotFound        = errors.New("task not found")
	ErrInvalidTaskNumber   = errors.New("invalid task number")
	ErrInvalidDate         = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidTime         = errors.New("invalid time, expected HH:MM")
	ErrNoDialogState       = errors.New("no dialog state found")
)

// Task is a single to-do item owned by one chat. The ID doubles as the
// creation timestamp in Unix milliseconds.
type Task struct {
	ID       int64     `json:"id"`
	Text     string    `json:"text"`
	Deadline string    `json:"deadline,omitempty"` // optional "YYYY-MM-DD"
	Created  time.Time `json:"created"`
}

// Validate checks a task for structural problems before it is persisted.
func (t *Task) Validate() error {
	if t.Text == "" {
		return ErrEmptyTaskText
	}
	if len(t.Text) > MaxTaskTextLength {
		return ErrTaskTextTooLong
	}
	return nil
}

// Reminder is a user-visible reminder registration. Task-linked reminders
// carry TaskID; custom reminders carry Text. IsCustom discriminates the two.
type Reminder struct {
	ID       int64     `json:"id"`
	ChatID   int64     `json:"chatId"`
	TaskID   int64     `json:"taskId,omitempty"`
	Text     string    `json:"text,omitempty"`
	DateTime string    `json:"dateTime"` // local "YYYY-MM-DD HH:MM"
	Timezone string    `json:"timezone"`
	IsCustom bool      `json:"isCustom"`
	Created  time.Time `json:"created"`
}

// Validate enforces the tagged-union shape: exactly one of TaskID/Text is
// populated, matching the IsCustom discriminator.
func (r *Reminder) Validate() error {
	if r.IsCustom {
		if r.Text == "" || r.TaskID != 0 {
			return ErrReminderShape
		}
		if len(r.Text) > MaxReminderTextLength {
			return ErrReminderTextTooLong
		}
		return nil
	}
	if r.TaskID == 0 || r.Text != "" {
		return ErrReminderShape
	}
	return nil
}

// ScheduledMessage is one materialized cascade entry: a message body plus the
// absolute Unix-seconds instant at which it becomes due.
//
// Sent is written false at creation and never read back before the entry is
// removed; it is retained for serialized compatibility with existing data.
type ScheduledMessage struct {
	ID           int64  `json:"id"`
	ChatID       int64  `json:"chatId"`
	Text         string `json:"text"`
	ScheduleTime int64  `json:"scheduleTime"`
	Sent         bool   `json:"sent"`
}
