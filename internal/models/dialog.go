// Package models defines the core data structures for TaskBell.
//
// This file defines the dialog state machine for multi-step input wizards.
package models

// DialogKind names the step a chat is currently at in a multi-step wizard.
type DialogKind string

const (
	// DialogAwaitingTaskText waits for the text of a new task (/add).
	DialogAwaitingTaskText DialogKind = "awaiting_task_text"
	// DialogAwaitingReminderText waits for the text of a custom reminder (/setreminder).
	DialogAwaitingReminderText DialogKind = "awaiting_reminder_text"
	// DialogAwaitingReminderDate waits for a calendar date pick; Text is set.
	DialogAwaitingReminderDate DialogKind = "awaiting_reminder_date"
	// DialogAwaitingReminderTime waits for a typed HH:MM; Text and Date are set.
	DialogAwaitingReminderTime DialogKind = "awaiting_reminder_time"
	// DialogAwaitingTaskReminderDate waits for a calendar date pick; TaskID is set.
	DialogAwaitingTaskReminderDate DialogKind = "awaiting_task_reminder_date"
	// DialogAwaitingTaskReminderTime waits for a typed HH:MM; TaskID and Date are set.
	DialogAwaitingTaskReminderTime DialogKind = "awaiting_task_reminder_time"
)

// DialogState is the persisted wizard position for one chat. Only the fields
// named by the Kind's doc comment are meaningful; all others are zero.
type DialogState struct {
	Kind   DialogKind `json:"kind"`
	Text   string     `json:"text,omitempty"`
	Date   string     `json:"date,omitempty"` // "YYYY-MM-DD"
	TaskID int64      `json:"taskId,omitempty"`
}

// AwaitsDate reports whether the state is waiting on a calendar date pick.
func (s *DialogState) AwaitsDate() bool {
	return s.Kind == DialogAwaitingReminderDate || s.Kind == DialogAwaitingTaskReminderDate
}

// AwaitsTime reports whether the state is waiting on a typed HH:MM time.
func (s *DialogState) AwaitsTime() bool {
	return s.Kind == DialogAwaitingReminderTime || s.Kind == DialogAwaitingTaskReminderTime
}
