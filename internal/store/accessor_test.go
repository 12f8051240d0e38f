package store

import (
	"context"
	"testing"

	"github.com/taskbell/taskbell/internal/models"
)

func TestTasksRoundTrip(t *testing.T) {
	acc := NewAccessor(NewInMemoryStore())
	ctx := context.Background()

	tasks, err := acc.Tasks(ctx, 42)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("Expected empty task list for new chat, got %d", len(tasks))
	}

	want := []models.Task{{ID: 1, Text: "Buy milk", Deadline: "2099-01-01"}}
	if err := acc.SaveTasks(ctx, 42, want); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	got, err := acc.Tasks(ctx, 42)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(got) != 1 || got[0].Text != "Buy milk" || got[0].Deadline != "2099-01-01" {
		t.Errorf("Unexpected tasks after round trip: %+v", got)
	}

	// Task lists are keyed per chat
	other, _ := acc.Tasks(ctx, 43)
	if len(other) != 0 {
		t.Errorf("Expected chat 43 to have no tasks, got %d", len(other))
	}
}

func TestRegisterUserDeduplicates(t *testing.T) {
	acc := NewAccessor(NewInMemoryStore())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := acc.RegisterUser(ctx, 42); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}
	if err := acc.RegisterUser(ctx, 7); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	users, err := acc.Users(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(users) != 2 {
		t.Errorf("Expected 2 registered chats, got %v", users)
	}
}

func TestDialogStateLifecycle(t *testing.T) {
	acc := NewAccessor(NewInMemoryStore())
	ctx := context.Background()

	st, err := acc.DialogState(ctx, 42)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if st != nil {
		t.Errorf("Expected nil dialog state for new chat, got %+v", st)
	}

	want := models.DialogState{Kind: models.DialogAwaitingReminderTime, Text: "Pay rent", Date: "2025-10-21"}
	if err := acc.SetDialogState(ctx, 42, want); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	st, err = acc.DialogState(ctx, 42)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if st == nil || st.Kind != want.Kind || st.Text != want.Text || st.Date != want.Date {
		t.Errorf("Unexpected dialog state after round trip: %+v", st)
	}

	if err := acc.ClearDialogState(ctx, 42); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	st, _ = acc.DialogState(ctx, 42)
	if st != nil {
		t.Errorf("Expected dialog state cleared, got %+v", st)
	}
}

func TestRemindersAndScheduledMessagesRoundTrip(t *testing.T) {
	acc := NewAccessor(NewInMemoryStore())
	ctx := context.Background()

	reminders := []models.Reminder{{ID: 1, ChatID: 42, Text: "Pay rent", DateTime: "2025-10-21 14:30", IsCustom: true}}
	if err := acc.SaveReminders(ctx, reminders); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	gotRem, err := acc.Reminders(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(gotRem) != 1 || !gotRem[0].IsCustom {
		t.Errorf("Unexpected reminders after round trip: %+v", gotRem)
	}

	msgs := []models.ScheduledMessage{{ID: 2, ChatID: 42, Text: "ping", ScheduleTime: 100}}
	if err := acc.SaveScheduledMessages(ctx, msgs); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	gotMsgs, err := acc.ScheduledMessages(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(gotMsgs) != 1 || gotMsgs[0].ScheduleTime != 100 {
		t.Errorf("Unexpected scheduled messages after round trip: %+v", gotMsgs)
	}
}
