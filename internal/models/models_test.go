package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestTaskValidate(t *testing.T) {
	task := Task{ID: 1, Text: "Buy milk"}
	if err := task.Validate(); err != nil {
		t.Errorf("Expected valid task, got %v", err)
	}

	task.Text = ""
	if err := task.Validate(); err != ErrEmptyTaskText {
		t.Errorf("Expected ErrEmptyTaskText, got %v", err)
	}

	task.Text = strings.Repeat("x", MaxTaskTextLength+1)
	if err := task.Validate(); err != ErrTaskTextTooLong {
		t.Errorf("Expected ErrTaskTextTooLong, got %v", err)
	}
}

func TestReminderValidateShape(t *testing.T) {
	cases := []struct {
		name    string
		rem     Reminder
		wantErr bool
	}{
		{"valid custom", Reminder{IsCustom: true, Text: "Pay rent"}, false},
		{"valid task-linked", Reminder{IsCustom: false, TaskID: 5}, false},
		{"custom without text", Reminder{IsCustom: true}, true},
		{"custom with task id", Reminder{IsCustom: true, Text: "x", TaskID: 5}, true},
		{"task-linked without task id", Reminder{IsCustom: false}, true},
		{"task-linked with text", Reminder{IsCustom: false, TaskID: 5, Text: "x"}, true},
	}
	for _, tc := range cases {
		err := tc.rem.Validate()
		if tc.wantErr && err == nil {
			t.Errorf("%s: expected error, got nil", tc.name)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("%s: expected no error, got %v", tc.name, err)
		}
	}
}

func TestDialogStatePredicates(t *testing.T) {
	st := DialogState{Kind: DialogAwaitingReminderDate}
	if !st.AwaitsDate() || st.AwaitsTime() {
		t.Errorf("Expected date-awaiting state, got AwaitsDate=%v AwaitsTime=%v", st.AwaitsDate(), st.AwaitsTime())
	}
	st.Kind = DialogAwaitingTaskReminderTime
	if st.AwaitsDate() || !st.AwaitsTime() {
		t.Errorf("Expected time-awaiting state, got AwaitsDate=%v AwaitsTime=%v", st.AwaitsDate(), st.AwaitsTime())
	}
	st.Kind = DialogAwaitingTaskText
	if st.AwaitsDate() || st.AwaitsTime() {
		t.Error("Expected neither predicate for task-text state")
	}
}

func TestUpdateDecoding(t *testing.T) {
	raw := `{"update_id":9,"callback_query":{"id":"cb1","data":"done_5","message":{"message_id":3,"chat":{"id":42}}}}`
	var upd Update
	if err := json.Unmarshal([]byte(raw), &upd); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if upd.Message != nil {
		t.Error("Expected no message on callback update")
	}
	if upd.CallbackQuery == nil || upd.CallbackQuery.Data != "done_5" || upd.CallbackQuery.Message.Chat.ID != 42 {
		t.Errorf("Unexpected callback decoding: %+v", upd.CallbackQuery)
	}
}
