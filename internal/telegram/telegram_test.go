package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/taskbell/taskbell/internal/models"
)

type recordedCall struct {
	path    string
	payload map[string]any
}

func newTestClient(t *testing.T, response string) (*Client, *[]recordedCall) {
	t.Helper()
	var calls []recordedCall
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("Expected JSON payload, got error %v", err)
		}
		calls = append(calls, recordedCall{path: r.URL.Path, payload: payload})
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(WithToken("test-token"), WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("Expected no error creating client, got %v", err)
	}
	return client, &calls
}

func TestNewClientRequiresToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	if _, err := NewClient(); err == nil {
		t.Error("Expected error for missing token, got nil")
	}
}

func TestNewClientFallsBackToEnvToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	client, err := NewClient()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if client.token != "env-token" {
		t.Errorf("Expected env token, got %q", client.token)
	}
}

func TestSendText(t *testing.T) {
	client, calls := newTestClient(t, `{"ok":true}`)

	if err := client.SendText(context.Background(), 42, "hello"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(*calls) != 1 {
		t.Fatalf("Expected one API call, got %d", len(*calls))
	}
	call := (*calls)[0]
	if call.path != "/bottest-token/sendMessage" {
		t.Errorf("Unexpected API path: %q", call.path)
	}
	if call.payload["chat_id"] != float64(42) || call.payload["text"] != "hello" {
		t.Errorf("Unexpected payload: %+v", call.payload)
	}
}

func TestSendKeyboard(t *testing.T) {
	client, calls := newTestClient(t, `{"ok":true}`)

	kb := models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{{{Text: "✅ Done", CallbackData: "done_1"}}},
	}
	if err := client.SendKeyboard(context.Background(), 42, "task", kb); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	call := (*calls)[0]
	if _, ok := call.payload["reply_markup"]; !ok {
		t.Errorf("Expected reply_markup in payload, got %+v", call.payload)
	}
}

func TestDeleteMessageAndAnswerCallback(t *testing.T) {
	client, calls := newTestClient(t, `{"ok":true}`)

	if err := client.DeleteMessage(context.Background(), 42, 7); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := client.AnswerCallback(context.Background(), "cb1", "done"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if (*calls)[0].path != "/bottest-token/deleteMessage" {
		t.Errorf("Unexpected path: %q", (*calls)[0].path)
	}
	if (*calls)[1].path != "/bottest-token/answerCallbackQuery" {
		t.Errorf("Unexpected path: %q", (*calls)[1].path)
	}
	if (*calls)[1].payload["callback_query_id"] != "cb1" {
		t.Errorf("Unexpected payload: %+v", (*calls)[1].payload)
	}
}

func TestAPIRejectionSurfacesError(t *testing.T) {
	client, _ := newTestClient(t, `{"ok":false,"description":"chat not found"}`)

	err := client.SendText(context.Background(), 42, "hello")
	if err == nil {
		t.Fatal("Expected error for API rejection, got nil")
	}
}
