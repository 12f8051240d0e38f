// Package telegram wraps the Telegram Bot API for outbound delivery in
// TaskBell.
//
// Delivery is best-effort: callers treat send failures as log-and-continue,
// so the client reports errors but never retries.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/taskbell/taskbell/internal/models"
)

// DefaultBaseURL is the production Telegram Bot API endpoint.
const DefaultBaseURL = "https://api.telegram.org"

// defaultTimeout bounds each outbound API call.
const defaultTimeout = 30 * time.Second

// Notifier is the outbound message delivery abstraction consumed by the bot
// and the reconciler.
type Notifier interface {
	// SendText sends a plain text message to a chat.
	SendText(ctx context.Context, chatID int64, text string) error

	// SendKeyboard sends a text message with an attached inline keyboard.
	SendKeyboard(ctx context.Context, chatID int64, text string, keyboard models.InlineKeyboardMarkup) error

	// DeleteMessage deletes a previously sent message.
	DeleteMessage(ctx context.Context, chatID, messageID int64) error

	// AnswerCallback acknowledges an inline-keyboard button press.
	AnswerCallback(ctx context.Context, callbackID, text string) error
}

// Opts holds configuration options for the Telegram client.
type Opts struct {
	Token      string
	BaseURL    string
	HTTPClient *http.Client
}

// Option defines a configuration option for the Telegram client.
type Option func(*Opts)

// WithToken sets the bot token.
func WithToken(token string) Option {
	return func(o *Opts) { o.Token = token }
}

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(url string) Option {
	return func(o *Opts) { o.BaseURL = url }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Opts) { o.HTTPClient = c }
}

// Client calls the Telegram Bot API over HTTP.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
}

// NewClient creates a Telegram client, falling back to the
// TELEGRAM_BOT_TOKEN environment variable when no token option is given.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Token == "" {
		cfg.Token = os.Getenv("TELEGRAM_BOT_TOKEN")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}
	slog.Debug("Telegram client config loaded", "token_set", cfg.Token != "", "base_url", cfg.BaseURL)

	if cfg.Token == "" {
		return nil, fmt.Errorf("bot token must be provided")
	}

	return &Client{
		token:   cfg.Token,
		baseURL: cfg.BaseURL,
		http:    cfg.HTTPClient,
	}, nil
}

// apiResponse is the envelope every Bot API method returns.
type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

// call posts a JSON payload to one Bot API method and checks the envelope.
func (c *Client) call(ctx context.Context, method string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", method, err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(data, &apiResp); err != nil {
		return fmt.Errorf("failed to decode %s response (status %d): %w", method, resp.StatusCode, err)
	}
	if !apiResp.OK {
		return fmt.Errorf("%s rejected by API (status %d): %s", method, resp.StatusCode, apiResp.Description)
	}
	slog.Debug("Telegram API call succeeded", "method", method)
	return nil
}

// SendText sends a plain text message to a chat.
func (c *Client) SendText(ctx context.Context, chatID int64, text string) error {
	return c.call(ctx, "sendMessage", map[string]any{
		"chat_id": chatID,
		"text":    text,
	})
}

// SendKeyboard sends a text message with an attached inline keyboard.
func (c *Client) SendKeyboard(ctx context.Context, chatID int64, text string, keyboard models.InlineKeyboardMarkup) error {
	return c.call(ctx, "sendMessage", map[string]any{
		"chat_id":      chatID,
		"text":         text,
		"reply_markup": keyboard,
	})
}

// DeleteMessage deletes a previously sent message.
func (c *Client) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	return c.call(ctx, "deleteMessage", map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
	})
}

// AnswerCallback acknowledges an inline-keyboard button press with a short
// notification text.
func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string) error {
	return c.call(ctx, "answerCallbackQuery", map[string]any{
		"callback_query_id": callbackID,
		"text":              text,
	})
}
