package telegram

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

const defaultBaseURL = "https://api.telegram.org"

// BotAPI is a minimal Telegram Bot API client for admin notices.
type BotAPI struct {
	token  string
	client *resty.Client
}

// NewBotAPI creates a new direct Telegram Bot API client.
func NewBotAPI(token string) *BotAPI {
	return newBotAPI(defaultBaseURL, token)
}

func newBotAPI(baseURL, token string) *BotAPI {
	return &BotAPI{
		token:  token,
		client: resty.New().SetBaseURL(baseURL + "/bot" + token),
	}
}

// Enabled reports whether a token is configured.
func (b *BotAPI) Enabled() bool {
	return b != nil && b.token != ""
}

// Call makes a raw API call and fails when Telegram answers ok=false.
func (b *BotAPI) Call(ctx context.Context, method string, params map[string]interface{}) (string, error) {
	resp, err := b.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(params).
		Post("/" + method)
	if err != nil {
		return "", fmt.Errorf("telegram API call %s failed: %w", method, err)
	}
	body := resp.String()
	if !gjson.Get(body, "ok").Bool() {
		return body, fmt.Errorf("telegram API call %s failed: %s", method, gjson.Get(body, "description").String())
	}
	return body, nil
}

// SendMessage sends a text message.
func (b *BotAPI) SendMessage(ctx context.Context, chatID string, text string) (string, error) {
	return b.Call(ctx, "sendMessage", map[string]interface{}{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	})
}
