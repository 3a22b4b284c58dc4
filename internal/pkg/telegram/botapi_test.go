package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBotAPI_SendMessage(t *testing.T) {
	var path string
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	}))
	defer srv.Close()

	b := newBotAPI(srv.URL, "TOKEN")
	_, err := b.SendMessage(context.Background(), "42", "<b>hi</b>")
	require.NoError(t, err)

	assert.Equal(t, "/botTOKEN/sendMessage", path)
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "HTML", got["parse_mode"])
}

func TestBotAPI_ErrorResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	_, err := newBotAPI(srv.URL, "TOKEN").SendMessage(context.Background(), "42", "hi")
	assert.ErrorContains(t, err, "chat not found")
}

func TestBotAPI_Enabled(t *testing.T) {
	var nilBot *BotAPI
	assert.False(t, nilBot.Enabled())
	assert.False(t, NewBotAPI("").Enabled())
	assert.True(t, NewBotAPI("TOKEN").Enabled())
}
