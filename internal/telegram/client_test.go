package telegram_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/expense-bot/internal/domain"
	"github.com/dvloznov/expense-bot/internal/telegram"
)

type capturedRequest struct {
	Method      string
	Path        string
	ContentType string
	Form        url.Values
}

func newServer(t *testing.T, status int, reply string, got *capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Method = r.Method
		got.Path = r.URL.Path
		got.ContentType = r.Header.Get("Content-Type")
		_ = r.ParseForm()
		got.Form = r.PostForm

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSendMessage(t *testing.T) {
	var got capturedRequest
	srv := newServer(t, http.StatusOK, `{"ok":true,"result":{}}`, &got)

	client := telegram.NewClient("123:abc", srv.URL+"/", srv.Client())
	require.NoError(t, client.SendMessage(context.Background(), 42, "xin chào"))

	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/bot123:abc/sendMessage", got.Path)
	assert.Equal(t, "application/x-www-form-urlencoded", got.ContentType)
	assert.Equal(t, "42", got.Form.Get("chat_id"))
	assert.Equal(t, "xin chào", got.Form.Get("text"))
	assert.NotContains(t, got.Form, "parse_mode")
}

func TestSendMessage_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		reply   string
		wantMsg string
	}{
		{name: "non-2xx status", status: http.StatusBadRequest, reply: `{"ok":false,"description":"Bad Request: chat not found"}`, wantMsg: "chat not found"},
		{name: "ok false envelope", status: http.StatusOK, reply: `{"ok":false,"error_code":403,"description":"Forbidden: bot was blocked"}`, wantMsg: "sendMessage (403): Forbidden: bot was blocked"},
		{name: "non-json body", status: http.StatusBadGateway, reply: `<html>bad gateway</html>`, wantMsg: "sendMessage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got capturedRequest
			srv := newServer(t, tt.status, tt.reply, &got)

			err := telegram.NewClient("t", srv.URL, srv.Client()).SendMessage(context.Background(), 1, "x")
			require.Error(t, err)
			assert.True(t, errors.Is(err, telegram.ErrNotify))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestSendMessage_TransportErrorHidesToken(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	err := telegram.NewClient("secret-token", baseURL, nil).SendMessage(context.Background(), 1, "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, telegram.ErrNotify))
	assert.NotContains(t, err.Error(), "secret-token")
}

func TestSetWebhook(t *testing.T) {
	var got capturedRequest
	srv := newServer(t, http.StatusOK, `{"ok":true,"result":true}`, &got)

	client := telegram.NewClient("t", srv.URL, srv.Client())
	require.NoError(t, client.SetWebhook(context.Background(), "https://bot.example.com/telegram/webhook", "abc"))

	assert.Equal(t, "/bott/setWebhook", got.Path)
	assert.Equal(t, "https://bot.example.com/telegram/webhook", got.Form.Get("url"))
	assert.Equal(t, "abc", got.Form.Get("secret_token"))
	assert.Equal(t, `["message"]`, got.Form.Get("allowed_updates"))
}

func TestSetWebhook_NoSecret(t *testing.T) {
	var got capturedRequest
	srv := newServer(t, http.StatusOK, `{"ok":true,"result":true}`, &got)

	require.NoError(t, telegram.NewClient("t", srv.URL, srv.Client()).SetWebhook(context.Background(), "https://bot.example.com/telegram/webhook", ""))
	assert.NotContains(t, got.Form, "secret_token")
}

func TestSendMessage_UsesCallerContext(t *testing.T) {
	var got capturedRequest
	srv := newServer(t, http.StatusOK, `{"ok":true,"result":{}}`, &got)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := telegram.NewClient("t", srv.URL, srv.Client()).SendMessage(ctx, 1, "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, telegram.ErrNotify))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, got.Path)
}

func TestDeleteWebhook(t *testing.T) {
	var got capturedRequest
	srv := newServer(t, http.StatusOK, `{"ok":true,"result":true}`, &got)

	require.NoError(t, telegram.NewClient("t", srv.URL, srv.Client()).DeleteWebhook(context.Background()))
	assert.Equal(t, "/bott/deleteWebhook", got.Path)
}

func TestSuccessMessage(t *testing.T) {
	msg := telegram.SuccessMessage(&domain.Record{
		Amount:   json.Number("20000"),
		Purpose:  "ăn sáng",
		Category: "ăn uống",
	})
	assert.Equal(t, "✅ Đã lưu: 20000 VND | ăn sáng | ăn uống", msg)

	assert.True(t, strings.HasPrefix(telegram.SuccessMessage(nil), "✅ Đã lưu:  VND"))
}

func TestUpdateAccessors(t *testing.T) {
	var u telegram.Update
	require.NoError(t, json.Unmarshal([]byte(`{"update_id":7,"message":{"text":"  an sang 20k \n","chat":{"id":1},"from":{"id":9,"username":"u"}}}`), &u))

	assert.Equal(t, 7, u.UpdateID)
	assert.Equal(t, "an sang 20k", u.Text())
	chatID, ok := u.ChatID()
	assert.True(t, ok)
	assert.EqualValues(t, 1, chatID)
	userID, username := u.Sender()
	require.NotNil(t, userID)
	assert.EqualValues(t, 9, *userID)
	assert.Equal(t, "u", username)

	var empty telegram.Update
	assert.Empty(t, empty.Text())
	_, ok = empty.ChatID()
	assert.False(t, ok)
	userID, username = empty.Sender()
	assert.Nil(t, userID)
	assert.Empty(t, username)
}
