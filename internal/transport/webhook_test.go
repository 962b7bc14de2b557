package transport

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"widt/internal/providers"
	"widt/internal/structures"
)

type webhookTestLogger struct{}

func (webhookTestLogger) Errorf(providers.TypeEnum, string, ...interface{}) {}
func (webhookTestLogger) Warnf(providers.TypeEnum, string, ...interface{})  {}
func (webhookTestLogger) Debugf(providers.TypeEnum, string, ...interface{}) {}
func (webhookTestLogger) Infof(providers.TypeEnum, string, ...interface{})  {}
func (webhookTestLogger) Fatalf(providers.TypeEnum, string, ...interface{}) {}
func (webhookTestLogger) Close()                                            {}

type bridgeCall struct {
	path string
	auth string
	body map[string]interface{}
}

func newBridge(t *testing.T, status int) (*httptest.Server, *[]bridgeCall) {
	t.Helper()
	var calls []bridgeCall
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(body, &decoded))
		calls = append(calls, bridgeCall{
			path: r.URL.Path,
			auth: r.Header.Get("Authorization"),
			body: decoded,
		})
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newWebhookSender(url, token string) Sender {
	return NewWebhookSender(&structures.Config{
		Bot: structures.BotConfig{OutboundURL: url, Token: token},
	}, webhookTestLogger{})
}

func TestWebhookSender_SendText(t *testing.T) {
	srv, calls := newBridge(t, http.StatusOK)
	sender := newWebhookSender(srv.URL, "secret")

	err := sender.SendText(context.Background(), "chat1", "hello there", []string{"y", "n"})
	require.NoError(t, err)

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, "/message", call.path)
	assert.Equal(t, "Bearer secret", call.auth)
	assert.Equal(t, "chat1", call.body["chat_id"])
	assert.Equal(t, "hello there", call.body["text"])
	assert.Equal(t, []interface{}{"y", "n"}, call.body["keyboard"])
}

func TestWebhookSender_SendDocument(t *testing.T) {
	srv, calls := newBridge(t, http.StatusOK)
	sender := newWebhookSender(srv.URL, "")

	err := sender.SendDocument(context.Background(), "chat1", Document{
		Filename: "export.html",
		MimeType: "text/html",
		Content:  []byte("<html></html>"),
	})
	require.NoError(t, err)

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, "/document", call.path)
	assert.Empty(t, call.auth)
	assert.Equal(t, "export.html", call.body["filename"])
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("<html></html>")), call.body["content"])
}

func TestWebhookSender_BridgeErrorPropagates(t *testing.T) {
	srv, _ := newBridge(t, http.StatusBadGateway)
	sender := newWebhookSender(srv.URL, "")

	err := sender.SendText(context.Background(), "chat1", "doomed", nil)
	assert.ErrorContains(t, err, "502")
}

func TestWebhookSender_UnconfiguredDropsQuietly(t *testing.T) {
	sender := NewWebhookSender(&structures.Config{}, webhookTestLogger{})
	assert.IsType(t, &droppingSender{}, sender)
	assert.NoError(t, sender.SendText(context.Background(), "chat1", "into the void", nil))
	assert.NoError(t, sender.SendDocument(context.Background(), "chat1", Document{}))
}
