package email

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"widt/internal/structures"
)

func mailgunConfig(baseURL string) *structures.Config {
	return &structures.Config{
		Email: structures.EmailConfig{
			Enabled: true,
			Domain:  "mg.example.com",
			APIKey:  "key-test",
			BaseURL: baseURL,
		},
	}
}

func TestMailgunSender_PostsFormToDomainEndpoint(t *testing.T) {
	var gotPath, gotUser, gotPass string
	var gotForm map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"from":    r.PostForm.Get("from"),
			"to":      r.PostForm.Get("to"),
			"subject": r.PostForm.Get("subject"),
			"text":    r.PostForm.Get("text"),
			"html":    r.PostForm.Get("html"),
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sender := NewMailgunSender(mailgunConfig(srv.URL), verifyTestLogger{})
	err := sender.Send(context.Background(), Message{
		To:      "someone@example.com",
		Subject: "A Subject",
		Text:    "plain body",
		HTML:    "<p>rich body</p>",
	})
	require.NoError(t, err)

	assert.Equal(t, "/mg.example.com/messages", gotPath)
	assert.Equal(t, "api", gotUser)
	assert.Equal(t, "key-test", gotPass)
	assert.Equal(t, "What I Did Today <bot@mg.example.com>", gotForm["from"])
	assert.Equal(t, "someone@example.com", gotForm["to"])
	assert.Equal(t, "A Subject", gotForm["subject"])
	assert.Equal(t, "plain body", gotForm["text"])
	assert.Equal(t, "<p>rich body</p>", gotForm["html"])
}

func TestMailgunSender_NonOKStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Forbidden"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	sender := NewMailgunSender(mailgunConfig(srv.URL), verifyTestLogger{})
	err := sender.Send(context.Background(), Message{To: "someone@example.com"})
	assert.ErrorContains(t, err, "401")
}

func TestMailgunSender_DisabledWithoutCredentials(t *testing.T) {
	sender := NewMailgunSender(&structures.Config{}, verifyTestLogger{})
	assert.IsType(t, &disabledSender{}, sender)
	assert.Error(t, sender.Send(context.Background(), Message{To: "someone@example.com"}))
}
