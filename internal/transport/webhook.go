package transport

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"time"
	"widt/internal/providers"
	"widt/internal/structures"

	json "github.com/goccy/go-json"
)

// WebhookSender relays outbound messages to the bot-framework bridge as
// JSON POSTs. The bridge owns the actual chat protocol.
type WebhookSender struct {
	url    string
	token  string
	client *http.Client
	logger providers.Logger
}

func NewWebhookSender(conf *structures.Config, logger providers.Logger) Sender {
	if conf.Bot.OutboundURL == "" {
		logger.Warnf(providers.TypeBot, "Outbound URL not configured, replies will be dropped")
		return &droppingSender{logger: logger}
	}
	return &WebhookSender{
		url:    conf.Bot.OutboundURL,
		token:  conf.Bot.Token,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

type outboundText struct {
	ChatID   string   `json:"chat_id"`
	Text     string   `json:"text"`
	Keyboard []string `json:"keyboard,omitempty"`
}

type outboundDocument struct {
	ChatID   string `json:"chat_id"`
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
	Content  string `json:"content"` // base64
}

func (s *WebhookSender) SendText(ctx context.Context, chatID, text string, keyboard []string) error {
	return s.post(ctx, "/message", outboundText{ChatID: chatID, Text: text, Keyboard: keyboard})
}

func (s *WebhookSender) SendDocument(ctx context.Context, chatID string, doc Document) error {
	return s.post(ctx, "/document", outboundDocument{
		ChatID:   chatID,
		Filename: doc.Filename,
		MimeType: doc.MimeType,
		Content:  base64.StdEncoding.EncodeToString(doc.Content),
	})
}

func (s *WebhookSender) post(ctx context.Context, path string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding outbound payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building outbound request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	res, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting outbound message: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return fmt.Errorf("outbound bridge returned %d: %s", res.StatusCode, string(msg))
	}
	return nil
}

type droppingSender struct {
	logger providers.Logger
}

func (d *droppingSender) SendText(_ context.Context, chatID, text string, _ []string) error {
	d.logger.Debugf(providers.TypeBot, "Dropped reply to chat %s: %s", chatID, text)
	return nil
}

func (d *droppingSender) SendDocument(_ context.Context, chatID string, doc Document) error {
	d.logger.Debugf(providers.TypeBot, "Dropped document to chat %s: %s", chatID, doc.Filename)
	return nil
}
