// Package email talks to the outbound email collaborator (Mailgun) and
// owns the address-verification lifecycle.
package email

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"widt/internal/providers"
	"widt/internal/structures"
)

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

const defaultBaseURL = "https://api.mailgun.net/v3"

// MailgunSender posts messages to the Mailgun HTTP API.
type MailgunSender struct {
	domain  string
	apiKey  string
	from    string
	baseURL string
	client  *http.Client
	logger  providers.Logger
}

func NewMailgunSender(conf *structures.Config, logger providers.Logger) Sender {
	if !conf.Email.Enabled || conf.Email.Domain == "" || conf.Email.APIKey == "" {
		logger.Warnf(providers.TypeEmail, "Email domain and/or API key not configured, outbound email disabled")
		return &disabledSender{}
	}

	from := conf.Email.From
	if from == "" {
		from = fmt.Sprintf("What I Did Today <bot@%s>", conf.Email.Domain)
	}
	baseURL := conf.Email.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &MailgunSender{
		domain:  conf.Email.Domain,
		apiKey:  conf.Email.APIKey,
		from:    from,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

func (s *MailgunSender) Send(ctx context.Context, msg Message) error {
	form := url.Values{}
	form.Set("from", s.from)
	form.Set("to", msg.To)
	form.Set("subject", msg.Subject)
	form.Set("text", msg.Text)
	if msg.HTML != "" {
		form.Set("html", msg.HTML)
	}

	endpoint := fmt.Sprintf("%s/%s/messages", s.baseURL, s.domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("building mailgun request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("api", s.apiKey)

	res, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting to mailgun: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return fmt.Errorf("mailgun returned %d: %s", res.StatusCode, string(body))
	}

	s.logger.Infof(providers.TypeEmail, "Email sent to %s: %s", msg.To, msg.Subject)
	return nil
}

type disabledSender struct{}

func (d *disabledSender) Send(_ context.Context, _ Message) error {
	return fmt.Errorf("outbound email is disabled")
}
