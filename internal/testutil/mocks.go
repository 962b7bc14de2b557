package testutil

import (
	"context"
	"sync"
	"time"

	"widt/internal/email"
	"widt/internal/providers"
	"widt/internal/transport"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns how many records of the given level were logged.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Logs {
		if e.Level == level {
			n++
		}
	}
	return n
}

// MockMetrics implements providers.MetricsProviderInterface and counts calls.
type MockMetrics struct {
	mu               sync.Mutex
	RequestsTotal    int
	InboundMessages  map[string]int
	RepliesSent      map[string]int
	ReportsGenerated map[string]int
	EmailsSent       map[string]int
	SweepObserved    int
	StoreObserved    int
}

func (m *MockMetrics) bump(mp *map[string]int, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if *mp == nil {
		*mp = make(map[string]int)
	}
	(*mp)[key]++
}

func (m *MockMetrics) IncRequestsTotal(endpoint string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestsTotal++
}

func (m *MockMetrics) ObserveRequestDuration(endpoint string, duration time.Duration) {}

func (m *MockMetrics) IncInboundMessages(command string) {
	m.bump(&m.InboundMessages, command)
}

func (m *MockMetrics) IncRepliesSent(outcome string) {
	m.bump(&m.RepliesSent, outcome)
}

func (m *MockMetrics) IncReportsGenerated(outcome string) {
	m.bump(&m.ReportsGenerated, outcome)
}

func (m *MockMetrics) IncEmailsSent(kind string, ok bool) {
	status := "ok"
	if !ok {
		status = "error"
	}
	m.bump(&m.EmailsSent, kind+":"+status)
}

func (m *MockMetrics) ObserveSweepDuration(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SweepObserved++
}

func (m *MockMetrics) ObserveStoreDuration(op string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StoreObserved++
}

// SentText records one SendText call.
type SentText struct {
	ChatID   string
	Text     string
	Keyboard []string
}

// SentDocument records one SendDocument call.
type SentDocument struct {
	ChatID string
	Doc    transport.Document
}

// MockChat implements transport.Sender and captures outbound traffic.
type MockChat struct {
	mu        sync.Mutex
	Texts     []SentText
	Documents []SentDocument
	FailText  error
}

func (m *MockChat) SendText(ctx context.Context, chatID, text string, keyboard []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailText != nil {
		return m.FailText
	}
	m.Texts = append(m.Texts, SentText{ChatID: chatID, Text: text, Keyboard: keyboard})
	return nil
}

func (m *MockChat) SendDocument(ctx context.Context, chatID string, doc transport.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Documents = append(m.Documents, SentDocument{ChatID: chatID, Doc: doc})
	return nil
}

// LastText returns the most recent text reply, or an empty record.
func (m *MockChat) LastText() SentText {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Texts) == 0 {
		return SentText{}
	}
	return m.Texts[len(m.Texts)-1]
}

// MockMail implements email.Sender and captures sent messages.
type MockMail struct {
	mu       sync.Mutex
	Messages []email.Message
	Fail     error
}

func (m *MockMail) Send(ctx context.Context, msg email.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	m.Messages = append(m.Messages, msg)
	return nil
}

func (m *MockMail) Sent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Messages)
}
