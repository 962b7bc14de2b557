package conversation

import (
	"sync"
	"widt/internal/models"
)

// State names a step inside a flow. StateEnd terminates the flow.
type State string

const StateEnd State = ""

const (
	StateJournalConfirm State = "journal_confirm"

	StateEditSelect  State = "edit_select"
	StateEditCompose State = "edit_compose"
	StateEditConfirm State = "edit_confirm"

	StateConfigTimezone State = "config_timezone"
	StateConfigEndOfDay State = "config_end_of_day"
	StateConfigEmail    State = "config_email"
)

// Draft holds config-flow values staged before the atomic commit at the
// email step. Pointers distinguish "not reached yet" from zero values.
type Draft struct {
	Timezone *int
	EndOfDay *int
	Email    *string
}

// Session is the transient per-chat flow state. It lives only while a
// flow is active and is dropped on any terminal reply; losing it on
// restart is acceptable, the user re-issues the command.
type Session struct {
	Flow  string
	State State

	PendingText string

	CachedEntries []models.JournalEntry
	SelectedIndex int
	StagedText    string
	StagedDelete  bool

	Draft Draft
}

// SessionRepository keys sessions by chat id. Implementations must be
// safe for concurrent use; the dispatcher serializes per chat, not
// across chats.
type SessionRepository interface {
	Get(chatID string) *Session
	Set(chatID string, sess *Session)
	Clear(chatID string)
}

type memorySessions struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewMemorySessions() SessionRepository {
	return &memorySessions{sessions: make(map[string]*Session)}
}

func (m *memorySessions) Get(chatID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[chatID]
}

func (m *memorySessions) Set(chatID string, sess *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[chatID] = sess
}

func (m *memorySessions) Clear(chatID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, chatID)
}
