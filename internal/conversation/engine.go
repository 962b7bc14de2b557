// Package conversation implements the multi-step chat flows as explicit
// state machines over session data, independent of the transport.
package conversation

import (
	"context"
	"fmt"
	"widt/internal/models"
)

// Reply is one outbound message produced by a flow step. Keyboard is a
// reply-keyboard hint for the transport (one row of buttons).
type Reply struct {
	Text     string
	Keyboard []string
}

var (
	KeyboardYesNo      = []string{"y", "n"}
	KeyboardYesNoAbort = []string{"y", "n", "Abort"}
)

// Result is what a flow step returns: the replies to send and the state
// to move to. Next == StateEnd ends the flow and clears the session.
type Result struct {
	Replies []Reply
	Next    State
}

func end(replies ...Reply) Result {
	return Result{Replies: replies, Next: StateEnd}
}

func stay(state State, replies ...Reply) Result {
	return Result{Replies: replies, Next: state}
}

// Flow is one finite-state machine: an entry point plus a handler per
// non-terminal state.
type Flow interface {
	Name() string
	// Start runs the entry point, populating the fresh session. A Result
	// with Next == StateEnd means the flow never activated (precondition
	// failed or nothing to do).
	Start(ctx context.Context, sess *Session, msg models.InboundMessage) (Result, error)
	// Handle advances an active session by one incoming message.
	Handle(ctx context.Context, sess *Session, msg models.InboundMessage) (Result, error)
}

// Engine owns sessions and routes messages to the active flow. advance
// semantics: (chat id, session, text) → (replies, next state).
type Engine struct {
	sessions SessionRepository
	flows    map[string]Flow
}

func NewEngine(sessions SessionRepository, flows ...Flow) *Engine {
	byName := make(map[string]Flow, len(flows))
	for _, f := range flows {
		byName[f.Name()] = f
	}
	return &Engine{sessions: sessions, flows: byName}
}

// NewDefaultEngine assembles the engine with the standard flow set.
func NewDefaultEngine(sessions SessionRepository, journal *JournalFlow, edit *EditFlow, config *ConfigFlow) *Engine {
	return NewEngine(sessions, journal, edit, config)
}

// Resume feeds the message to the chat's active flow, if any. The bool
// reports whether an active session consumed the message.
func (e *Engine) Resume(ctx context.Context, msg models.InboundMessage) ([]Reply, bool, error) {
	sess := e.sessions.Get(msg.ChatID)
	if sess == nil {
		return nil, false, nil
	}
	flow, ok := e.flows[sess.Flow]
	if !ok {
		e.sessions.Clear(msg.ChatID)
		return nil, false, fmt.Errorf("session for chat %s references unknown flow %q", msg.ChatID, sess.Flow)
	}

	res, err := flow.Handle(ctx, sess, msg)
	if err != nil {
		// A failed step never claims success; drop the session so the
		// user starts clean.
		e.sessions.Clear(msg.ChatID)
		return res.Replies, true, err
	}
	e.commit(msg.ChatID, sess, res)
	return res.Replies, true, nil
}

// Start runs a flow's entry point for the chat, replacing any stale
// session when the flow activates.
func (e *Engine) Start(ctx context.Context, flowName string, msg models.InboundMessage) ([]Reply, error) {
	flow, ok := e.flows[flowName]
	if !ok {
		return nil, fmt.Errorf("unknown flow %q", flowName)
	}
	sess := &Session{Flow: flowName, SelectedIndex: -1}
	res, err := flow.Start(ctx, sess, msg)
	if err != nil {
		e.sessions.Clear(msg.ChatID)
		return res.Replies, err
	}
	if res.Next == StateEnd {
		e.sessions.Clear(msg.ChatID)
		return res.Replies, nil
	}
	sess.State = res.Next
	e.sessions.Set(msg.ChatID, sess)
	return res.Replies, nil
}

func (e *Engine) commit(chatID string, sess *Session, res Result) {
	if res.Next == StateEnd {
		e.sessions.Clear(chatID)
		return
	}
	sess.State = res.Next
	e.sessions.Set(chatID, sess)
}
