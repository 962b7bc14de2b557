package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"
	"widt/internal/models"
	"widt/internal/store"
)

const needConfigText = "You need to run /config command first!"

// JournalFlow is the append flow: any free text becomes a pending entry
// that the user confirms with y/n.
type JournalFlow struct {
	journal *store.JournalRepository
	meta    *store.MetaRepository
	clock   func() time.Time
}

func NewJournalFlow(journal *store.JournalRepository, meta *store.MetaRepository) *JournalFlow {
	return &JournalFlow{journal: journal, meta: meta, clock: time.Now}
}

func (f *JournalFlow) Name() string { return "journal" }

func (f *JournalFlow) Start(ctx context.Context, sess *Session, msg models.InboundMessage) (Result, error) {
	meta, err := f.meta.Get(ctx, msg.ChatID)
	if err != nil {
		return end(), err
	}
	if !meta.Configured() {
		return end(Reply{Text: needConfigText}), nil
	}

	sess.PendingText = msg.Text
	return stay(StateJournalConfirm, Reply{
		Text:     "Please confirm this entry (y/n):\n" + msg.Text,
		Keyboard: KeyboardYesNo,
	}), nil
}

func (f *JournalFlow) Handle(ctx context.Context, sess *Session, msg models.InboundMessage) (Result, error) {
	if sess.State != StateJournalConfirm {
		return end(), fmt.Errorf("journal flow: unexpected state %q", sess.State)
	}

	switch strings.ToLower(strings.TrimSpace(msg.Text)) {
	case "y":
		if _, err := f.journal.Append(ctx, msg.ChatID, f.clock(), sess.PendingText); err != nil {
			return end(), err
		}
		return end(Reply{Text: "Done!"}), nil
	case "n":
		return end(Reply{Text: "Canceled!"}), nil
	default:
		return stay(StateJournalConfirm, Reply{
			Text:     "Please answer y or n.",
			Keyboard: KeyboardYesNo,
		}), nil
	}
}
