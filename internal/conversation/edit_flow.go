package conversation

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"widt/internal/models"
	"widt/internal/store"
)

const (
	noEntriesText   = "No entries has yet been logged today!"
	editComposeText = "Write the new content of this entry, or use /delete to delete the entry"
	previewRunes    = 30
)

// TruncateRunes shortens text to at most n runes, for entry previews.
func TruncateRunes(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}

// FormatEntryLines renders entries as numbered, local-time-stamped,
// truncated preview lines shared by /current and the edit flow.
func FormatEntryLines(entries []models.JournalEntry, tzOffsetHours int) []string {
	lines := make([]string, len(entries))
	for i, entry := range entries {
		lines[i] = fmt.Sprintf("%d. %s — %s",
			i+1,
			entry.LocalTime(tzOffsetHours).Format("15:04:05"),
			TruncateRunes(entry.Text, previewRunes),
		)
	}
	return lines
}

// EditFlow lets the user pick one live entry, replace or delete it, and
// confirm. Index selection is one-shot: bad input ends the flow.
type EditFlow struct {
	journal *store.JournalRepository
	meta    *store.MetaRepository
}

func NewEditFlow(journal *store.JournalRepository, meta *store.MetaRepository) *EditFlow {
	return &EditFlow{journal: journal, meta: meta}
}

func (f *EditFlow) Name() string { return "edit" }

func (f *EditFlow) Start(ctx context.Context, sess *Session, msg models.InboundMessage) (Result, error) {
	meta, err := f.meta.Get(ctx, msg.ChatID)
	if err != nil {
		return end(), err
	}
	if !meta.Configured() {
		return end(Reply{Text: needConfigText}), nil
	}

	entries, err := f.journal.Entries(ctx, msg.ChatID)
	if err != nil {
		return end(), err
	}
	if len(entries) == 0 {
		return end(Reply{Text: noEntriesText}), nil
	}

	// Cache the ordered list so indices stay stable for the whole flow.
	sess.CachedEntries = entries
	lines := FormatEntryLines(entries, meta.TimezoneOffset())
	return stay(StateEditSelect, Reply{
		Text: "(Truncated) Entries so far:\n" + strings.Join(lines, "\n") +
			fmt.Sprintf("\n pick one you'd like to edit (1 - %d)", len(entries)),
	}), nil
}

func (f *EditFlow) Handle(ctx context.Context, sess *Session, msg models.InboundMessage) (Result, error) {
	switch sess.State {
	case StateEditSelect:
		return f.handleSelect(sess, msg), nil
	case StateEditCompose:
		return f.handleCompose(sess, msg), nil
	case StateEditConfirm:
		return f.handleConfirm(ctx, sess, msg)
	default:
		return end(), fmt.Errorf("edit flow: unexpected state %q", sess.State)
	}
}

func (f *EditFlow) handleSelect(sess *Session, msg models.InboundMessage) Result {
	idx, err := strconv.Atoi(strings.TrimSpace(msg.Text))
	if err != nil {
		return end(Reply{Text: "Please input an index (number)!"})
	}
	if idx < 1 || idx > len(sess.CachedEntries) {
		return end(Reply{Text: "Cannot find the entry!"})
	}
	sess.SelectedIndex = idx - 1
	return stay(StateEditCompose, Reply{
		Text: "Editing this entry:\n" + sess.CachedEntries[idx-1].Text +
			"\n" + editComposeText,
	})
}

func (f *EditFlow) handleCompose(sess *Session, msg models.InboundMessage) Result {
	picked := sess.CachedEntries[sess.SelectedIndex]
	if msg.Command() == "/delete" {
		sess.StagedDelete = true
		sess.StagedText = ""
		return stay(StateEditConfirm, Reply{
			Text: "Deleting this entry (truncated):\n" +
				TruncateRunes(picked.Text, previewRunes) +
				"\nPlease confirm (y/n/Abort)",
			Keyboard: KeyboardYesNoAbort,
		})
	}
	sess.StagedDelete = false
	sess.StagedText = msg.Text
	return stay(StateEditConfirm, Reply{
		Text: "Replacing this entry (truncated):\n" +
			TruncateRunes(picked.Text, previewRunes) +
			"\nwith:\n" + msg.Text +
			"\nPlease confirm (y/n/Abort)",
		Keyboard: KeyboardYesNoAbort,
	})
}

func (f *EditFlow) handleConfirm(ctx context.Context, sess *Session, msg models.InboundMessage) (Result, error) {
	picked := sess.CachedEntries[sess.SelectedIndex]
	switch strings.ToLower(strings.TrimSpace(msg.Text)) {
	case "y":
		var err error
		if sess.StagedDelete {
			err = f.journal.DeleteEntry(ctx, msg.ChatID, picked.Key)
		} else {
			err = f.journal.UpdateEntry(ctx, msg.ChatID, picked.Key, sess.StagedText)
		}
		if err != nil {
			return end(), err
		}
		return end(Reply{Text: "Done!"}), nil
	case "abort":
		return end(Reply{Text: "Roger. Aborted."}), nil
	case "n":
		return stay(StateEditCompose, Reply{Text: editComposeText}), nil
	default:
		return stay(StateEditConfirm, Reply{
			Text:     "Please answer y, n, or abort.",
			Keyboard: KeyboardYesNoAbort,
		}), nil
	}
}
