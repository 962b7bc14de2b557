// Package bot routes inbound chat messages to commands and conversation
// flows, one chat at a time.
package bot

import (
	"context"
	"fmt"
	"strings"
	"time"
	"widt/internal/conversation"
	"widt/internal/email"
	"widt/internal/export"
	"widt/internal/models"
	"widt/internal/providers"
	"widt/internal/store"
	"widt/internal/transport"
)

const helpText = "How to use this bot:\n\n" +
	"First step — run /config command to tell us your timezone and when does your day end\n" +
	"Then when you achieve something in the day, describe it to the bot. " +
	"The bot will ask for your confirmation. Confirm and that's it!\n\n" +
	"Other commands:\n" +
	"+ /current — show entries collected so far today.\n" +
	"+ /edit — edit or delete entries today.\n" +
	"\nNote: currently we archive your daily achievement automatically. " +
	"In the future we'll provide you a way to view your archive and " +
	"also let you decide to keep an archive or not."

const oopsText = "Oops... Something went wrong..."

const handleTimeout = 15 * time.Second

// Dispatcher is the inbound side of the bot: it serializes per chat,
// resumes active conversations, and routes commands.
type Dispatcher struct {
	engine   *conversation.Engine
	journal  *store.JournalRepository
	meta     *store.MetaRepository
	verifier *email.Verifier
	exporter *export.Exporter
	chat     transport.Sender
	locks    *ChatLocks
	logger   providers.Logger
	metrics  providers.MetricsProviderInterface
}

func NewDispatcher(engine *conversation.Engine, journal *store.JournalRepository, meta *store.MetaRepository, verifier *email.Verifier, exporter *export.Exporter, chat transport.Sender, locks *ChatLocks, logger providers.Logger, metrics providers.MetricsProviderInterface) *Dispatcher {
	return &Dispatcher{
		engine:   engine,
		journal:  journal,
		meta:     meta,
		verifier: verifier,
		exporter: exporter,
		chat:     chat,
		locks:    locks,
		logger:   logger,
		metrics:  metrics,
	}
}

// HandleInbound processes one message under the chat's lock. Handler
// failures are reported to the user and logged, never propagated.
func (d *Dispatcher) HandleInbound(ctx context.Context, msg models.InboundMessage) {
	if msg.ChatID == "" || strings.TrimSpace(msg.Text) == "" {
		return
	}
	command := msg.Command()
	if command == "" {
		d.metrics.IncInboundMessages("text")
	} else {
		d.metrics.IncInboundMessages(command)
	}

	d.locks.Do(msg.ChatID, func() {
		ctx, cancel := context.WithTimeout(ctx, handleTimeout)
		defer cancel()

		replies, err := d.handle(ctx, msg)
		d.sendReplies(ctx, msg.ChatID, replies)
		if err != nil {
			d.logger.Errorf(providers.TypeBot, "Message from chat %s caused error: %s", msg.ChatID, err)
			d.sendReplies(ctx, msg.ChatID, []conversation.Reply{{Text: oopsText}})
		}
	})
}

func (d *Dispatcher) sendReplies(ctx context.Context, chatID string, replies []conversation.Reply) {
	for _, reply := range replies {
		if err := d.chat.SendText(ctx, chatID, reply.Text, reply.Keyboard); err != nil {
			d.logger.Errorf(providers.TypeBot, "Sending reply to chat %s failed: %s", chatID, err)
			d.metrics.IncRepliesSent("error")
			continue
		}
		d.metrics.IncRepliesSent("ok")
	}
}

func (d *Dispatcher) handle(ctx context.Context, msg models.InboundMessage) ([]conversation.Reply, error) {
	// An active flow consumes everything, including commands: that is
	// how /delete reaches the edit flow's compose step.
	replies, handled, err := d.engine.Resume(ctx, msg)
	if handled || err != nil {
		return replies, err
	}

	switch msg.Command() {
	case "":
		return d.engine.Start(ctx, "journal", msg)
	case "/start":
		return []conversation.Reply{{Text: startText(msg.FirstName)}}, nil
	case "/help":
		return []conversation.Reply{{Text: helpText}}, nil
	case "/config":
		return d.engine.Start(ctx, "config", msg)
	case "/edit":
		return d.engine.Start(ctx, "edit", msg)
	case "/current":
		return d.listCurrent(ctx, msg)
	case "/verify":
		return d.verify(ctx, msg)
	case "/resend":
		message, err := d.verifier.Resend(ctx, msg.ChatID)
		if err != nil {
			return nil, err
		}
		return []conversation.Reply{{Text: message}}, nil
	case "/reminder":
		return d.setReminder(ctx, msg)
	case "/export":
		return d.exportArchive(ctx, msg)
	default:
		d.logger.Debugf(providers.TypeBot, "Ignoring unknown command %q from chat %s", msg.Command(), msg.ChatID)
		return nil, nil
	}
}

func startText(firstName string) string {
	return fmt.Sprintf(
		"Hi, %s. Welcome to \"What I Did Today\"(WIDT)!\n\n"+
			"Feeling depressed? WIDT wants to help! "+
			"Talk to this bot about your achievements, small or big, at any time of the day, "+
			"and we will show you those achievements at the end of the day as a reminder "+
			"of how fantastic you are.\n\n"+
			"(Please don't tell the bot any sensitive information, e.g., your home address or bank account.)\n\n"+
			helpText,
		firstName,
	)
}

func (d *Dispatcher) listCurrent(ctx context.Context, msg models.InboundMessage) ([]conversation.Reply, error) {
	meta, err := d.meta.Get(ctx, msg.ChatID)
	if err != nil {
		return nil, err
	}
	if !meta.Configured() {
		return []conversation.Reply{{Text: "You need to run /config command first!"}}, nil
	}

	entries, err := d.journal.Entries(ctx, msg.ChatID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return []conversation.Reply{{Text: "No entries has yet been logged today!"}}, nil
	}

	lines := conversation.FormatEntryLines(entries, meta.TimezoneOffset())
	return []conversation.Reply{{
		Text: "(Truncated) Entries so far:\n" + strings.Join(lines, "\n"),
	}}, nil
}

func (d *Dispatcher) verify(ctx context.Context, msg models.InboundMessage) ([]conversation.Reply, error) {
	args := msg.Args()
	if len(args) != 1 {
		return []conversation.Reply{{Text: "Usage: /verify <code>"}}, nil
	}
	message, err := d.verifier.Verify(ctx, msg.ChatID, args[0])
	if err != nil {
		return nil, err
	}
	return []conversation.Reply{{Text: message}}, nil
}

func (d *Dispatcher) setReminder(ctx context.Context, msg models.InboundMessage) ([]conversation.Reply, error) {
	args := msg.Args()
	if len(args) != 1 || (args[0] != "yes" && args[0] != "no") {
		return []conversation.Reply{{Text: "Usage: /reminder [yes|no]"}}, nil
	}
	enabled := args[0] == "yes"
	if err := d.meta.Merge(ctx, msg.ChatID, map[string]interface{}{"reminder": enabled}); err != nil {
		return nil, err
	}
	if enabled {
		return []conversation.Reply{{Text: "Okay! We will send you reminders from now."}}, nil
	}
	return []conversation.Reply{{
		Text: "Okay! We will stop bugging you with reminders from now. Use `/reminder yes` to turn it back on.",
	}}, nil
}

func (d *Dispatcher) exportArchive(ctx context.Context, msg models.InboundMessage) ([]conversation.Reply, error) {
	meta, err := d.meta.Get(ctx, msg.ChatID)
	if err != nil {
		return nil, err
	}
	if !meta.Configured() {
		return []conversation.Reply{{Text: "Please run /config first!"}}, nil
	}

	usage := "Failed to parse dates. Please try again\n" +
		"Format: /export <from_date:YYYYMMDD> <to_date:YYYYMMDD>"
	args := msg.Args()
	if len(args) != 2 {
		return []conversation.Reply{{Text: usage}}, nil
	}
	from, errFrom := time.Parse(export.DateLayout, args[0])
	to, errTo := time.Parse(export.DateLayout, args[1])
	if errFrom != nil || errTo != nil || to.Before(from) {
		return []conversation.Reply{{Text: usage}}, nil
	}

	html, count, err := d.exporter.Digest(ctx, msg.ChatID, meta.TimezoneOffset(), from, to)
	if err != nil {
		return nil, err
	}
	d.logger.Infof(providers.TypeBot, "Collected %d archived entries for chat %s export", count, msg.ChatID)

	err = d.chat.SendDocument(ctx, msg.ChatID, transport.Document{
		Filename: fmt.Sprintf("export-%s-%s.html", args[0], args[1]),
		MimeType: "text/html",
		Content:  html,
	})
	if err != nil {
		return nil, fmt.Errorf("sending export to chat %s: %w", msg.ChatID, err)
	}
	return []conversation.Reply{{Text: "There you go!"}}, nil
}
