// Package report compiles a chat's live entries into the end-of-day
// summary, delivers it, and seals the entries into the archive.
package report

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"
	"widt/internal/email"
	"widt/internal/models"
	"widt/internal/providers"
	"widt/internal/store"
	"widt/internal/transport"
)

//go:embed templates/*.html
var templatesFS embed.FS

var emailTemplates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

const reminderText = "You don't have any entries today.\nNo worries. Tomorrow's a brand new day!\n" +
	"(Use the `/reminder no` command to stop receiving this message.)"

type templateEntry struct {
	Time string
	Text string
}

// Compiler generates one chat's report: render, deliver, archive.
type Compiler struct {
	journal *store.JournalRepository
	archive *store.ArchiveRepository
	chat    transport.Sender
	mail    email.Sender
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
}

func NewCompiler(journal *store.JournalRepository, archive *store.ArchiveRepository, chat transport.Sender, mail email.Sender, logger providers.Logger, metrics providers.MetricsProviderInterface) *Compiler {
	return &Compiler{
		journal: journal,
		archive: archive,
		chat:    chat,
		mail:    mail,
		logger:  logger,
		metrics: metrics,
	}
}

// Run compiles and delivers the report for one chat whose end-of-day
// hour has arrived at the given UTC instant. skipArchive leaves entries
// live (debug allow-list mode). The caller holds the chat's lock.
func (c *Compiler) Run(ctx context.Context, meta *models.ChatMetadata, nowUTC time.Time, skipArchive bool) error {
	userTime := meta.LocalTime(nowUTC)
	periodKey := models.PeriodKey(userTime)

	doc, _, err := c.journal.Document(ctx, meta.ChatID)
	if err != nil {
		return err
	}

	if len(doc) == 0 {
		// A sealed bundle for this period means the report already ran
		// in this hour; a repeated trigger is a no-op, reminder included.
		sealed, err := c.archive.Has(ctx, meta.ChatID, periodKey)
		if err != nil {
			return err
		}
		if sealed {
			c.metrics.IncReportsGenerated("repeat_noop")
			return nil
		}
		return c.sendBlank(ctx, meta, userTime, periodKey, skipArchive)
	}

	entries := models.EntriesFromDocument(doc)
	message := chatMessage(entries, meta.TimezoneOffset())
	if err = c.chat.SendText(ctx, meta.ChatID, message, nil); err != nil {
		return fmt.Errorf("delivering report to chat %s: %w", meta.ChatID, err)
	}

	c.sendEmail(ctx, meta, userTime, entries, message)

	if !skipArchive {
		// Archive then clear is one logical step: a failed archive write
		// leaves the entries live rather than ever deleting unarchived.
		if err = c.archive.Merge(ctx, meta.ChatID, periodKey, doc); err != nil {
			return err
		}
		if err = c.journal.Clear(ctx, meta.ChatID); err != nil {
			return fmt.Errorf("clearing live entries for chat %s: %w", meta.ChatID, err)
		}
	}

	c.metrics.IncReportsGenerated("sent")
	return nil
}

func chatMessage(entries []models.JournalEntry, tzOffsetHours int) string {
	lines := make([]string, len(entries))
	for i, entry := range entries {
		lines[i] = fmt.Sprintf("* %s — %s",
			entry.LocalTime(tzOffsetHours).Format("15:04:05"),
			entry.Text,
		)
	}
	return "What you did today:\n" + strings.Join(lines, "\n") + "\nGood job!"
}

func (c *Compiler) sendBlank(ctx context.Context, meta *models.ChatMetadata, userTime time.Time, periodKey string, skipArchive bool) error {
	if !meta.ReminderEnabled() {
		c.metrics.IncReportsGenerated("skipped_silent")
		return nil
	}
	if err := c.chat.SendText(ctx, meta.ChatID, reminderText, nil); err != nil {
		return fmt.Errorf("delivering reminder to chat %s: %w", meta.ChatID, err)
	}
	c.sendEmail(ctx, meta, userTime, nil, "")
	if !skipArchive {
		// An empty bundle seals the period so a repeated trigger in the
		// same hour does not send the reminder twice.
		if err := c.archive.Merge(ctx, meta.ChatID, periodKey, nil); err != nil {
			return err
		}
	}
	c.metrics.IncReportsGenerated("reminder")
	return nil
}

// sendEmail delivers the emailed rendition when an address is present
// and verified. Email failure is logged, never fatal to the report.
func (c *Compiler) sendEmail(ctx context.Context, meta *models.ChatMetadata, userTime time.Time, entries []models.JournalEntry, message string) {
	if meta.Email == "" {
		return
	}
	if !meta.EmailVerified {
		c.logger.Infof(providers.TypeEmail, "Email of chat %s (%s) not verified, skipped", meta.ChatID, meta.Email)
		return
	}

	var (
		subject  string
		tmplName string
		data     struct {
			FormattedDate string
			Entries       []templateEntry
		}
	)
	data.FormattedDate = userTime.Format("2006-01-02")

	if len(entries) == 0 {
		subject = fmt.Sprintf("%s — Remember that You Are Awesome!", userTime.Format("20060102"))
		tmplName = "skip.html"
	} else {
		subject = fmt.Sprintf("%s — Congratulation on Another Awesome Day!", userTime.Format("20060102"))
		tmplName = "normal.html"
		for _, entry := range entries {
			data.Entries = append(data.Entries, templateEntry{
				Time: entry.LocalTime(meta.TimezoneOffset()).Format("15:04"),
				Text: entry.Text,
			})
		}
	}

	var html bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&html, tmplName, data); err != nil {
		c.logger.Errorf(providers.TypeEmail, "Rendering %s for chat %s failed: %s", tmplName, meta.ChatID, err)
		return
	}

	err := c.mail.Send(ctx, email.Message{
		To:      meta.Email,
		Subject: subject,
		Text:    message,
		HTML:    html.String(),
	})
	if err != nil {
		c.logger.Errorf(providers.TypeEmail, "Report email to chat %s failed: %s", meta.ChatID, err)
		c.metrics.IncEmailsSent("report", false)
		return
	}
	c.metrics.IncEmailsSent("report", true)
}
