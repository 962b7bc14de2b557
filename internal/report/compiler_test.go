package report

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"widt/internal/models"
	"widt/internal/store"
	"widt/internal/testutil"
)

type compilerFixture struct {
	compiler *Compiler
	db       *store.MemoryStore
	journal  *store.JournalRepository
	archive  *store.ArchiveRepository
	chat     *testutil.MockChat
	mail     *testutil.MockMail
	metrics  *testutil.MockMetrics
}

func newCompilerFixture(t *testing.T) *compilerFixture {
	t.Helper()
	db := store.NewMemory()
	f := &compilerFixture{
		db:      db,
		journal: store.NewJournalRepository(db),
		archive: store.NewArchiveRepository(db),
		chat:    &testutil.MockChat{},
		mail:    &testutil.MockMail{},
		metrics: &testutil.MockMetrics{},
	}
	f.compiler = NewCompiler(f.journal, f.archive, f.chat, f.mail, &testutil.MockLogger{}, f.metrics)
	return f
}

func testMeta(verified bool) *models.ChatMetadata {
	meta := &models.ChatMetadata{
		ChatID:   "chat1",
		Timezone: models.IntPtr(8),
		EndOfDay: models.IntPtr(22),
	}
	if verified {
		meta.Email = "someone@example.com"
		meta.EmailVerified = true
	}
	return meta
}

// 14:00 UTC is 22:00 at offset +8.
var reportNow = time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC)

func (f *compilerFixture) seed(t *testing.T, texts ...string) {
	t.Helper()
	base := time.Date(2026, 9, 1, 1, 30, 0, 0, time.UTC)
	for i, text := range texts {
		_, err := f.journal.Append(context.Background(), "chat1", base.Add(time.Duration(i)*time.Hour), text)
		require.NoError(t, err)
	}
}

func TestCompiler_ReportDeliveredAndArchived(t *testing.T) {
	f := newCompilerFixture(t)
	ctx := context.Background()
	f.seed(t, "first win", "second win")

	err := f.compiler.Run(ctx, testMeta(false), reportNow, false)
	require.NoError(t, err)

	require.Len(t, f.chat.Texts, 1)
	text := f.chat.Texts[0].Text
	assert.Contains(t, text, "What you did today:")
	assert.Contains(t, text, "* 09:30:00 — first win")
	assert.Contains(t, text, "* 10:30:00 — second win")
	assert.Contains(t, text, "Good job!")

	has, err := f.archive.Has(ctx, "chat1", "20260901-22")
	require.NoError(t, err)
	assert.True(t, has)

	entries, err := f.journal.Entries(ctx, "chat1")
	require.NoError(t, err)
	assert.Empty(t, entries, "live entries cleared after archiving")

	assert.Equal(t, 1, f.metrics.ReportsGenerated["sent"])
}

func TestCompiler_FullTextInReportNotTruncated(t *testing.T) {
	f := newCompilerFixture(t)
	long := "a long entry far beyond the thirty rune preview used by the edit flow listing"
	f.seed(t, long)

	err := f.compiler.Run(context.Background(), testMeta(false), reportNow, false)
	require.NoError(t, err)
	assert.Contains(t, f.chat.Texts[0].Text, long)
}

func TestCompiler_EmailOnlyWhenVerified(t *testing.T) {
	f := newCompilerFixture(t)
	f.seed(t, "entry")
	meta := testMeta(true)
	meta.EmailVerified = false

	require.NoError(t, f.compiler.Run(context.Background(), meta, reportNow, false))
	assert.Zero(t, f.mail.Sent())
}

func TestCompiler_VerifiedEmailGetsReport(t *testing.T) {
	f := newCompilerFixture(t)
	f.seed(t, "entry")

	require.NoError(t, f.compiler.Run(context.Background(), testMeta(true), reportNow, false))
	require.Equal(t, 1, f.mail.Sent())
	msg := f.mail.Messages[0]
	assert.Equal(t, "someone@example.com", msg.To)
	assert.Equal(t, "20260901 — Congratulation on Another Awesome Day!", msg.Subject)
	assert.Contains(t, msg.HTML, "entry")
	assert.Contains(t, msg.HTML, "2026-09-01")
}

func TestCompiler_EmptyDaySendsReminder(t *testing.T) {
	f := newCompilerFixture(t)

	err := f.compiler.Run(context.Background(), testMeta(true), reportNow, false)
	require.NoError(t, err)

	require.Len(t, f.chat.Texts, 1)
	assert.Contains(t, f.chat.Texts[0].Text, "You don't have any entries today.")

	require.Equal(t, 1, f.mail.Sent())
	assert.Equal(t, "20260901 — Remember that You Are Awesome!", f.mail.Messages[0].Subject)
	assert.Equal(t, 1, f.metrics.ReportsGenerated["reminder"])
}

func TestCompiler_ReminderSealsEmptyPeriod(t *testing.T) {
	f := newCompilerFixture(t)
	ctx := context.Background()

	require.NoError(t, f.compiler.Run(ctx, testMeta(false), reportNow, false))
	require.Len(t, f.chat.Texts, 1)

	has, err := f.archive.Has(ctx, "chat1", "20260901-22")
	require.NoError(t, err)
	assert.True(t, has)

	// A repeated trigger in the same hour does not nag twice.
	later := reportNow.Add(45 * time.Minute)
	require.NoError(t, f.compiler.Run(ctx, testMeta(false), later, false))
	assert.Len(t, f.chat.Texts, 1)
	assert.Equal(t, 1, f.metrics.ReportsGenerated["reminder"])
	assert.Equal(t, 1, f.metrics.ReportsGenerated["repeat_noop"])
}

func TestCompiler_ReminderDisabledStaysSilent(t *testing.T) {
	f := newCompilerFixture(t)
	meta := testMeta(true)
	meta.Reminder = models.BoolPtr(false)

	err := f.compiler.Run(context.Background(), meta, reportNow, false)
	require.NoError(t, err)
	assert.Empty(t, f.chat.Texts)
	assert.Zero(t, f.mail.Sent())
	assert.Equal(t, 1, f.metrics.ReportsGenerated["skipped_silent"])
}

func TestCompiler_SecondRunSameHourIsNoOp(t *testing.T) {
	f := newCompilerFixture(t)
	ctx := context.Background()
	f.seed(t, "the one entry")

	require.NoError(t, f.compiler.Run(ctx, testMeta(false), reportNow, false))
	require.Len(t, f.chat.Texts, 1)

	// Live is now empty and the period is sealed; a repeated trigger in
	// the same hour sends nothing, reminder included.
	later := reportNow.Add(30 * time.Minute)
	require.NoError(t, f.compiler.Run(ctx, testMeta(false), later, false))
	assert.Len(t, f.chat.Texts, 1)
	assert.Equal(t, 1, f.metrics.ReportsGenerated["repeat_noop"])
}

func TestCompiler_ArchiveFailureKeepsLiveEntries(t *testing.T) {
	f := newCompilerFixture(t)
	ctx := context.Background()
	f.seed(t, "must survive")

	f.db.FailWrites = true
	err := f.compiler.Run(ctx, testMeta(false), reportNow, false)
	require.Error(t, err)

	f.db.FailWrites = false
	entries, err := f.journal.Entries(ctx, "chat1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "must survive", entries[0].Text)
}

func TestCompiler_SkipArchiveLeavesEverything(t *testing.T) {
	f := newCompilerFixture(t)
	ctx := context.Background()
	f.seed(t, "debug entry")

	require.NoError(t, f.compiler.Run(ctx, testMeta(false), reportNow, true))
	require.Len(t, f.chat.Texts, 1)

	entries, err := f.journal.Entries(ctx, "chat1")
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	has, err := f.archive.Has(ctx, "chat1", "20260901-22")
	require.NoError(t, err)
	assert.False(t, has)
}
