// Package export renders archived entries from a date range into an
// HTML digest delivered back through chat as a file.
package export

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"widt/internal/models"
	"widt/internal/store"

	"github.com/yuin/goldmark"
)

// DateLayout is the /export argument format.
const DateLayout = "20060102"

type Exporter struct {
	archive *store.ArchiveRepository
}

func NewExporter(archive *store.ArchiveRepository) *Exporter {
	return &Exporter{archive: archive}
}

type localEntry struct {
	at   time.Time
	text string
}

// Digest collects the chat's archived entries whose local timestamps
// fall inside [from, to] (whole days, inclusive) and renders them as an
// HTML digest grouped by date. Returns the HTML and the entry count.
func (e *Exporter) Digest(ctx context.Context, chatID string, tzOffsetHours int, from, to time.Time) ([]byte, int, error) {
	bundles, err := e.archive.Bundles(ctx, chatID)
	if err != nil {
		return nil, 0, err
	}

	rangeEnd := to.Add(24*time.Hour - time.Second)
	var entries []localEntry
	for _, bundle := range bundles {
		for _, entry := range models.EntriesFromDocument(bundle.Entries) {
			at := entry.LocalTime(tzOffsetHours)
			if at.Before(from) || at.After(rangeEnd) {
				continue
			}
			entries = append(entries, localEntry{at: at, text: entry.Text})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].at.Before(entries[j].at)
	})

	var md strings.Builder
	var currentDate string
	for _, entry := range entries {
		date := entry.at.Format("2006-01-02")
		if date != currentDate {
			currentDate = date
			fmt.Fprintf(&md, "\n## %s\n\n", date)
		}
		fmt.Fprintf(&md, "+ %s\n", strings.TrimSpace(entry.text))
	}

	var html bytes.Buffer
	if err = goldmark.Convert([]byte(md.String()), &html); err != nil {
		return nil, 0, fmt.Errorf("rendering digest for chat %s: %w", chatID, err)
	}
	return html.Bytes(), len(entries), nil
}
