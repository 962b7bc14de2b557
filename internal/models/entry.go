package models

import (
	"sort"
	"strconv"
	"time"
)

// JournalEntry is a single note in a chat's live collection. Key is the
// unix second of the confirmed append and doubles as the storage key.
type JournalEntry struct {
	Key  int64
	Text string
}

// KeyString returns the document field name for the entry.
func (e JournalEntry) KeyString() string {
	return strconv.FormatInt(e.Key, 10)
}

// LocalTime returns the entry timestamp shifted by the chat's timezone
// offset. Offsets are whole hours, so key order equals local order.
func (e JournalEntry) LocalTime(tzOffsetHours int) time.Time {
	return time.Unix(e.Key, 0).UTC().Add(time.Duration(tzOffsetHours) * time.Hour)
}

// EntriesFromDocument converts a live document (field name → text) into
// entries sorted ascending by timestamp. Fields with non-numeric names
// are skipped: they cannot have been written by the append flow.
func EntriesFromDocument(doc map[string]string) []JournalEntry {
	entries := make([]JournalEntry, 0, len(doc))
	for key, text := range doc {
		ts, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		entries = append(entries, JournalEntry{Key: ts, Text: text})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key < entries[j].Key
	})
	return entries
}
