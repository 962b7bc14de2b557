package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEntriesFromDocument_SortedAscending(t *testing.T) {
	doc := map[string]string{
		"1700000300": "third",
		"1700000100": "first",
		"1700000200": "second",
	}
	entries := EntriesFromDocument(doc)
	assert.Len(t, entries, 3)
	assert.Equal(t, "first", entries[0].Text)
	assert.Equal(t, "second", entries[1].Text)
	assert.Equal(t, "third", entries[2].Text)
}

func TestEntriesFromDocument_SkipsNonNumericKeys(t *testing.T) {
	doc := map[string]string{
		"1700000100": "kept",
		"not-a-key":  "dropped",
	}
	entries := EntriesFromDocument(doc)
	assert.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0].Text)
}

func TestJournalEntry_LocalTime(t *testing.T) {
	entry := JournalEntry{Key: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC).Unix()}
	assert.Equal(t, 20, entry.LocalTime(8).Hour())
	assert.Equal(t, 4, entry.LocalTime(-8).Hour())
}

func TestJournalEntry_KeyString(t *testing.T) {
	entry := JournalEntry{Key: 1700000100}
	assert.Equal(t, "1700000100", entry.KeyString())
}
