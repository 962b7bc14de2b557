package models

import "time"

// PeriodKeyLayout formats the local end-of-day instant into the archive
// bundle key, e.g. "20260901-22".
const PeriodKeyLayout = "20060102-15"

// ArchiveBundle is one sealed period of a chat's archive document. The
// archive document maps period key → entries (field name → text).
type ArchiveBundle struct {
	ChatID    string
	PeriodKey string
	Entries   map[string]string
}

// PeriodKey derives the bundle key from a chat-local instant.
func PeriodKey(local time.Time) string {
	return local.Format(PeriodKeyLayout)
}
