package models

import "time"

// ChatMetadata is the per-chat configuration record stored in the meta
// collection. Timezone and EndOfDay are pointers: a missing value is a
// typed absence, not a zero hour.
type ChatMetadata struct {
	ChatID string `json:"-"`

	Timezone *int `json:"timezone,omitempty"`
	EndOfDay *int `json:"end_of_day,omitempty"`

	Email                      string `json:"email,omitempty"`
	EmailVerified              bool   `json:"email_verified,omitempty"`
	EmailVerificationCode      string `json:"email_verification_code,omitempty"`
	EmailVerificationTimestamp int64  `json:"email_verification_timestamp,omitempty"`

	Reminder *bool `json:"reminder,omitempty"`
}

// Configured reports whether the chat has completed the config flow.
func (m *ChatMetadata) Configured() bool {
	return m != nil && m.Timezone != nil && m.EndOfDay != nil
}

// TimezoneOffset returns the stored offset in hours, or 0 if unset.
func (m *ChatMetadata) TimezoneOffset() int {
	if m == nil || m.Timezone == nil {
		return 0
	}
	return *m.Timezone
}

// EndOfDayHour returns the configured local end-of-day hour, or -1 if
// unset so it never matches a real hour.
func (m *ChatMetadata) EndOfDayHour() int {
	if m == nil || m.EndOfDay == nil {
		return -1
	}
	return *m.EndOfDay
}

// ReminderEnabled defaults to true when the field was never written.
func (m *ChatMetadata) ReminderEnabled() bool {
	if m == nil || m.Reminder == nil {
		return true
	}
	return *m.Reminder
}

// LocalTime shifts a UTC instant by the chat's timezone offset.
func (m *ChatMetadata) LocalTime(utc time.Time) time.Time {
	return utc.Add(time.Duration(m.TimezoneOffset()) * time.Hour)
}

func IntPtr(v int) *int    { return &v }
func BoolPtr(v bool) *bool { return &v }
