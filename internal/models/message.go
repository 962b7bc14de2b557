package models

import "strings"

// InboundMessage is one chat message as delivered by the transport.
type InboundMessage struct {
	ChatID    string `json:"chat_id"`
	FirstName string `json:"first_name"`
	Text      string `json:"text"`
}

// Command returns the leading /command in lowercase, or "" for free text.
func (m InboundMessage) Command() string {
	if !strings.HasPrefix(m.Text, "/") {
		return ""
	}
	cmd := strings.Fields(m.Text)[0]
	return strings.ToLower(cmd)
}

// Args returns the whitespace-separated tokens after the command.
func (m InboundMessage) Args() []string {
	fields := strings.Fields(m.Text)
	if len(fields) <= 1 {
		return nil
	}
	return fields[1:]
}
