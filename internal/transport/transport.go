// Package transport defines the chat-delivery collaborator boundary.
// The core only ever talks to a Sender; the bridge to the actual bot
// framework lives behind the configured outbound URL.
package transport

import "context"

// Document is a file handed back to the chat (e.g. an export digest).
type Document struct {
	Filename string
	MimeType string
	Content  []byte
}

// Sender delivers outbound messages keyed by chat id. Keyboard is an
// optional one-row reply-keyboard hint.
type Sender interface {
	SendText(ctx context.Context, chatID, text string, keyboard []string) error
	SendDocument(ctx context.Context, chatID string, doc Document) error
}
