package controllers

import (
	"context"
	"net/http"
	"widt/internal/bot"
	"widt/internal/models"
	"widt/internal/providers"

	json "github.com/goccy/go-json"
)

const maxRequestBodySize = 1 << 20 // 1 MB

// InboundController accepts chat messages from the bot-framework bridge
// and hands them to the dispatcher. Handling is asynchronous: the
// bridge only needs to know the message was accepted.
type InboundController struct {
	logger     providers.Logger
	dispatcher *bot.Dispatcher
}

func NewInboundController(logger providers.Logger, dispatcher *bot.Dispatcher) *InboundController {
	return &InboundController{
		logger:     logger,
		dispatcher: dispatcher,
	}
}

func (ic *InboundController) Receive(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var msg models.InboundMessage
	err := json.NewDecoder(r.Body).Decode(&msg)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if msg.ChatID == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	// Detached from the request context: the bridge gets its 202 while
	// per-chat handling proceeds (and applies its own timeout).
	go ic.dispatcher.HandleInbound(context.Background(), msg)
	w.WriteHeader(http.StatusAccepted)
}
