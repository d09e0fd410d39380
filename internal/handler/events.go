package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/B1acB1rd/SolSwap/internal/errors"
	"github.com/B1acB1rd/SolSwap/internal/service"
)

// EventsHandler receives callbacks from the chain watcher and the payout
// processor. Both routes sit behind webhook signature verification.
type EventsHandler struct {
	conversations *service.ConversationService
}

func NewEventsHandler(conversations *service.ConversationService) *EventsHandler {
	return &EventsHandler{conversations: conversations}
}

func (h *EventsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/deposits/confirm", h.ConfirmDeposit)
	r.Post("/payouts/complete", h.CompletePayout)

	return r
}

// POST /internal/deposits/confirm
func (h *EventsHandler) ConfirmDeposit(w http.ResponseWriter, r *http.Request) {
	var event service.DepositEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeError(w, apperrors.InvalidInput("body", "must be valid JSON"))
		return
	}
	if event.OrderID == "" {
		writeError(w, apperrors.MissingRequired("orderId"))
		return
	}

	order, err := h.conversations.ConfirmDeposit(r.Context(), event)
	if err != nil {
		log.Error().Err(err).Str("orderId", event.OrderID).Msg("deposit confirmation failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// POST /internal/payouts/complete
func (h *EventsHandler) CompletePayout(w http.ResponseWriter, r *http.Request) {
	var event service.PayoutEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeError(w, apperrors.InvalidInput("body", "must be valid JSON"))
		return
	}
	if event.OrderID == "" {
		writeError(w, apperrors.MissingRequired("orderId"))
		return
	}

	order, err := h.conversations.CompletePayout(r.Context(), event)
	if err != nil {
		log.Error().Err(err).Str("orderId", event.OrderID).Msg("payout completion failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, order)
}
