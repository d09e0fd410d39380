package handler

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/B1acB1rd/SolSwap/internal/errors"
	"github.com/B1acB1rd/SolSwap/internal/middleware"
	"github.com/B1acB1rd/SolSwap/internal/redis"
	"github.com/B1acB1rd/SolSwap/internal/service"
)

type ChatHandler struct {
	conversations *service.ConversationService
	limiter       *middleware.RedisRateLimiter
	limitPerMin   int
}

func NewChatHandler(
	conversations *service.ConversationService,
	limiter *middleware.RedisRateLimiter,
	limitPerMin int,
) *ChatHandler {
	return &ChatHandler{
		conversations: conversations,
		limiter:       limiter,
		limitPerMin:   limitPerMin,
	}
}

func (h *ChatHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/chat", h.HandleChat)
	r.Get("/orders/{id}", h.GetOrder)

	return r
}

// POST /v1/chat
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var input service.TurnInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, apperrors.InvalidInput("body", "must be valid JSON"))
		return
	}

	if h.limiter != nil && input.UserID != "" {
		key := redis.RateLimitKey(input.UserID, clientIP(r))
		allowed, remaining, resetAt := h.limiter.Check(r.Context(), key, h.limitPerMin)

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(h.limitPerMin))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt, 10))

		if !allowed {
			log.Warn().Str("userId", input.UserID).Msg("chat rate limit exceeded")
			w.Header().Set("Retry-After", "60")
			writeError(w, apperrors.RateLimitExceeded())
			return
		}
	}

	result, err := h.conversations.HandleTurn(r.Context(), input)
	if err != nil {
		log.Error().Err(err).Str("userId", input.UserID).Msg("chat turn failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GET /v1/orders/{id}
func (h *ChatHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, apperrors.MissingRequired("id"))
		return
	}

	order, err := h.conversations.GetOrder(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
