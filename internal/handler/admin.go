package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/B1acB1rd/SolSwap/internal/errors"
	"github.com/B1acB1rd/SolSwap/internal/service"
)

type AdminHandler struct {
	conversations  *service.ConversationService
	authMiddleware func(http.Handler) http.Handler
}

func NewAdminHandler(
	conversations *service.ConversationService,
	authMiddleware func(http.Handler) http.Handler,
) *AdminHandler {
	return &AdminHandler{
		conversations:  conversations,
		authMiddleware: authMiddleware,
	}
}

func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(h.authMiddleware)
		r.Get("/orders", h.ListOrders)
		r.Get("/sessions/{userId}", h.GetSession)
	})

	return r
}

// GET /admin/orders?limit=50
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, apperrors.InvalidInput("limit", "must be an integer"))
			return
		}
		limit = parsed
	}

	orders, err := h.conversations.ListOrders(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"orders": orders,
		"count":  len(orders),
	})
}

// GET /admin/sessions/{userId}
func (h *AdminHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if userID == "" {
		writeError(w, apperrors.MissingRequired("userId"))
		return
	}

	session, err := h.conversations.GetSession(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}
