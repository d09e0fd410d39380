package middleware

import (
	"net/http"

	"github.com/B1acB1rd/SolSwap/internal/httputil"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	httputil.WriteJSON(w, status, data)
}
