package handlers

import (
	"net/http"

	"github.com/dvloznov/expense-bot/internal/api/middleware"
)

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
