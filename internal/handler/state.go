package handler

import (
	"encoding/json"
	"net/http"

	"github.com/ljosc/discuss/internal/domain"
	"github.com/ljosc/discuss/internal/logger"
)

type StateResponse struct {
	IsLoggedIn bool            `json:"isLoggedIn"`
	Profile    *domain.Profile `json:"profile"`
}

// StateHandler reports the session for pages polling from other tabs.
func (h *Handler) StateHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	err := json.NewEncoder(w).Encode(StateResponse{
		IsLoggedIn: h.Session.IsLoggedIn(),
		Profile:    h.Session.Profile(),
	})
	if err != nil {
		logger.Log.Error("encoding state response", "component", "handler", "error", err)
	}
}
