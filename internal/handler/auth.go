package handler

import (
	"net/http"

	"github.com/templui/goaltracker/internal/ctxkeys"
	"github.com/templui/goaltracker/internal/service"
)

type AuthHandler struct {
	registry *service.StoreRegistry
}

func NewAuthHandler(registry *service.StoreRegistry) *AuthHandler {
	return &AuthHandler{registry: registry}
}

// Logout tears down the user's goal store. The token itself stays valid until
// it expires; clients discard it.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.registry.Close(ctxkeys.UserID(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}
