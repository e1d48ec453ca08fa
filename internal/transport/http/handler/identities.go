package handler

import (
	"context"
	"net/http"

	"github.com/zycare/auth-api/internal/domain"
	"github.com/zycare/auth-api/internal/transport/http/middleware"
)

// IdentityReader is the read side of the identity directory.
type IdentityReader interface {
	Get(ctx context.Context, identityID string) (*domain.Identity, error)
}

// IdentityHandler serves the caller's own identity record.
type IdentityHandler struct {
	directory IdentityReader
}

func NewIdentityHandler(directory IdentityReader) *IdentityHandler {
	return &IdentityHandler{directory: directory}
}

func (h *IdentityHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	ident, err := h.directory.Get(r.Context(), claims.IdentityID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ident)
}
