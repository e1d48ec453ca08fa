package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/zycare/auth-api/internal/application/otpauth"
	"github.com/zycare/auth-api/internal/application/session"
	"github.com/zycare/auth-api/internal/domain"
	"github.com/zycare/auth-api/internal/pkg/validate"
)

// AuthHandler handles the passwordless login endpoints.
type AuthHandler struct {
	otp      otpauth.Service
	sessions session.Service
}

func NewAuthHandler(otp otpauth.Service, sessions session.Service) *AuthHandler {
	return &AuthHandler{otp: otp, sessions: sessions}
}

func (h *AuthHandler) RequestCode(w http.ResponseWriter, r *http.Request) {
	var req domain.RequestCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.otp.RequestCode(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DispatchEnvelope{
		Message:     "verification code sent",
		Dispatched:  result.Dispatched,
		IdentityID:  result.IdentityID,
		Role:        result.Role,
		DisplayName: result.DisplayName,
	})
}

func (h *AuthHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ident, err := h.otp.VerifyCode(r.Context(), req.Identifier, req.Code)
	if err != nil {
		httpError(w, err)
		return
	}
	result, err := h.sessions.CreateForIdentity(r.Context(), ident)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{
		Bearer:       result.Bearer,
		RefreshToken: result.RefreshToken,
		Session:      result.Session,
	})
}

func (h *AuthHandler) ResendCode(w http.ResponseWriter, r *http.Request) {
	var req domain.ResendCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.otp.ResendCode(r.Context(), req.Identifier); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DispatchEnvelope{Message: "verification code sent", Dispatched: true})
}

// Invalidate voids any pending code for the identifier. Support-agent only,
// enforced by the router.
func (h *AuthHandler) Invalidate(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")
	if err := h.otp.Invalidate(r.Context(), identifier); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "pending code invalidated"})
}
