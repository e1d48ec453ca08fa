package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/zycare/auth-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// DispatchEnvelope wraps request-code and resend-code responses.
type DispatchEnvelope struct {
	Message     string `json:"message,omitempty"`
	Dispatched  bool   `json:"dispatched"`
	IdentityID  string `json:"identity_id,omitempty"`
	Role        string `json:"role,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// AuthEnvelope wraps verify-code and refresh responses.
type AuthEnvelope struct {
	Bearer       string          `json:"Bearer,omitempty"`
	RefreshToken string          `json:"refresh_token,omitempty"`
	Session      *domain.Session `json:"session,omitempty"`
	Message      string          `json:"message,omitempty"`
	Error        string          `json:"error,omitempty"`
}

// SessionEnvelope wraps current-session responses.
type SessionEnvelope struct {
	Session *domain.Session `json:"session,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// invalidCodeEnvelope reports a wrong guess and the remaining budget.
type invalidCodeEnvelope struct {
	Error             string `json:"error"`
	RemainingAttempts int    `json:"remaining_attempts"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// httpError maps a service error onto the wire: status code plus a JSON body.
// Unrecognized errors become 500 with a generic message so infrastructure
// detail never leaks to clients.
func httpError(w http.ResponseWriter, err error) {
	var ice *domain.InvalidCodeError
	if errors.As(err, &ice) {
		writeJSON(w, http.StatusUnauthorized, invalidCodeEnvelope{
			Error:             ice.Error(),
			RemainingAttempts: ice.Remaining,
		})
		return
	}
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNoActiveCode), errors.Is(err, domain.ErrUnknownIdentity), errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrCodeExpired):
		writeError(w, http.StatusGone, err.Error())
	case errors.Is(err, domain.ErrTooManyAttempts):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrDeliveryFailed):
		writeError(w, http.StatusBadGateway, "could not deliver the code, try again later")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
