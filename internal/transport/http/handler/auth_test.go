package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zycare/auth-api/internal/application/otpauth"
	"github.com/zycare/auth-api/internal/application/session"
	"github.com/zycare/auth-api/internal/domain"
)

// --- mocks ---

type mockOTPSvc struct{ mock.Mock }

func (m *mockOTPSvc) RequestCode(ctx context.Context, req domain.RequestCodeRequest) (*otpauth.RequestCodeResult, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*otpauth.RequestCodeResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOTPSvc) VerifyCode(ctx context.Context, identifier, submitted string) (*domain.Identity, error) {
	args := m.Called(ctx, identifier, submitted)
	if i, _ := args.Get(0).(*domain.Identity); i != nil {
		return i, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOTPSvc) ResendCode(ctx context.Context, identifier string) error {
	return m.Called(ctx, identifier).Error(0)
}

func (m *mockOTPSvc) Invalidate(ctx context.Context, identifier string) error {
	return m.Called(ctx, identifier).Error(0)
}

type mockSessionSvc struct{ mock.Mock }

func (m *mockSessionSvc) CreateForIdentity(ctx context.Context, ident *domain.Identity) (*session.AuthResult, error) {
	args := m.Called(ctx, ident)
	if r, _ := args.Get(0).(*session.AuthResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSessionSvc) Refresh(ctx context.Context, refreshToken string) (*session.AuthResult, error) {
	args := m.Called(ctx, refreshToken)
	if r, _ := args.Get(0).(*session.AuthResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSessionSvc) Logout(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

func (m *mockSessionSvc) GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error) {
	args := m.Called(ctx, sessionID)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- helpers ---

func postJSON(t *testing.T, h http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// --- RequestCode ---

func TestRequestCode_HappyPath(t *testing.T) {
	otp := &mockOTPSvc{}
	otp.On("RequestCode", mock.Anything, mock.MatchedBy(func(req domain.RequestCodeRequest) bool {
		return req.Identifier == "a@b.com"
	})).Return(&otpauth.RequestCodeResult{
		Dispatched: true, IdentityID: "id1", Role: domain.RolePatient, DisplayName: "Ana",
	}, nil)

	h := NewAuthHandler(otp, nil)
	rr := postJSON(t, h.RequestCode, "/v1/auth/request-code", map[string]string{
		"identifier": "a@b.com", "display_name": "Ana",
	})

	assert.Equal(t, http.StatusOK, rr.Code)
	var env DispatchEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.True(t, env.Dispatched)
	assert.Equal(t, "id1", env.IdentityID)
}

func TestRequestCode_MissingIdentifier(t *testing.T) {
	h := NewAuthHandler(&mockOTPSvc{}, nil)
	rr := postJSON(t, h.RequestCode, "/v1/auth/request-code", map[string]string{"display_name": "Ana"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRequestCode_BadRole(t *testing.T) {
	h := NewAuthHandler(&mockOTPSvc{}, nil)
	rr := postJSON(t, h.RequestCode, "/v1/auth/request-code", map[string]string{
		"identifier": "a@b.com", "role": "superuser",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRequestCode_DeliveryFailure_BadGateway(t *testing.T) {
	otp := &mockOTPSvc{}
	otp.On("RequestCode", mock.Anything, mock.Anything).
		Return(nil, domain.ErrDeliveryFailed)

	h := NewAuthHandler(otp, nil)
	rr := postJSON(t, h.RequestCode, "/v1/auth/request-code", map[string]string{"identifier": "a@b.com"})
	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

// --- VerifyCode ---

func verifyBody(code string) map[string]string {
	return map[string]string{"identifier": "a@b.com", "code": code}
}

func TestVerifyCode_HappyPath(t *testing.T) {
	otp := &mockOTPSvc{}
	ss := &mockSessionSvc{}

	ident := &domain.Identity{IdentityID: "id1", Identifier: "a@b.com", Role: domain.RolePatient}
	otp.On("VerifyCode", mock.Anything, "a@b.com", "123456").Return(ident, nil)
	ss.On("CreateForIdentity", mock.Anything, ident).Return(&session.AuthResult{
		Bearer:       "bearer",
		RefreshToken: "refresh",
		Session:      &domain.Session{SessionID: "s1", IdentityID: "id1", Enable: true, Identity: ident},
	}, nil)

	h := NewAuthHandler(otp, ss)
	rr := postJSON(t, h.VerifyCode, "/v1/auth/verify-code", verifyBody("123456"))

	assert.Equal(t, http.StatusOK, rr.Code)
	var env AuthEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.Equal(t, "bearer", env.Bearer)
	assert.Equal(t, "refresh", env.RefreshToken)
	require.NotNil(t, env.Session)
	assert.Equal(t, "id1", env.Session.IdentityID)
}

func TestVerifyCode_NonNumericCode_Rejected(t *testing.T) {
	h := NewAuthHandler(&mockOTPSvc{}, nil)
	rr := postJSON(t, h.VerifyCode, "/v1/auth/verify-code", verifyBody("12345a"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestVerifyCode_WrongLength_Rejected(t *testing.T) {
	h := NewAuthHandler(&mockOTPSvc{}, nil)
	rr := postJSON(t, h.VerifyCode, "/v1/auth/verify-code", verifyBody("12345"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestVerifyCode_NoActiveCode_NotFound(t *testing.T) {
	otp := &mockOTPSvc{}
	otp.On("VerifyCode", mock.Anything, "a@b.com", "123456").Return(nil, domain.ErrNoActiveCode)

	h := NewAuthHandler(otp, nil)
	rr := postJSON(t, h.VerifyCode, "/v1/auth/verify-code", verifyBody("123456"))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestVerifyCode_Expired_Gone(t *testing.T) {
	otp := &mockOTPSvc{}
	otp.On("VerifyCode", mock.Anything, "a@b.com", "123456").Return(nil, domain.ErrCodeExpired)

	h := NewAuthHandler(otp, nil)
	rr := postJSON(t, h.VerifyCode, "/v1/auth/verify-code", verifyBody("123456"))
	assert.Equal(t, http.StatusGone, rr.Code)
}

func TestVerifyCode_TooManyAttempts(t *testing.T) {
	otp := &mockOTPSvc{}
	otp.On("VerifyCode", mock.Anything, "a@b.com", "123456").Return(nil, domain.ErrTooManyAttempts)

	h := NewAuthHandler(otp, nil)
	rr := postJSON(t, h.VerifyCode, "/v1/auth/verify-code", verifyBody("123456"))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
}

func TestVerifyCode_WrongCode_ReportsRemaining(t *testing.T) {
	otp := &mockOTPSvc{}
	otp.On("VerifyCode", mock.Anything, "a@b.com", "000000").
		Return(nil, &domain.InvalidCodeError{Remaining: 4})

	h := NewAuthHandler(otp, nil)
	rr := postJSON(t, h.VerifyCode, "/v1/auth/verify-code", verifyBody("000000"))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	var env invalidCodeEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.Equal(t, 4, env.RemainingAttempts)
}

func TestVerifyCode_SessionFailure_InternalError(t *testing.T) {
	otp := &mockOTPSvc{}
	ss := &mockSessionSvc{}

	ident := &domain.Identity{IdentityID: "id1"}
	otp.On("VerifyCode", mock.Anything, "a@b.com", "123456").Return(ident, nil)
	ss.On("CreateForIdentity", mock.Anything, ident).Return(nil, errors.New("table down"))

	h := NewAuthHandler(otp, ss)
	rr := postJSON(t, h.VerifyCode, "/v1/auth/verify-code", verifyBody("123456"))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

// --- ResendCode ---

func TestResendCode_HappyPath(t *testing.T) {
	otp := &mockOTPSvc{}
	otp.On("ResendCode", mock.Anything, "a@b.com").Return(nil)

	h := NewAuthHandler(otp, nil)
	rr := postJSON(t, h.ResendCode, "/v1/auth/resend-code", map[string]string{"identifier": "a@b.com"})

	assert.Equal(t, http.StatusOK, rr.Code)
	otp.AssertExpectations(t)
}

func TestResendCode_UnknownIdentity_NotFound(t *testing.T) {
	otp := &mockOTPSvc{}
	otp.On("ResendCode", mock.Anything, "a@b.com").Return(domain.ErrUnknownIdentity)

	h := NewAuthHandler(otp, nil)
	rr := postJSON(t, h.ResendCode, "/v1/auth/resend-code", map[string]string{"identifier": "a@b.com"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
