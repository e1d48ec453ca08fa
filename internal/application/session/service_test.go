package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zycare/auth-api/internal/domain"
)

// --- mocks ---

type mockSessionStore struct{ mock.Mock }

func (m *mockSessionStore) Put(ctx context.Context, s *domain.Session) error {
	return m.Called(ctx, s).Error(0)
}
func (m *mockSessionStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	args := m.Called(ctx, sessionID)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockSessionStore) GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error) {
	args := m.Called(ctx, token)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockSessionStore) RotateRefreshToken(ctx context.Context, sessionID, newToken string, newExpiry int64) error {
	return m.Called(ctx, sessionID, newToken, newExpiry).Error(0)
}
func (m *mockSessionStore) Update(ctx context.Context, sessionID string, updates map[string]interface{}) error {
	return m.Called(ctx, sessionID, updates).Error(0)
}

type mockDirectory struct{ mock.Mock }

func (m *mockDirectory) Get(ctx context.Context, identityID string) (*domain.Identity, error) {
	args := m.Called(ctx, identityID)
	if i, _ := args.Get(0).(*domain.Identity); i != nil {
		return i, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSigner struct{ mock.Mock }

func (m *mockSigner) Sign(identityID, role, sessionID string) (string, error) {
	args := m.Called(identityID, role, sessionID)
	return args.String(0), args.Error(1)
}

// --- helpers ---

func newSvc(ss *mockSessionStore, dir *mockDirectory, sg *mockSigner) Service {
	return NewService(ServiceDeps{
		SessionRepo:     ss,
		Directory:       dir,
		Signer:          sg,
		RefreshTokenDur: 24 * time.Hour,
	})
}

func testIdentity() *domain.Identity {
	return &domain.Identity{
		IdentityID:  "id1",
		Identifier:  "a@b.com",
		DisplayName: "Ana",
		Role:        domain.RolePatient,
	}
}

// --- CreateForIdentity ---

func TestCreateForIdentity(t *testing.T) {
	ss, dir, sg := &mockSessionStore{}, &mockDirectory{}, &mockSigner{}

	ss.On("Put", mock.Anything, mock.MatchedBy(func(s *domain.Session) bool {
		return s.IdentityID == "id1" && s.Enable && s.SessionID != "" && s.RefreshToken != ""
	})).Return(nil)
	sg.On("Sign", "id1", domain.RolePatient, mock.Anything).Return("bearer", nil)

	result, err := newSvc(ss, dir, sg).CreateForIdentity(context.Background(), testIdentity())

	require.NoError(t, err)
	assert.Equal(t, "bearer", result.Bearer)
	assert.Len(t, result.RefreshToken, 64)
	assert.Equal(t, "id1", result.Session.IdentityID)
	assert.Equal(t, "Ana", result.Session.Identity.DisplayName)
	ss.AssertExpectations(t)
}

func TestCreateForIdentity_StoreFailure(t *testing.T) {
	ss, dir, sg := &mockSessionStore{}, &mockDirectory{}, &mockSigner{}
	ss.On("Put", mock.Anything, mock.Anything).Return(errors.New("table down"))

	_, err := newSvc(ss, dir, sg).CreateForIdentity(context.Background(), testIdentity())
	require.Error(t, err)
}

// --- Refresh ---

func TestRefresh_HappyPath_RotatesToken(t *testing.T) {
	ss, dir, sg := &mockSessionStore{}, &mockDirectory{}, &mockSigner{}

	sess := &domain.Session{
		SessionID:        "s1",
		IdentityID:       "id1",
		Enable:           true,
		RefreshToken:     "old-token",
		RefreshExpiresAt: time.Now().Add(time.Hour).Unix(),
	}
	ss.On("GetByRefreshToken", mock.Anything, "old-token").Return(sess, nil)
	ss.On("RotateRefreshToken", mock.Anything, "s1", mock.Anything, mock.Anything).Return(nil)
	dir.On("Get", mock.Anything, "id1").Return(testIdentity(), nil)
	sg.On("Sign", "id1", domain.RolePatient, "s1").Return("new-bearer", nil)

	result, err := newSvc(ss, dir, sg).Refresh(context.Background(), "old-token")

	require.NoError(t, err)
	assert.Equal(t, "new-bearer", result.Bearer)
	assert.NotEqual(t, "old-token", result.RefreshToken)
	ss.AssertExpectations(t)
}

func TestRefresh_UnknownToken(t *testing.T) {
	ss, dir, sg := &mockSessionStore{}, &mockDirectory{}, &mockSigner{}
	ss.On("GetByRefreshToken", mock.Anything, "bogus").Return(nil, domain.ErrNotFound)

	_, err := newSvc(ss, dir, sg).Refresh(context.Background(), "bogus")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestRefresh_ExpiredToken(t *testing.T) {
	ss, dir, sg := &mockSessionStore{}, &mockDirectory{}, &mockSigner{}

	sess := &domain.Session{
		SessionID:        "s1",
		IdentityID:       "id1",
		RefreshToken:     "old-token",
		RefreshExpiresAt: time.Now().Add(-time.Hour).Unix(),
	}
	ss.On("GetByRefreshToken", mock.Anything, "old-token").Return(sess, nil)

	_, err := newSvc(ss, dir, sg).Refresh(context.Background(), "old-token")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	ss.AssertNotCalled(t, "RotateRefreshToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- Logout / GetCurrent ---

func TestLogout_DisablesSession(t *testing.T) {
	ss, dir, sg := &mockSessionStore{}, &mockDirectory{}, &mockSigner{}
	ss.On("Update", mock.Anything, "s1", map[string]interface{}{"enable": false}).Return(nil)

	require.NoError(t, newSvc(ss, dir, sg).Logout(context.Background(), "s1"))
	ss.AssertExpectations(t)
}

func TestGetCurrent(t *testing.T) {
	ss, dir, sg := &mockSessionStore{}, &mockDirectory{}, &mockSigner{}

	ss.On("Get", mock.Anything, "s1").Return(&domain.Session{SessionID: "s1", IdentityID: "id1", Enable: true}, nil)
	dir.On("Get", mock.Anything, "id1").Return(testIdentity(), nil)

	sess, err := newSvc(ss, dir, sg).GetCurrent(context.Background(), "s1")

	require.NoError(t, err)
	assert.Equal(t, "a@b.com", sess.Identity.Identifier)
}

func TestGetCurrent_DisabledSession(t *testing.T) {
	ss, dir, sg := &mockSessionStore{}, &mockDirectory{}, &mockSigner{}
	ss.On("Get", mock.Anything, "s1").Return(&domain.Session{SessionID: "s1", IdentityID: "id1", Enable: false}, nil)

	_, err := newSvc(ss, dir, sg).GetCurrent(context.Background(), "s1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}
