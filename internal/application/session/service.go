// Package session issues and maintains authenticated sessions after a
// successful code verification.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/zycare/auth-api/internal/domain"
	"github.com/zycare/auth-api/internal/pkg/id"
	"github.com/zycare/auth-api/internal/pkg/token"
)

type SessionStore interface {
	Put(ctx context.Context, sess *domain.Session) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	GetByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error)
	RotateRefreshToken(ctx context.Context, sessionID, newToken string, newExpiry int64) error
	Update(ctx context.Context, sessionID string, updates map[string]interface{}) error
}

type Directory interface {
	Get(ctx context.Context, identityID string) (*domain.Identity, error)
}

type Signer interface {
	Sign(identityID, role, sessionID string) (string, error)
}

// AuthResult is the credential pair handed to the client.
type AuthResult struct {
	Bearer       string
	RefreshToken string
	Session      *domain.Session
}

type Service interface {
	CreateForIdentity(ctx context.Context, ident *domain.Identity) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)
	Logout(ctx context.Context, sessionID string) error
	GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error)
}

type ServiceDeps struct {
	SessionRepo     SessionStore
	Directory       Directory
	Signer          Signer
	RefreshTokenDur time.Duration
}

type service struct {
	deps ServiceDeps
}

func NewService(deps ServiceDeps) Service {
	if deps.RefreshTokenDur <= 0 {
		deps.RefreshTokenDur = 30 * 24 * time.Hour
	}
	return &service{deps: deps}
}

func (s *service) CreateForIdentity(ctx context.Context, ident *domain.Identity) (*AuthResult, error) {
	refreshToken, err := token.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sess := &domain.Session{
		SessionID:        id.New(),
		IdentityID:       ident.IdentityID,
		Enable:           true,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: now.Add(s.deps.RefreshTokenDur).Unix(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.deps.SessionRepo.Put(ctx, sess); err != nil {
		return nil, err
	}
	bearer, err := s.deps.Signer.Sign(ident.IdentityID, ident.Role, sess.SessionID)
	if err != nil {
		return nil, err
	}
	sess.Identity = ident
	return &AuthResult{Bearer: bearer, RefreshToken: refreshToken, Session: sess}, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	sess, err := s.deps.SessionRepo.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", domain.ErrUnauthorized)
	}
	if sess.RefreshExpiresAt < time.Now().Unix() {
		return nil, fmt.Errorf("refresh token expired: %w", domain.ErrUnauthorized)
	}
	newToken, err := token.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	newExpiry := time.Now().Add(s.deps.RefreshTokenDur).Unix()
	if err := s.deps.SessionRepo.RotateRefreshToken(ctx, sess.SessionID, newToken, newExpiry); err != nil {
		return nil, err
	}
	ident, err := s.deps.Directory.Get(ctx, sess.IdentityID)
	if err != nil {
		return nil, err
	}
	bearer, err := s.deps.Signer.Sign(ident.IdentityID, ident.Role, sess.SessionID)
	if err != nil {
		return nil, err
	}
	sess.RefreshToken = newToken
	sess.RefreshExpiresAt = newExpiry
	sess.Identity = ident
	return &AuthResult{Bearer: bearer, RefreshToken: newToken, Session: sess}, nil
}

func (s *service) Logout(ctx context.Context, sessionID string) error {
	return s.deps.SessionRepo.Update(ctx, sessionID, map[string]interface{}{"enable": false})
}

func (s *service) GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error) {
	sess, err := s.deps.SessionRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Enable {
		return nil, fmt.Errorf("session disabled: %w", domain.ErrUnauthorized)
	}
	ident, err := s.deps.Directory.Get(ctx, sess.IdentityID)
	if err != nil {
		return nil, err
	}
	sess.Identity = ident
	return sess, nil
}
