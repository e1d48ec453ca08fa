package http

import (
	"context"

	"github.com/zycare/auth-api/internal/domain"
)

// IdentityRepository is the minimal interface the router requires from the
// identity directory.
type IdentityRepository interface {
	GetByIdentifier(ctx context.Context, identifier string) (*domain.Identity, error)
	Get(ctx context.Context, identityID string) (*domain.Identity, error)
	Put(ctx context.Context, ident *domain.Identity) error
	Update(ctx context.Context, identityID string, updates map[string]interface{}) error
	MarkWelcomed(ctx context.Context, identityID string) (bool, error)
}

// SessionRepository is the minimal interface the router requires from a session store.
type SessionRepository interface {
	Put(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error)
	RotateRefreshToken(ctx context.Context, sessionID, newToken string, newExpiry int64) error
	Update(ctx context.Context, sessionID string, updates map[string]interface{}) error
}

// PendingRepository is the minimal interface the router requires from a
// pending-verification store.
type PendingRepository interface {
	Put(ctx context.Context, v *domain.PendingVerification) error
	Get(ctx context.Context, identifier string) (*domain.PendingVerification, error)
	IncrementAttempts(ctx context.Context, identifier string) (int, error)
	Delete(ctx context.Context, identifier string) error
	DeleteExpired(ctx context.Context) (int, error)
}
