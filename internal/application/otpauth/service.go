// Package otpauth owns the one-time-code lifecycle: issuance, expiry,
// attempt-limited verification, and the hand-off from an unauthenticated
// identifier to a confirmed identity.
package otpauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/zycare/auth-api/internal/domain"
	"github.com/zycare/auth-api/internal/pkg/code"
	"github.com/zycare/auth-api/internal/pkg/id"
	"github.com/zycare/auth-api/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

// PendingStore holds at most one pending verification per identifier.
// Put overwrites; Delete is idempotent; IncrementAttempts is atomic and
// returns the post-increment count.
type PendingStore interface {
	Put(ctx context.Context, v *domain.PendingVerification) error
	Get(ctx context.Context, identifier string) (*domain.PendingVerification, error)
	IncrementAttempts(ctx context.Context, identifier string) (int, error)
	Delete(ctx context.Context, identifier string) error
	DeleteExpired(ctx context.Context) (int, error)
}

// IdentityDirectory is the durable user directory. The authentication
// service creates and updates identities but never deletes them.
type IdentityDirectory interface {
	GetByIdentifier(ctx context.Context, identifier string) (*domain.Identity, error)
	Get(ctx context.Context, identityID string) (*domain.Identity, error)
	Put(ctx context.Context, ident *domain.Identity) error
	Update(ctx context.Context, identityID string, updates map[string]interface{}) error
	// MarkWelcomed atomically flips is_new_user and reports whether this
	// call performed the flip.
	MarkWelcomed(ctx context.Context, identityID string) (bool, error)
}

// Sender is the outbound notification channel.
type Sender interface {
	SendCode(ctx context.Context, identifier, name, otp string) error
	SendWelcome(ctx context.Context, identifier, name string) error
}

// RequestCodeResult is returned to the caller after a successful dispatch.
// The code itself travels only through the notification channel.
type RequestCodeResult struct {
	Dispatched  bool   `json:"dispatched"`
	IdentityID  string `json:"identity_id"`
	Role        string `json:"role"`
	DisplayName string `json:"display_name"`
}

type Service interface {
	RequestCode(ctx context.Context, req domain.RequestCodeRequest) (*RequestCodeResult, error)
	VerifyCode(ctx context.Context, identifier, submitted string) (*domain.Identity, error)
	ResendCode(ctx context.Context, identifier string) error
	// Invalidate voids any pending code for the identifier (support action).
	Invalidate(ctx context.Context, identifier string) error
}

type ServiceDeps struct {
	Pending     PendingStore
	Directory   IdentityDirectory
	Sender      Sender
	CodeTTL     time.Duration
	MaxAttempts int
	SendTimeout time.Duration
}

type service struct {
	deps ServiceDeps
}

func NewService(deps ServiceDeps) Service {
	if deps.CodeTTL <= 0 {
		deps.CodeTTL = domain.CodeTTL
	}
	if deps.MaxAttempts <= 0 {
		deps.MaxAttempts = domain.MaxAttempts
	}
	if deps.SendTimeout <= 0 {
		deps.SendTimeout = 15 * time.Second
	}
	return &service{deps: deps}
}

func (s *service) RequestCode(ctx context.Context, req domain.RequestCodeRequest) (*RequestCodeResult, error) {
	identifier, _, err := validate.Identifier(req.Identifier)
	if err != nil {
		return nil, err
	}
	if req.Role != "" && !domain.ValidRole(req.Role) {
		return nil, fmt.Errorf("unknown role %q: %w", req.Role, domain.ErrBadRequest)
	}

	ident, err := s.deps.Directory.GetByIdentifier(ctx, identifier)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		now := time.Now().UTC()
		ident = &domain.Identity{
			IdentityID:  id.New(),
			Identifier:  identifier,
			DisplayName: orDefault(req.DisplayName, "User"),
			Role:        orDefault(req.Role, domain.RolePatient),
			Language:    orDefault(req.Language, "en"),
			IsNewUser:   true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.deps.Directory.Put(ctx, ident); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		updates := map[string]interface{}{}
		if req.DisplayName != "" && req.DisplayName != ident.DisplayName {
			updates["display_name"] = req.DisplayName
			ident.DisplayName = req.DisplayName
		}
		if req.Role != "" && req.Role != ident.Role {
			updates["role"] = req.Role
			ident.Role = req.Role
		}
		if req.Language != "" && req.Language != ident.Language {
			updates["language"] = req.Language
			ident.Language = req.Language
		}
		if len(updates) > 0 {
			if err := s.deps.Directory.Update(ctx, ident.IdentityID, updates); err != nil {
				return nil, err
			}
		}
	}

	if err := s.issue(ctx, identifier, ident.DisplayName); err != nil {
		return nil, err
	}
	return &RequestCodeResult{
		Dispatched:  true,
		IdentityID:  ident.IdentityID,
		Role:        ident.Role,
		DisplayName: ident.DisplayName,
	}, nil
}

func (s *service) ResendCode(ctx context.Context, rawIdentifier string) error {
	identifier, _, err := validate.Identifier(rawIdentifier)
	if err != nil {
		return err
	}
	ident, err := s.deps.Directory.GetByIdentifier(ctx, identifier)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("no identity for %s: %w", identifier, domain.ErrUnknownIdentity)
	}
	if err != nil {
		return err
	}
	return s.issue(ctx, identifier, ident.DisplayName)
}

// issue generates a fresh code, overwrites any pending entry for the
// identifier (attempt counter and expiry reset), and dispatches the code.
// A delivery failure rolls the pending entry back so the caller is never
// told a code is in flight when nothing was sent.
func (s *service) issue(ctx context.Context, identifier, ownerName string) error {
	otp, err := code.New()
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(otp), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	v := &domain.PendingVerification{
		Identifier:  identifier,
		CodeHash:    string(hash),
		OwnerName:   ownerName,
		IssuedAt:    now,
		ExpiresAt:   now.Add(s.deps.CodeTTL).Unix(),
		Attempts:    0,
		MaxAttempts: s.deps.MaxAttempts,
	}
	if err := s.deps.Pending.Put(ctx, v); err != nil {
		return err
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.deps.SendTimeout)
	defer cancel()
	if err := s.deps.Sender.SendCode(sendCtx, identifier, ownerName, otp); err != nil {
		if delErr := s.deps.Pending.Delete(ctx, identifier); delErr != nil {
			slog.Warn("could not roll back pending code after delivery failure", "identifier", identifier, "err", delErr)
		}
		return fmt.Errorf("send code to %s: %v: %w", identifier, err, domain.ErrDeliveryFailed)
	}
	return nil
}

func (s *service) VerifyCode(ctx context.Context, rawIdentifier, submitted string) (*domain.Identity, error) {
	identifier, _, err := validate.Identifier(rawIdentifier)
	if err != nil {
		return nil, err
	}

	v, err := s.deps.Pending.Get(ctx, identifier)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("no pending code for %s: %w", identifier, domain.ErrNoActiveCode)
	}
	if err != nil {
		return nil, err
	}

	// Expiry precedes the attempt check precedes the code comparison; each
	// failure is terminal.
	if v.Expired(time.Now()) {
		if err := s.deps.Pending.Delete(ctx, identifier); err != nil {
			slog.Warn("could not evict expired code", "identifier", identifier, "err", err)
		}
		return nil, fmt.Errorf("code for %s expired: %w", identifier, domain.ErrCodeExpired)
	}
	if v.Attempts >= v.MaxAttempts {
		if err := s.deps.Pending.Delete(ctx, identifier); err != nil {
			slog.Warn("could not evict exhausted code", "identifier", identifier, "err", err)
		}
		return nil, fmt.Errorf("attempt ceiling reached for %s: %w", identifier, domain.ErrTooManyAttempts)
	}

	if bcrypt.CompareHashAndPassword([]byte(v.CodeHash), []byte(submitted)) != nil {
		attempts, err := s.deps.Pending.IncrementAttempts(ctx, identifier)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("no pending code for %s: %w", identifier, domain.ErrNoActiveCode)
		}
		if err != nil {
			return nil, err
		}
		if attempts >= v.MaxAttempts {
			if err := s.deps.Pending.Delete(ctx, identifier); err != nil {
				slog.Warn("could not evict exhausted code", "identifier", identifier, "err", err)
			}
			return nil, fmt.Errorf("attempt ceiling reached for %s: %w", identifier, domain.ErrTooManyAttempts)
		}
		return nil, &domain.InvalidCodeError{Remaining: v.MaxAttempts - attempts}
	}

	// Codes are single-use: consume before handing the identity back.
	if err := s.deps.Pending.Delete(ctx, identifier); err != nil {
		return nil, fmt.Errorf("consume code for %s: %w", identifier, err)
	}

	ident, err := s.deps.Directory.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if ident.IsNewUser {
		flipped, err := s.deps.Directory.MarkWelcomed(ctx, ident.IdentityID)
		if err != nil {
			slog.Warn("could not mark identity welcomed", "identity_id", ident.IdentityID, "err", err)
		} else {
			ident.IsNewUser = false
			if flipped {
				wctx, cancel := context.WithTimeout(ctx, s.deps.SendTimeout)
				defer cancel()
				if err := s.deps.Sender.SendWelcome(wctx, identifier, ident.DisplayName); err != nil {
					slog.Warn("welcome notification failed", "identifier", identifier, "err", err)
				}
			}
		}
	}
	return ident, nil
}

func (s *service) Invalidate(ctx context.Context, rawIdentifier string) error {
	identifier, _, err := validate.Identifier(rawIdentifier)
	if err != nil {
		return err
	}
	return s.deps.Pending.Delete(ctx, identifier)
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
