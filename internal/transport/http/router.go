package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/zycare/auth-api/internal/application/notify"
	"github.com/zycare/auth-api/internal/application/otpauth"
	"github.com/zycare/auth-api/internal/application/session"
	"github.com/zycare/auth-api/internal/config"
	"github.com/zycare/auth-api/internal/domain"
	jwtinfra "github.com/zycare/auth-api/internal/infrastructure/jwt"
	"github.com/zycare/auth-api/internal/infrastructure/smtp"
	"github.com/zycare/auth-api/internal/infrastructure/sns"
	"github.com/zycare/auth-api/internal/transport/http/handler"
	appmiddleware "github.com/zycare/auth-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	IdentityRepo IdentityRepository
	SessionRepo  SessionRepository
	PendingRepo  PendingRepository
	Mailer       smtp.Mailer
	SMSSender    sns.SMSSender
	JWTProvider  *jwtinfra.Provider
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10 — applied to code issuance and verification.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	notifySvc := notify.NewService(deps.Mailer, deps.SMSSender, cfg.AppName)
	otpSvc := otpauth.NewService(otpauth.ServiceDeps{
		Pending:     deps.PendingRepo,
		Directory:   deps.IdentityRepo,
		Sender:      notifySvc,
		CodeTTL:     cfg.OTPCodeTTL,
		MaxAttempts: cfg.OTPMaxAttempts,
		SendTimeout: cfg.OTPSendTimeout,
	})
	sessionSvc := session.NewService(session.ServiceDeps{
		SessionRepo:     deps.SessionRepo,
		Directory:       deps.IdentityRepo,
		Signer:          deps.JWTProvider,
		RefreshTokenDur: cfg.RefreshTokenExpiry,
	})

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(otpSvc, sessionSvc)
	sessionH := handler.NewSessionHandler(sessionSvc)
	identityH := handler.NewIdentityHandler(deps.IdentityRepo)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/auth/request-code", authH.RequestCode)
		r.With(sensitiveRL.Limit).Post("/auth/verify-code", authH.VerifyCode)
		r.With(sensitiveRL.Limit).Post("/auth/resend-code", authH.ResendCode)
		r.Post("/sessions/refresh", sessionH.Refresh)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/sessions", sessionH.GetCurrent)
			r.Post("/sessions/logout", sessionH.Logout)
			r.Get("/identities/me", identityH.Me)

			// Support-agent-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAgent))

				r.Delete("/auth/codes/{identifier}", authH.Invalidate)
			})
		})
	})

	return r
}
