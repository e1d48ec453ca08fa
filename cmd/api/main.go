package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/zycare/auth-api/internal/application/otpauth"
	"github.com/zycare/auth-api/internal/config"
	"github.com/zycare/auth-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/zycare/auth-api/internal/infrastructure/jwt"
	"github.com/zycare/auth-api/internal/infrastructure/memstore"
	"github.com/zycare/auth-api/internal/infrastructure/redisstore"
	"github.com/zycare/auth-api/internal/infrastructure/smtp"
	"github.com/zycare/auth-api/internal/infrastructure/sns"
	transporthttp "github.com/zycare/auth-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// JWT provider (optional — graceful fallback if keys are missing).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available: %v", err)
	}

	// SMTP mailer.
	mailer := smtp.NewMailer(cfg)

	// SNS SMS sender (optional — graceful fallback, email-only deployments).
	var smsSender sns.SMSSender
	if sender, err := sns.NewSender(cfg); err == nil {
		smsSender = sender
	} else {
		log.Printf("WARN: SNS sender not available: %v", err)
	}

	// Identity and session records always live in DynamoDB; the pending store
	// backend is selectable.
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	var pendingRepo transporthttp.PendingRepository
	switch cfg.OTPStoreBackend {
	case config.StoreDynamo:
		pendingRepo = dynamo.NewVerificationRepo(dynamoClient, cfg.DynamoTables.PendingVerifications)
	case config.StoreRedis:
		pendingRepo = redisstore.New(cfg)
	default:
		pendingRepo = memstore.New()
	}
	log.Printf("pending-verification store: %s", cfg.OTPStoreBackend)

	deps := &transporthttp.Deps{
		IdentityRepo: dynamo.NewIdentityRepo(dynamoClient, cfg.DynamoTables.Identities),
		SessionRepo:  dynamo.NewSessionRepo(dynamoClient, cfg.DynamoTables.Sessions),
		PendingRepo:  pendingRepo,
		Mailer:       mailer,
		SMSSender:    smsSender,
		JWTProvider:  jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	// Background sweep of expired codes. Redis evicts on its own but the
	// sweeper is harmless there; memory and dynamo need it.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go otpauth.NewSweeper(pendingRepo, cfg.OTPSweepEvery).Run(sweepCtx)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	stopSweep()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
