package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/termtrack/backend/src/config"
	"github.com/username/termtrack/backend/src/database"
	"github.com/username/termtrack/backend/src/handlers"
	"github.com/username/termtrack/backend/src/logger"
	"github.com/username/termtrack/backend/src/processors"
	"github.com/username/termtrack/backend/src/security"
	"github.com/username/termtrack/backend/src/services"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			config.Cfg.FrontendBaseURL: true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-Requested-With, Cookie, If-None-Match")
			w.Header().Set("Access-Control-Expose-Headers", "X-CSRF-Token, ETag, X-Request-ID")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", origin)
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Termtrack backend server starting...")

	if config.Cfg.JWTSecret == "" || len(config.Cfg.JWTSecret) < 32 {
		logger.L.Error("JWT_SECRET configuration invalid. Must be at least 32 bytes.")
		os.Exit(1)
	}
	if len(config.Cfg.CSRFAuthKey) < 32 {
		logger.L.Error("CSRF_AUTH_KEY must be at least 32 bytes long.")
		os.Exit(1)
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	logger.L.Info("Database initialized successfully.")

	logger.L.Info("Initializing terms cache...")
	termsCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)

	logger.L.Info("Initializing services and handlers...")
	authService := security.NewAuthService(config.Cfg.JWTSecret)
	emailService := services.NewEmailService()
	userHandler := handlers.NewUserHandler(authService, emailService)
	handlers.InitializeGoogleOAuthConfig()

	resolver := processors.NewTermsResolver()
	calculator := processors.NewFeeCalculator(config.Cfg.DefaultBaseRate, config.Cfg.DefaultStepDownYear)
	termsService := services.NewTermsService(resolver, calculator, termsCache)
	agreementService := services.NewAgreementService(termsService)

	investorHandler := handlers.NewInvestorHandler(agreementService)
	fundHandler := handlers.NewFundHandler(agreementService)
	documentHandler := handlers.NewDocumentHandler(agreementService)
	clauseHandler := handlers.NewClauseHandler(agreementService)
	termsHandler := handlers.NewTermsHandler(termsService)
	feeHandler := handlers.NewFeeHandler(termsService)

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	// Public GET routes (no CSRF needed for these GETs)
	apiRouter.HandleFunc("GET /api/auth/csrf", handlers.GetCSRFToken(config.Cfg.CSRFAuthKey))
	apiRouter.HandleFunc("GET /api/auth/verify-email", userHandler.VerifyEmailHandler)
	apiRouter.HandleFunc("GET /api/auth/google/login", userHandler.HandleGoogleLogin)
	apiRouter.HandleFunc("GET /api/auth/google/callback", userHandler.HandleGoogleCallback)

	// Auth actions router - POST routes generally need CSRF
	authActionRouter := http.NewServeMux()
	authActionRouter.HandleFunc("POST /login", userHandler.LoginUserHandler)
	authActionRouter.HandleFunc("POST /register", userHandler.RegisterUserHandler)
	authActionRouter.HandleFunc("POST /refresh", userHandler.RefreshTokenHandler)
	authActionRouter.HandleFunc("POST /logout", userHandler.AuthMiddleware(userHandler.LogoutUserHandler))
	authActionRouter.HandleFunc("POST /request-password-reset", userHandler.RequestPasswordResetHandler)
	authActionRouter.HandleFunc("POST /reset-password", userHandler.ResetPasswordHandler)

	csrfProtection := handlers.CSRFMiddleware(config.Cfg.CSRFAuthKey)
	apiRouter.Handle("/api/auth/", http.StripPrefix("/api/auth", csrfProtection(authActionRouter)))

	applyCsrfAndAuth := func(handler http.HandlerFunc) http.Handler {
		return csrfProtection(http.HandlerFunc(userHandler.AuthMiddleware(handler)))
	}

	apiRouter.Handle("GET /api/investors", applyCsrfAndAuth(investorHandler.HandleListInvestors))
	apiRouter.Handle("GET /api/investors/{id}", applyCsrfAndAuth(investorHandler.HandleGetInvestor))
	apiRouter.Handle("POST /api/investors", applyCsrfAndAuth(investorHandler.HandleCreateInvestor))
	apiRouter.Handle("PUT /api/investors/{id}", applyCsrfAndAuth(investorHandler.HandleUpdateInvestor))
	apiRouter.Handle("DELETE /api/investors/{id}", applyCsrfAndAuth(investorHandler.HandleDeleteInvestor))

	apiRouter.Handle("GET /api/funds", applyCsrfAndAuth(fundHandler.HandleListFunds))
	apiRouter.Handle("POST /api/funds", applyCsrfAndAuth(fundHandler.HandleCreateFund))
	apiRouter.Handle("DELETE /api/funds/{id}", applyCsrfAndAuth(fundHandler.HandleDeleteFund))

	apiRouter.Handle("GET /api/documents", applyCsrfAndAuth(documentHandler.HandleListDocuments))
	apiRouter.Handle("GET /api/documents/{id}", applyCsrfAndAuth(documentHandler.HandleGetDocument))
	apiRouter.Handle("POST /api/documents", applyCsrfAndAuth(documentHandler.HandleCreateDocument))
	apiRouter.Handle("PATCH /api/documents/{id}/status", applyCsrfAndAuth(documentHandler.HandleUpdateDocumentStatus))
	apiRouter.Handle("POST /api/documents/{id}/file", applyCsrfAndAuth(documentHandler.HandleUploadDocumentFile))
	apiRouter.Handle("DELETE /api/documents/{id}", applyCsrfAndAuth(documentHandler.HandleDeleteDocument))

	apiRouter.Handle("GET /api/clauses", applyCsrfAndAuth(clauseHandler.HandleListClauses))
	apiRouter.Handle("POST /api/clauses", applyCsrfAndAuth(clauseHandler.HandleCreateClause))
	apiRouter.Handle("DELETE /api/clauses/{id}", applyCsrfAndAuth(clauseHandler.HandleDeleteClause))

	apiRouter.Handle("GET /api/effective-terms", applyCsrfAndAuth(termsHandler.HandleGetEffectiveTerms))
	apiRouter.Handle("POST /api/fee-calculation", applyCsrfAndAuth(feeHandler.HandleCalculateFees))

	rootMux.Handle("/api/", apiRouter)

	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "Termtrack backend is running"})
		} else if !strings.HasPrefix(r.URL.Path, "/api/") {
			logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
			http.NotFound(w, r)
		}
	})

	logger.L.Info("Applying global middleware...")
	finalHandler := handlers.RequestIDMiddleware(enableCORS(rateLimitMiddleware(rootMux)))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	} else if err == http.ErrServerClosed {
		logger.L.Info("Server stopped gracefully.")
	}
}
