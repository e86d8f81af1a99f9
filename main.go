package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/duitdash/src/config"
	"github.com/username/duitdash/src/database"
	"github.com/username/duitdash/src/handlers"
	"github.com/username/duitdash/src/logger"
	"github.com/username/duitdash/src/processors"
	"github.com/username/duitdash/src/security"
	"github.com/username/duitdash/src/services"
	"github.com/username/duitdash/src/store"
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
			w.Header().Set("Access-Control-Expose-Headers", "X-CSRF-Token, ETag")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("DuitDash backend server starting...")

	if len(config.Cfg.JWTSecret) < 32 {
		logger.L.Error("JWT_SECRET configuration invalid. Must be at least 32 bytes.")
		os.Exit(1)
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	logger.L.Info("Database initialized successfully.")

	reportCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)
	notifier := store.NewNotifier()

	logger.L.Info("Initializing services and handlers...")
	authService := security.NewAuthService(config.Cfg.JWTSecret)
	emailService := services.NewEmailService()
	handlers.InitializeGoogleOAuthConfig()

	ledgerService := services.NewLedgerService(
		processors.NewBalanceProcessor(),
		processors.NewSummaryProcessor(),
		processors.NewHealthProcessor(),
		reportCache,
		notifier,
	)
	investmentService := services.NewInvestmentService(notifier)

	userHandler := handlers.NewUserHandler(authService, emailService)
	txHandler := handlers.NewTransactionHandler(ledgerService)
	accountHandler := handlers.NewAccountHandler(ledgerService)
	investmentHandler := handlers.NewInvestmentHandler(investmentService)
	streamHandler := handlers.NewStreamHandler(notifier)

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	// Public GET routes.
	apiRouter.HandleFunc("GET /api/auth/csrf", handlers.GetCSRFToken)
	apiRouter.HandleFunc("GET /api/auth/verify-email", userHandler.HandleVerifyEmail)
	apiRouter.HandleFunc("GET /api/auth/google/login", userHandler.HandleGoogleLogin)
	apiRouter.HandleFunc("GET /api/auth/google/callback", userHandler.HandleGoogleCallback)

	// Auth actions need CSRF but no bearer token (except logout).
	authActionRouter := http.NewServeMux()
	authActionRouter.HandleFunc("POST /login", userHandler.HandleLogin)
	authActionRouter.HandleFunc("POST /register", userHandler.HandleRegister)
	authActionRouter.HandleFunc("POST /refresh", userHandler.HandleRefreshToken)
	authActionRouter.Handle("POST /logout", userHandler.AuthMiddleware(http.HandlerFunc(userHandler.HandleLogout)))

	csrfProtection := handlers.CSRFMiddleware()
	apiRouter.Handle("/api/auth/", http.StripPrefix("/api/auth", csrfProtection(authActionRouter)))

	applyCsrfAndAuth := func(handler http.HandlerFunc) http.Handler {
		return csrfProtection(userHandler.AuthMiddleware(handler))
	}

	apiRouter.Handle("GET /api/user/me", applyCsrfAndAuth(userHandler.HandleGetMe))

	apiRouter.Handle("GET /api/transactions", applyCsrfAndAuth(txHandler.HandleListTransactions))
	apiRouter.Handle("POST /api/transactions", applyCsrfAndAuth(txHandler.HandleCreateTransaction))
	apiRouter.Handle("PUT /api/transactions/{id}", applyCsrfAndAuth(txHandler.HandleUpdateTransaction))
	apiRouter.Handle("DELETE /api/transactions/{id}", applyCsrfAndAuth(txHandler.HandleDeleteTransaction))
	apiRouter.Handle("GET /api/report", applyCsrfAndAuth(txHandler.HandleGetReport))

	apiRouter.Handle("GET /api/accounts/balances", applyCsrfAndAuth(accountHandler.HandleGetBalances))
	apiRouter.Handle("PUT /api/accounts/{accountId}/initial-balance", applyCsrfAndAuth(accountHandler.HandleSetInitialBalance))
	apiRouter.Handle("GET /api/settings/exchange-rate", applyCsrfAndAuth(accountHandler.HandleGetExchangeRate))
	apiRouter.Handle("PUT /api/settings/exchange-rate", applyCsrfAndAuth(accountHandler.HandleSetExchangeRate))

	apiRouter.Handle("GET /api/investments/holdings", applyCsrfAndAuth(investmentHandler.HandleListHoldings))
	apiRouter.Handle("POST /api/investments/holdings", applyCsrfAndAuth(investmentHandler.HandleBuy))
	apiRouter.Handle("POST /api/investments/holdings/{id}/sell", applyCsrfAndAuth(investmentHandler.HandleSell))
	apiRouter.Handle("PUT /api/investments/holdings/{id}", applyCsrfAndAuth(investmentHandler.HandleUpdateHolding))
	apiRouter.Handle("DELETE /api/investments/holdings/{id}", applyCsrfAndAuth(investmentHandler.HandleDeleteHolding))
	apiRouter.Handle("GET /api/investments/wallets", applyCsrfAndAuth(investmentHandler.HandleListWallets))
	apiRouter.Handle("POST /api/investments/wallets/deposit", applyCsrfAndAuth(investmentHandler.HandleDeposit))
	apiRouter.Handle("GET /api/investments/transactions", applyCsrfAndAuth(investmentHandler.HandleListTransactions))
	apiRouter.Handle("DELETE /api/investments/transactions/{id}", applyCsrfAndAuth(investmentHandler.HandleDeleteTransaction))
	apiRouter.Handle("DELETE /api/investments/transactions", applyCsrfAndAuth(investmentHandler.HandleClearHistory))

	apiRouter.Handle("GET /api/stream", userHandler.AuthMiddleware(http.HandlerFunc(streamHandler.HandleStream)))

	rootMux.Handle("/api/", apiRouter)

	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "DuitDash backend is running"})
			return
		}
		if !strings.HasPrefix(r.URL.Path, "/api/") {
			http.NotFound(w, r)
		}
	})

	finalHandler := enableCORS(rateLimitMiddleware(rootMux))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout: 15 * time.Second,
		// No write timeout: /api/stream holds its connection open.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	}
}
