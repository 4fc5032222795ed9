// Package main is the entry point for the stocktake API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"stocktake/internal/core/id"
	"stocktake/internal/domain/auth"
	"stocktake/internal/domain/counting"
	v1 "stocktake/internal/infrastructure/http/v1"
	"stocktake/internal/infrastructure/storage/postgres"
	"stocktake/pkg/logger"
)

func main() {
	// .env is optional: production deployments use real environment variables.
	_ = godotenv.Load()

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting stocktake server")

	// --- Database connection ---
	poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	if maxConns := getEnvInt("DB_MAX_CONNS", 0); maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatalw("failed to ensure schema", "error", err)
	}

	// --- Storage ---
	txManager := postgres.NewTxManager(pool)
	itemRepo := postgres.NewItemRepo(txManager)
	sessionRepo := postgres.NewSessionRepo(txManager)

	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}

	// --- Counting Service ---
	countingService := counting.NewService(itemRepo, sessionRepo, txManager, auditService)

	// --- JWT Service ---
	jwtSecret := mustEnv("JWT_SECRET")
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(jwtSecret))

	// --- Auth Service ---
	operators, err := loadOperators()
	if err != nil {
		log.Fatalw("failed to load operator accounts", "error", err)
	}
	authService := auth.NewService(operators, jwtService)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:            pool,
		Logger:          log,
		JWTValidator:    jwtService,
		AuthService:     authService,
		CountingService: countingService,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // import/export uploads take a while
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

// loadOperators builds the fixed account set from the environment. Password
// hashes are preferred; plaintext variants are accepted for dev setups and
// hashed at boot.
func loadOperators() ([]auth.Operator, error) {
	accounts := []struct {
		username string
		hashKey  string
		plainKey string
		isAdmin  bool
	}{
		{getEnv("ADMIN_USERNAME", "admin"), "ADMIN_PASSWORD_HASH", "ADMIN_PASSWORD", true},
		{getEnv("OPERATOR_USERNAME", "operator"), "OPERATOR_PASSWORD_HASH", "OPERATOR_PASSWORD", false},
	}

	operators := make([]auth.Operator, 0, len(accounts))
	for _, a := range accounts {
		hash := os.Getenv(a.hashKey)
		if hash == "" {
			plain := os.Getenv(a.plainKey)
			if plain == "" {
				return nil, fmt.Errorf("neither %s nor %s is set", a.hashKey, a.plainKey)
			}
			var err error
			if hash, err = auth.HashPassword(plain); err != nil {
				return nil, fmt.Errorf("hash %s: %w", a.plainKey, err)
			}
		}
		operators = append(operators, auth.Operator{
			ID:           id.New().String(),
			Username:     a.username,
			PasswordHash: hash,
			IsAdmin:      a.isAdmin,
		})
	}
	return operators, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
