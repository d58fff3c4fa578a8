// cmd/api/main.go
// Main entry point for the application
// This file bootstraps all components and starts the server

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

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	// Internal packages
	"github.com/coexist-app/coexist-backend/internal/auth"
	"github.com/coexist-app/coexist-backend/internal/common/database"
	"github.com/coexist-app/coexist-backend/internal/config"
	"github.com/coexist-app/coexist-backend/internal/matching"
	"github.com/coexist-app/coexist-backend/internal/messaging"
	"github.com/coexist-app/coexist-backend/internal/notification"
	"github.com/coexist-app/coexist-backend/internal/profile"
)

var startTime = time.Now()

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	log.Println("========================================")
	log.Println("🚀 Starting Coexist Roommate Matching API")
	log.Println("========================================")

	// 1. Load environment variables
	log.Println("📁 Step 1: Loading .env file...")
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  Warning: No .env file found (%v), using environment variables", err)
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// 2. Load configuration
	log.Println("📋 Step 2: Loading configuration...")
	cfg := config.Load()
	log.Println("✅ Configuration loaded")

	// 3. Validate configuration
	log.Println("✔️  Step 3: Validating configuration...")
	if err := cfg.Validate(); err != nil {
		log.Fatal("❌ Configuration validation failed:", err)
	}
	log.Println("✅ Configuration is valid")

	// 4. Connect to PostgreSQL
	log.Println("🗄️  Step 4: Connecting to PostgreSQL...")
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("❌ Failed to connect to PostgreSQL:", err)
	}
	defer db.Close()
	log.Println("✅ Connected to PostgreSQL successfully")

	// 5. Connect to Redis (optional)
	log.Println("📮 Step 5: Connecting to Redis...")
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️  Redis unavailable (%v), continuing without discover cache", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Println("✅ Connected to Redis successfully")
		}
	} else {
		log.Println("⚠️  Redis URL not configured, skipping Redis connection")
	}

	// 6. Run database migrations
	log.Println("🔨 Step 6: Running database migrations...")
	if err := runMigrations(db); err != nil {
		log.Fatal("❌ Failed to run migrations: ", err)
	}
	log.Println("✅ Database migrations completed")

	// 7. Initialize notification module
	log.Println("📧 Step 7: Initializing notifications...")
	var emailProvider notification.EmailProvider
	switch cfg.EmailProvider {
	case "sendgrid":
		emailProvider = notification.NewSendGridEmailProvider(cfg.SendGridAPIKey, cfg.EmailFrom)
		log.Println("   ✅ Using SendGrid for emails")
	default:
		emailProvider = notification.NewMockEmailProvider()
		log.Println("   ⚠️  Using mock email provider (development mode)")
	}
	var matchNotifier matching.MatchNotifier
	if cfg.EnableMatchEmails {
		matchNotifier = notification.NewService(emailProvider, cfg.BaseURL)
		log.Println("✅ Match emails enabled")
	} else {
		log.Println("⚠️  Match emails disabled")
	}

	// 8. Initialize matching module
	log.Println("💞 Step 8: Initializing matching module...")
	matchingRepo := matching.NewPostgresRepository(db)
	gate := matching.NewGate(cfg.FreeDirectMessageLimit)
	var scoreCache *matching.ScoreCache
	if redisClient != nil {
		scoreCache = matching.NewScoreCache(redisClient, cfg.DiscoverCacheTTL)
		log.Println("   ✅ Discover cache enabled")
	}
	matchingService := matching.NewService(matchingRepo, gate, scoreCache, matchNotifier)
	matchingHandler := matching.NewHandler(matchingService)
	log.Println("✅ Matching module initialized")

	// 9. Initialize profile module
	log.Println("👤 Step 9: Initializing profile module...")
	profileRepo := profile.NewPostgresRepository(db)
	profileService := profile.NewService(profileRepo)
	profileHandler := profile.NewHandler(profileService)
	log.Println("✅ Profile module initialized")

	// 10. Initialize messaging module
	log.Println("💬 Step 10: Initializing messaging module...")
	messagingRepo := messaging.NewPostgresRepository(db)
	messagingService := messaging.NewService(messagingRepo, matchingService)
	messagingHandler := messaging.NewHandler(messagingService)
	log.Println("✅ Messaging module initialized")

	// 11. Initialize auth
	log.Println("🔐 Step 11: Initializing authentication...")
	authService := auth.NewService(cfg.JWTSecret, cfg.AccessTokenExpiry)
	authMiddleware := auth.NewMiddleware(authService)
	log.Println("✅ Authentication initialized")

	// 12. Setup routes
	log.Println("🛣️  Step 12: Setting up routes...")
	router := mux.NewRouter()

	router.HandleFunc("/health", healthCheck).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	matching.RegisterRoutes(router, matchingHandler, authMiddleware.Authenticate)
	log.Println("   ✅ Matching routes registered")
	profile.RegisterRoutes(router, profileHandler, authMiddleware.Authenticate)
	log.Println("   ✅ Profile routes registered")
	messaging.RegisterRoutes(router, messagingHandler, authMiddleware.Authenticate)
	log.Println("   ✅ Messaging routes registered")

	router.Use(loggingMiddleware)
	router.Use(corsMiddleware)

	// 13. Create and start HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Println("========================================")
		log.Printf("🚀 Server starting on http://localhost%s", srv.Addr)
		log.Printf("🌍 Environment: %s", cfg.Environment)
		log.Println("========================================")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("❌ Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("⚠️  Shutdown signal received...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("❌ Server forced to shutdown:", err)
	}

	log.Println("✅ Server exited gracefully")
}

// healthCheck returns server health status
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","uptime":"%s"}`, time.Since(startTime).Round(time.Second))
}

// loggingMiddleware logs all requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		log.Printf("← %s %s [%d] %v", r.Method, r.RequestURI, wrapped.statusCode, time.Since(start))
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// runMigrations executes database migrations
func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
            user_id VARCHAR(128) PRIMARY KEY,
            display_name VARCHAR(100) NOT NULL DEFAULT '',
            email VARCHAR(255) NOT NULL DEFAULT '',
            gender VARCHAR(30),
            gender_preference TEXT[] NOT NULL DEFAULT '{}',
            neighborhoods TEXT[] NOT NULL DEFAULT '{}',
            has_preferences BOOLEAN NOT NULL DEFAULT FALSE,
            cleanliness INTEGER,
            noise_level INTEGER,
            smoking INTEGER,
            pets INTEGER,
            guests INTEGER,
            sleep_schedule INTEGER,
            budget INTEGER,
            lease_length INTEGER,
            open_to_non_matches BOOLEAN NOT NULL DEFAULT FALSE,
            subscription_tier VARCHAR(20) NOT NULL DEFAULT 'free',
            direct_messages_sent INTEGER NOT NULL DEFAULT 0,
            profile_complete BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        )`,

		`CREATE TABLE IF NOT EXISTS likes (
            liker_id VARCHAR(128) NOT NULL,
            liked_id VARCHAR(128) NOT NULL,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            PRIMARY KEY (liker_id, liked_id)
        )`,

		`CREATE TABLE IF NOT EXISTS passes (
            passer_id VARCHAR(128) NOT NULL,
            passed_id VARCHAR(128) NOT NULL,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            PRIMARY KEY (passer_id, passed_id)
        )`,

		`CREATE TABLE IF NOT EXISTS matches (
            pair_key VARCHAR(260) PRIMARY KEY,
            user1_id VARCHAR(128) NOT NULL,
            user2_id VARCHAR(128) NOT NULL,
            matched_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        )`,

		`CREATE TABLE IF NOT EXISTS messages (
            id UUID PRIMARY KEY,
            room_id VARCHAR(260) NOT NULL,
            sender_id VARCHAR(128) NOT NULL,
            recipient_id VARCHAR(128) NOT NULL,
            body TEXT NOT NULL,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        )`,

		// Indexes
		`CREATE INDEX IF NOT EXISTS idx_likes_liked_id ON likes(liked_id)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_user1 ON matches(user1_id)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_user2 ON matches(user2_id)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_room ON messages(room_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_sender ON messages(sender_id)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_recipient ON messages(recipient_id)`,
	}

	for i, migration := range migrations {
		log.Printf("   - Running migration %d/%d...", i+1, len(migrations))
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}
