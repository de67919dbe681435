package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"habitQuestAPI/handlers"
	"habitQuestAPI/internal/notification"
	"habitQuestAPI/middleware"
	"habitQuestAPI/services"

	_ "net/http/pprof"
)

var (
	dbPool              *pgxpool.Pool
	redisClient         *redis.Client
	accountService      *services.AccountService
	habitService        *services.HabitService
	subscriptionService *services.SubscriptionService
	ledgerService       *services.LedgerService
	notificationService *services.NotificationService
	leaderboardService  *services.LeaderboardService
	progressionService  *services.ProgressionService
	fcmService          *notification.FCMService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	clerkSecretKey := os.Getenv("CLERK_SECRET_KEY")
	if clerkSecretKey == "" {
		log.Fatal("CLERK_SECRET_KEY environment variable is not set")
	}
	clerk.SetKey(clerkSecretKey)
	log.Println("Clerk initialized successfully")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("Successfully connected to Postgres")

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}
	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatal("Failed to parse REDIS_URL:", err)
	}
	redisClient = redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis unavailable at startup, leaderboard requests will fail until it returns: %v", err)
	} else {
		log.Println("Successfully connected to Redis")
	}

	accountService = services.NewAccountService(dbPool)
	habitService = services.NewHabitService(dbPool)
	subscriptionService = services.NewSubscriptionService(dbPool)
	ledgerService = services.NewLedgerService(dbPool)
	notificationService = services.NewNotificationService(dbPool)
	leaderboardService = services.NewLeaderboardService(dbPool, redisClient)

	progressionService = services.NewProgressionService(subscriptionService, accountService, ledgerService, nil)
	progressionService.SetLeaderboard(leaderboardService)
	progressionService.SetNotifier(notificationService)

	fcmService, err = notification.NewFCMService("./serviceAccountKey.json")
	if err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
	} else {
		notificationService.SetPushProvider(fcmService)
		log.Println("FCM Push Provider initialized successfully")
	}

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
		redisClient.Close()
	}()

	accountHandler := handlers.NewAccountHandler(accountService, leaderboardService)
	habitHandler := handlers.NewHabitHandler(habitService)
	userHabitHandler := handlers.NewUserHabitHandler(accountService, habitService, subscriptionService, progressionService)
	notificationHandler := handlers.NewNotificationHandler(accountService, notificationService)
	webhookHandler := handlers.NewWebhookHandler(accountService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "habitQuest-api"}`))
	}).Methods("GET")

	r.HandleFunc("/webhooks/clerk", webhookHandler.HandleClerkWebhook).Methods("POST")

	api := r.PathPrefix("/api/v1").Subrouter()

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/habits", habitHandler.GetAllHabits).Methods("GET")
	protected.HandleFunc("/habits/random", habitHandler.GetRandomHabit).Methods("GET")
	protected.HandleFunc("/habits/category/{category}", habitHandler.GetHabitsByCategory).Methods("GET")
	protected.HandleFunc("/habits/difficulty/{difficulty}", habitHandler.GetHabitsByDifficulty).Methods("GET")
	protected.HandleFunc("/habits/{id}", habitHandler.GetHabitByID).Methods("GET")

	protected.HandleFunc("/user", accountHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/user/update-profile", accountHandler.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/user/delete-account", accountHandler.DeleteAccount).Methods("DELETE")
	protected.HandleFunc("/user/leaderboard", accountHandler.GetLeaderboard).Methods("GET")

	protected.HandleFunc("/user/habits", userHabitHandler.GetUserHabits).Methods("GET")
	protected.HandleFunc("/user/habits/{habitId}/accept", userHabitHandler.AcceptHabit).Methods("POST")
	protected.HandleFunc("/user/habits/{habitId}", userHabitHandler.RemoveHabit).Methods("DELETE")
	protected.HandleFunc("/user/habits/{habitId}/complete", userHabitHandler.CompleteHabit).Methods("POST")
	protected.HandleFunc("/user/completions/weekly", userHabitHandler.GetWeeklyCompletions).Methods("GET")

	protected.HandleFunc("/notifications", notificationHandler.GetNotifications).Methods("GET")
	protected.HandleFunc("/notifications/unread-count", notificationHandler.GetUnreadCount).Methods("GET")
	protected.HandleFunc("/notifications/{id}/read", notificationHandler.MarkAsRead).Methods("PUT")
	protected.HandleFunc("/notifications/register-device", notificationHandler.RegisterDevice).Methods("POST")

	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
