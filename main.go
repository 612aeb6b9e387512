package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"event-ticketing/internal/accounts"
	accounts_db "event-ticketing/internal/accounts/db"
	accounts_api "event-ticketing/internal/accounts/api"
	"event-ticketing/internal/auth"
	"event-ticketing/internal/booking"
	booking_db "event-ticketing/internal/booking/db"
	booking_api "event-ticketing/internal/booking/api"
	"event-ticketing/internal/booking/qr"
	"event-ticketing/internal/config"
	"event-ticketing/internal/database/migrations"
	"event-ticketing/internal/events"
	events_db "event-ticketing/internal/events/db"
	events_api "event-ticketing/internal/events/api"
	"event-ticketing/internal/kafka"
	"event-ticketing/internal/logger"
	"event-ticketing/internal/models"
	"event-ticketing/internal/otp"
	otp_api "event-ticketing/internal/otp/api"
	"event-ticketing/internal/profile"
	profile_db "event-ticketing/internal/profile/db"
	profile_api "event-ticketing/internal/profile/api"
	"event-ticketing/internal/sms"
	"event-ticketing/internal/upload"
)

func connectPostgres(cfg config.DatabaseConfig, log *logger.Logger) *bun.DB {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.DSN)
		if err == nil {
			err = sqldb.Ping()
			if err == nil {
				break
			}
		}
		log.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.MaxLifetime)

	log.Info("DATABASE", "PostgreSQL connection successful")
	return bun.NewDB(sqldb, pgdialect.New())
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting Event Ticketing service")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}
	cfg := config.Load()

	ctx := context.Background()

	bunDB := connectPostgres(cfg.Database, log)
	defer bunDB.Close()

	if cfg.Migrations.Auto {
		runner := migrations.NewRunner(bunDB, migrations.Options{
			MigrationsDir: cfg.Migrations.Dir,
			AutoMigrate:   true,
		}, log)
		if err := runner.Run(); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
		}
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	log.Info("DATABASE", fmt.Sprintf("Redis connection successful to %s", cfg.Redis.Addr))

	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		topics := kafka.Topics{
			BookingCreated:   cfg.Kafka.Topics.BookingCreated,
			BookingCancelled: cfg.Kafka.Topics.BookingCancelled,
			UserRegistered:   cfg.Kafka.Topics.UserRegistered,
		}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, []string{
			topics.BookingCreated, topics.BookingCancelled, topics.UserRegistered,
		}); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		}
		producer = kafka.NewProducer(cfg.Kafka.Brokers, topics)
		defer producer.Close()
		log.Info("KAFKA", "Kafka producer initialized")
	} else {
		log.Info("KAFKA", "Kafka publishing disabled")
	}

	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	uploads := upload.NewStore(cfg.Upload.Dir, cfg.Upload.MaxFileSize)

	smsClient := sms.NewClient(cfg.SMS.Endpoint, cfg.SMS.Timeout)
	sender := sms.NewSender(smsClient, cfg.SMS.Username, cfg.SMS.Password, cfg.SMS.Alias, log)

	// Interface-typed nils stay nil-comparable inside the services.
	var accountsPub accounts.Publisher
	var bookingPub booking.Publisher
	if producer != nil {
		accountsPub = producer
		bookingPub = producer
	}

	accountsService := accounts.NewService(&accounts_db.DB{Bun: bunDB}, cfg.Auth.BcryptCost, sender, accountsPub, log)
	profileService := profile.NewService(&profile_db.DB{Bun: bunDB}, &accounts_db.DB{Bun: bunDB}, uploads, cfg.Upload.PublicBaseURL, log)
	eventsService := events.NewService(&events_db.DB{Bun: bunDB}, uploads, cfg.Upload.PublicBaseURL, log)
	bookingService := booking.NewService(&booking_db.DB{Bun: bunDB}, qr.NewGenerator(), bookingPub, log)
	otpService := otp.NewService(otp.NewRedisStore(redisClient), sender, cfg.Redis.OTPTTL, log)

	accountsHandler := accounts_api.NewHandler(accountsService, issuer, cfg.Auth.SecureCookies, log)
	profileHandler := profile_api.NewHandler(profileService, uploads, log)
	eventsHandler := events_api.NewHandler(eventsService, uploads, log)
	bookingHandler := booking_api.NewHandler(bookingService, log)
	otpHandler := otp_api.NewHandler(otpService, log)

	requireAdmin := auth.RequireRole(issuer, models.RoleAdmin)
	requireUser := auth.RequireRole(issuer, models.RoleUser)

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.Origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/admin", func(r chi.Router) {
			r.Post("/register", accountsHandler.RegisterAdmin)
			r.Post("/login", accountsHandler.LoginAdmin)
			r.Post("/logout", accountsHandler.Logout)

			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				r.Get("/dashboard", accountsHandler.Dashboard)
				r.Put("/change-password", accountsHandler.ChangePassword)
				r.Route("/users", func(r chi.Router) {
					r.Get("/", accountsHandler.ListUsers)
					r.Post("/", accountsHandler.AddUser)
					r.Put("/{id}", accountsHandler.UpdateUser)
					r.Delete("/{id}", accountsHandler.DeleteUser)
				})
			})
		})

		r.Route("/user", func(r chi.Router) {
			r.Post("/register", accountsHandler.RegisterUser)
			r.Post("/login", accountsHandler.LoginUser)
			r.Post("/logout", accountsHandler.Logout)

			r.Group(func(r chi.Router) {
				r.Use(requireUser)
				r.Get("/dashboard", accountsHandler.Dashboard)
				r.Put("/change-password", accountsHandler.ChangePassword)
			})
		})

		r.Route("/admin-details", func(r chi.Router) {
			r.Use(requireAdmin)
			r.Get("/", profileHandler.Get)
			r.Put("/update", profileHandler.Update)
			r.Delete("/delete", profileHandler.Delete)
		})

		r.Route("/user-details", func(r chi.Router) {
			r.Use(requireUser)
			r.Get("/", profileHandler.Get)
			r.Put("/update", profileHandler.Update)
			r.Delete("/delete", profileHandler.Delete)
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", eventsHandler.List)

			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				r.Post("/", eventsHandler.Create)
				r.Put("/{id}", eventsHandler.Update)
				r.Delete("/{id}", eventsHandler.Delete)
			})
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(requireUser)
				r.Post("/ticket", bookingHandler.Book)
				r.Get("/my", bookingHandler.ListMine)
				r.Delete("/{id}", bookingHandler.Cancel)
			})

			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				r.Get("/all", bookingHandler.ListAll)
				r.Get("/stats", bookingHandler.Stats)
			})
		})

		r.Post("/send-otp", otpHandler.Send)
		r.Post("/verify-otp", otpHandler.Verify)
	})

	fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.Upload.Dir)))
	r.Get("/uploads/*", func(w http.ResponseWriter, req *http.Request) {
		fileServer.ServeHTTP(w, req)
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Event Ticketing service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server shutdown failed: %v", err))
	}
	log.Info("APP", "Shutdown complete")
}
