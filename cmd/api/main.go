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

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"pawnshop-service/configs"
	"pawnshop-service/internal/handler"
	"pawnshop-service/internal/middleware"
	"pawnshop-service/internal/repository"
	"pawnshop-service/internal/service"
	"pawnshop-service/pkg/scheduler"
)

func main() {
	// Initialize logger
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)

	// Load configuration
	cfg, err := configs.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize repositories
	repos := repository.NewRepository(db)

	// Initialize services
	services := service.NewService(service.Dependencies{
		Repos:  repos,
		Logger: log,
		Config: cfg,
	})

	// Initialize handlers
	handlers := handler.NewHandler(handler.Dependencies{
		Services: services,
		Logger:   log,
		Config:   cfg,
	})

	// Initialize router
	router := mux.NewRouter()

	// Public routes
	router.HandleFunc("/register", handlers.User.Register).Methods(http.MethodPost)
	router.HandleFunc("/login", handlers.User.Login).Methods(http.MethodPost)

	// Protected routes with middleware
	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	api.Use(middleware.LogMiddleware(log))

	// User endpoints
	api.HandleFunc("/me", handlers.User.GetUser).Methods(http.MethodGet)
	api.HandleFunc("/me", handlers.User.UpdateUser).Methods(http.MethodPut)

	// Customer endpoints
	api.HandleFunc("/customers", handlers.Customer.Create).Methods(http.MethodPost)
	api.HandleFunc("/customers", handlers.Customer.GetAll).Methods(http.MethodGet)
	api.HandleFunc("/customers/{id}", handlers.Customer.GetByID).Methods(http.MethodGet)
	api.HandleFunc("/customers/{id}", handlers.Customer.Update).Methods(http.MethodPut)
	api.HandleFunc("/customers/{id}", handlers.Customer.Delete).Methods(http.MethodDelete)

	// Item endpoints
	api.HandleFunc("/items", handlers.Item.Create).Methods(http.MethodPost)
	api.HandleFunc("/items", handlers.Item.GetAll).Methods(http.MethodGet)
	api.HandleFunc("/items/{id}", handlers.Item.GetByID).Methods(http.MethodGet)
	api.HandleFunc("/items/{id}", handlers.Item.Update).Methods(http.MethodPut)
	api.HandleFunc("/items/{id}", handlers.Item.Delete).Methods(http.MethodDelete)

	// Loan endpoints
	api.HandleFunc("/loans", handlers.Loan.Create).Methods(http.MethodPost)
	api.HandleFunc("/loans", handlers.Loan.GetAll).Methods(http.MethodGet)
	api.HandleFunc("/loans/sweep", handlers.Loan.Sweep).Methods(http.MethodPost)
	api.HandleFunc("/loans/{id}", handlers.Loan.GetByID).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}", handlers.Loan.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/loans/{id}/schedule", handlers.Loan.GetSchedule).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}/summary", handlers.Loan.GetSummary).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}/payments", handlers.Loan.ApplyPayment).Methods(http.MethodPost)
	api.HandleFunc("/loans/{id}/payments", handlers.Loan.GetPayments).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}/renewals", handlers.Loan.Renew).Methods(http.MethodPost)
	api.HandleFunc("/loans/{id}/renewals", handlers.Loan.GetRenewals).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}/charges", handlers.Loan.GetCharges).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}/confiscate", handlers.Loan.Confiscate).Methods(http.MethodPost)

	// Payment endpoints
	api.HandleFunc("/payments", handlers.Payment.GetByDateRange).Methods(http.MethodGet)
	api.HandleFunc("/payments/{id}", handlers.Payment.GetByID).Methods(http.MethodGet)
	api.HandleFunc("/payments/{id}/cancel", handlers.Payment.Cancel).Methods(http.MethodPost)

	// Start the overdue sweep scheduler
	sweepScheduler := scheduler.NewScheduler(services.Loan, log)
	sweepScheduler.Start(time.Duration(cfg.Loan.SweepIntervalHours) * time.Hour)
	defer sweepScheduler.Stop()

	// Configure and start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Second * 15,
		WriteTimeout: time.Second * 15,
		IdleTimeout:  time.Second * 60,
	}

	// Start the server in a goroutine
	go func() {
		log.Infof("Starting server on port %d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Create a deadline context for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	// Shutdown the server
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Info("Server gracefully stopped")
}

func initDB(cfg *configs.Config) (*sql.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.DBName)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err = db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}
