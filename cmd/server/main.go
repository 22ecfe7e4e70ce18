package main

import (
	"coachdesk/internal/api"
	"coachdesk/internal/cache"
	"coachdesk/internal/config"
	"coachdesk/internal/messaging"
	"coachdesk/internal/repository/mongo"
	"coachdesk/internal/service"
	"coachdesk/internal/storage"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("FATAL: Could not build logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting coachdesk server")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Fatal("could not load config", zap.Error(err))
	}

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		logger.Fatal("could not connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := mongo.DisconnectDB(dbClient); err != nil {
			logger.Error("failed to disconnect MongoDB", zap.Error(err))
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	logger.Info("database connection established", zap.String("database", cfg.Database.Name))

	// --- Ensure Indexes ---
	go func() { // Run index creation concurrently/in background
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureBudgetIndexes(ctx, appDB.Collection("budgets"))
		mongo.EnsureAssignmentIndexes(ctx, appDB.Collection("budget_assignments"))
		for _, name := range []string{"workout_plans", "nutrition_plans", "steps_plans", "supplement_plans"} {
			mongo.EnsurePlanIndexes(ctx, appDB.Collection(name))
		}
		mongo.EnsureClientIndexes(ctx, appDB.Collection("customers"), appDB.Collection("leads"))
		mongo.EnsurePaymentIndexes(ctx, appDB.Collection("payments"))
		mongo.EnsureMeetingIndexes(ctx, appDB.Collection("meetings"))
		mongo.EnsureSnapshotIndexes(ctx, appDB.Collection("action_plan_snapshots"))
		logger.Info("index creation process completed")
	}()

	// --- Cache ---
	var appCache cache.Cache
	if cfg.Redis.Disabled {
		appCache = cache.NewMemoryCache()
		logger.Info("using in-process cache")
	} else {
		appCache, err = cache.NewRedisCache(cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			logger.Fatal("could not connect to Redis", zap.Error(err))
		}
		logger.Info("redis cache connected", zap.String("addr", cfg.Redis.Addr))
	}

	// --- Object Storage ---
	objectStore, err := storage.NewS3Store(cfg.S3, logger)
	if err != nil {
		logger.Fatal("failed to initialize object store", zap.Error(err))
	}

	// --- WhatsApp Gateway ---
	sender, err := messaging.NewGatewaySender(messaging.GatewayConfig{
		BaseURL: cfg.WhatsApp.BaseURL,
		Token:   cfg.WhatsApp.Token,
		Timeout: cfg.WhatsApp.Timeout,
	})
	if err != nil {
		logger.Fatal("failed to initialize WhatsApp gateway", zap.Error(err))
	}
	links := messaging.NewLinkBuilder(cfg.Links.BudgetBaseURL, cfg.Links.LoginURL)

	// --- Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	budgetRepo := mongo.NewMongoBudgetRepository(appDB)
	assignmentRepo := mongo.NewMongoAssignmentRepository(appDB)
	workoutPlanRepo := mongo.NewMongoWorkoutPlanRepository(appDB)
	nutritionPlanRepo := mongo.NewMongoNutritionPlanRepository(appDB)
	stepsPlanRepo := mongo.NewMongoStepsPlanRepository(appDB)
	supplementPlanRepo := mongo.NewMongoSupplementPlanRepository(appDB)
	customerRepo := mongo.NewMongoCustomerRepository(appDB)
	leadRepo := mongo.NewMongoLeadRepository(appDB)
	paymentRepo := mongo.NewMongoPaymentRepository(appDB)
	meetingRepo := mongo.NewMongoMeetingRepository(appDB)
	snapshotRepo := mongo.NewMongoSnapshotRepository(appDB)

	// --- Services ---
	authService := service.NewAuthService(userRepo, customerRepo, cfg.Links.LoginURL, cfg.JWT.Secret, cfg.JWT.Expiration)
	synchronizer := service.NewPlanSynchronizer(
		workoutPlanRepo, nutritionPlanRepo, stepsPlanRepo, supplementPlanRepo, appCache, logger)
	budgetService := service.NewBudgetService(
		budgetRepo, assignmentRepo,
		workoutPlanRepo, nutritionPlanRepo, stepsPlanRepo, supplementPlanRepo,
		synchronizer, appCache, logger)
	clientService := service.NewClientService(
		customerRepo, leadRepo, assignmentRepo,
		workoutPlanRepo, nutritionPlanRepo, stepsPlanRepo, supplementPlanRepo,
		appCache, logger)
	paymentService := service.NewPaymentService(paymentRepo)
	meetingService := service.NewMeetingService(meetingRepo)
	notificationService := service.NewNotificationService(sender, links, logger)
	snapshotService := service.NewSnapshotService(snapshotRepo, budgetRepo, objectStore, logger)

	// --- HTTP ---
	router := gin.Default() // Includes Logger and Recovery middleware
	api.SetupRoutes(router, cfg.JWT.Secret,
		authService, budgetService, clientService,
		paymentService, meetingService, notificationService, snapshotService)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	logger.Info("server starting", zap.String("address", cfg.Server.Address))

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen and serve error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exiting")
}
