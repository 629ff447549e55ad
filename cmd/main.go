package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"autofill-platform/internal/ai"
	"autofill-platform/internal/config"
	"autofill-platform/internal/index"
	"autofill-platform/internal/logger"
	"autofill-platform/internal/telemetry"
	"autofill-platform/middleware"
	"autofill-platform/routes"
	"autofill-platform/services"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	// Initialize tracing
	shutdownTracer, err := telemetry.InitTracer("autofill-platform")
	if err != nil {
		log.Printf("Failed to initialize tracer: %v", err)
	} else {
		defer shutdownTracer()
	}

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.Printf("Failed to initialize metrics: %v", err)
	}

	// Connect to MongoDB
	mongoClient, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		mongoClient.Disconnect(ctx)
	}()
	db := mongoClient.Database(cfg.DBName)

	// Connect to Redis
	rdb, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer rdb.Close()

	// Asynq client for enqueueing ingestion tasks
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer asynqClient.Close()

	// AI clients
	ctx := context.Background()
	aiClient, err := ai.NewClient(ctx, cfg.GeminiAPIKey, cfg.GenerationModel, metrics)
	if err != nil {
		log.Fatal("Failed to initialize AI client:", err)
	}
	defer aiClient.Close()

	embedder, err := ai.NewGeminiEmbedder(ctx, cfg.GeminiAPIKey, cfg.EmbeddingsModel, cfg.VectorDimensions)
	if err != nil {
		log.Fatal("Failed to initialize embedder:", err)
	}
	defer embedder.Close()

	// Vector index
	store := index.NewMongoStore(db, cfg.VectorDimensions)
	gateway := index.NewGateway(store, cfg.IndexRetryMax, metrics)

	// Services
	ocrClient := services.NewOCRClient(cfg)
	extractor := services.NewExtractor(cfg, ocrClient)
	ingest := services.NewIngestService(cfg, db, extractor, embedder, gateway, metrics)
	retriever := services.NewRetriever(embedder, gateway)
	matcher := services.NewFieldMatcher(cfg, retriever, aiClient, metrics)
	filler := services.NewFormFiller(matcher)
	webForms := services.NewWebFormService(matcher)
	chat := services.NewChatService(retriever, aiClient, cfg.RetrievalTopK, cfg.MinSimilarity)

	// Background reaper for stuck documents
	reaper := services.NewReaperService(db, time.Duration(cfg.StuckProcessingMins)*time.Minute)
	go reaper.Start()
	defer reaper.Stop()

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddlewareWithOrigins(cfg.CORSOrigins))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.TracingMiddleware())
	router.Use(middleware.EnrichTrace())
	if metrics != nil {
		router.Use(middleware.MetricsMiddleware(metrics))
	}
	router.Use(middleware.RateLimitMiddleware(rdb, cfg))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})

	// Setup routes
	routes.SetupDocumentRoutes(router, cfg, db, asynqClient, ingest)
	routes.SetupFieldRoutes(router, matcher)
	routes.SetupFormRoutes(router, filler, webForms)
	routes.SetupChatRoutes(router, chat)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
