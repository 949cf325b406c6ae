package main

import (
	"context"
	"log"
	"time"

	"practice-service/internal/assessment"
	"practice-service/internal/config"
	"practice-service/internal/db"
	"practice-service/internal/event"
	"practice-service/internal/handlers"
	"practice-service/internal/middleware"
	"practice-service/internal/repository"
	"practice-service/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	config.Load()
	cfg := config.AppConfig

	gin.SetMode(cfg.GinMode)

	db.InitMongo(cfg.MongoURI)
	defer db.Close()
	database := db.Client.Database(cfg.MongoDatabase)

	// Redis backs the scoring-route rate limiter; optional.
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Printf("Redis not reachable, rate limiting disabled: %v", err)
			redisClient = nil
		}
	} else {
		log.Println("Redis not configured, rate limiting disabled")
	}

	// RabbitMQ event publisher; optional.
	var publisher *event.EventPublisher
	if cfg.RabbitMQURI != "" {
		var err error
		publisher, err = event.NewEventPublisher(cfg.RabbitMQURI, cfg.EventExchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
	} else {
		log.Println("RabbitMQ not configured, events will not be published")
	}

	// Repositories
	questionRepo := repository.NewQuestionRepository(database)
	subscriptionRepo := repository.NewSubscriptionRepository(database)
	practiceRepo := repository.NewPracticeRepository(database)
	resultRepo := repository.NewResultRepository(database)
	mockTestRepo := repository.NewMockTestRepository(database)

	indexCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for name, fn := range map[string]func(context.Context) error{
		"questions":     questionRepo.CreateIndexes,
		"subscriptions": subscriptionRepo.CreateIndexes,
		"practiced":     practiceRepo.CreateIndexes,
		"results":       resultRepo.CreateIndexes,
	} {
		if err := fn(indexCtx); err != nil {
			log.Fatalf("Failed to create %s indexes: %v", name, err)
		}
	}

	// External assessors
	speechClient := assessment.NewSpeechClient(cfg.SpeechBaseURL, cfg.SpeechAPIKey, cfg.SpeechTimeout)
	rubricClient := assessment.NewRubricClient(cfg.RubricBaseURL, cfg.RubricAPIKey, cfg.RubricModel, cfg.RubricTimeout)
	adapter := assessment.NewAdapter(speechClient, rubricClient)

	// Services
	var events service.Publisher
	if publisher != nil {
		events = publisher
	}
	entitlementService := service.NewEntitlementService(subscriptionRepo, events)
	scoringService := service.NewScoringService(questionRepo, practiceRepo, entitlementService, adapter, events)
	resultService := service.NewResultService(resultRepo, mockTestRepo, questionRepo, practiceRepo, scoringService, entitlementService, events)
	questionService := service.NewQuestionService(questionRepo, practiceRepo)
	practiceService := service.NewPracticeService(practiceRepo)
	mockTestService := service.NewMockTestService(mockTestRepo, questionRepo)

	// Payment events top up subscriptions.
	consumer, err := event.NewPaymentConsumer(cfg.RabbitMQURI, cfg.EventExchange, cfg.PaymentQueue, entitlementService)
	if err != nil {
		log.Fatalf("Failed to set up payment consumer: %v", err)
	}
	if err := consumer.Start(); err != nil {
		log.Fatalf("Failed to start payment consumer: %v", err)
	}
	defer consumer.Close()

	// Handlers
	questionHandler := handlers.NewQuestionHandler(questionService)
	resultHandler := handlers.NewResultHandler(scoringService)
	mockTestHandler := handlers.NewMockTestHandler(mockTestService, resultService)
	subscriptionHandler := handlers.NewSubscriptionHandler(entitlementService)
	practiceHandler := handlers.NewPracticeHandler(practiceService)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Public routes: browsing the question bank.
	publicQuestion := r.Group("/public/practice/question")
	{
		publicQuestion.GET("/subtype/:subtype", questionHandler.ListQuestions)
		publicQuestion.GET("/:id", questionHandler.GetQuestion)
	}

	publicMock := r.Group("/public/practice/mock-test")
	{
		publicMock.GET("/", mockTestHandler.ListMockTests)
		publicMock.GET("/:id", mockTestHandler.GetMockTest)
	}

	// Protected routes: everything tied to a user.
	protected := r.Group("/protected/practice")
	protected.Use(middleware.Auth())

	question := protected.Group("/question")
	{
		question.POST("/", questionHandler.CreateQuestion)
		question.PUT("/:id", questionHandler.UpdateQuestion)
		question.DELETE("/:id", questionHandler.DeleteQuestion)
		question.GET("/:type/:subtype/unpracticed", questionHandler.ListUnpracticed)
	}

	// Scoring routes are rate limited; they consume quota and call paid
	// external APIs.
	result := protected.Group("/result")
	result.Use(middleware.RateLimit(redisClient, cfg.RateLimitPerMinute))
	{
		result.POST("/", resultHandler.SubmitResult)
	}

	mock := protected.Group("/mock-test")
	{
		mock.POST("/", mockTestHandler.CreateMockTest)
		mock.GET("/results", mockTestHandler.GetResultHistory)
		mock.DELETE("/:id", mockTestHandler.DeleteMockTest)
		mock.POST("/:id/start", mockTestHandler.StartMockTest)
		mock.POST("/:id/attempt", middleware.RateLimit(redisClient, cfg.RateLimitPerMinute), mockTestHandler.SubmitAttempt)
		mock.GET("/:id/result", mockTestHandler.GetFinalResult)
	}

	subscription := protected.Group("/subscription")
	{
		subscription.GET("/", subscriptionHandler.GetSubscription)
		subscription.POST("/plan", subscriptionHandler.ApplyPlan)
		subscription.DELETE("/", subscriptionHandler.CancelSubscription)
	}

	practice := protected.Group("/progress")
	{
		practice.GET("/", practiceHandler.GetProgress)
		practice.GET("/completed", practiceHandler.GetCompletedMockTests)
	}

	log.Printf("practice-service listening on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
