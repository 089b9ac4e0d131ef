package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"learnmyway/internal/auth"
	"learnmyway/internal/broker"
	"learnmyway/internal/cache"
	"learnmyway/internal/config"
	"learnmyway/internal/repository"
	"learnmyway/internal/service"
	"learnmyway/internal/transport/rest"
	"learnmyway/internal/transport/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	cfg := config.Load()
	ctx := context.Background()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	redisAddr := strings.TrimPrefix(cfg.RedisAddr, "redis://")
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize repositories
	userRepo := repository.NewUserRepo(db)
	sessionRepo := repository.NewSessionRepo(db)
	materialRepo := repository.NewMaterialRepo(db)

	// Initialize caches
	sessionCache := cache.NewSessionCache(rdb)

	// Identity verification and the live-session broker
	verifier := auth.NewTokenVerifier(cfg.JWTSecret, userRepo)
	liveBroker := broker.New(verifier, cfg.AuthTimeout)
	log.Println("Live-session broker started")

	// Initialize services
	userSvc := service.NewUserService(userRepo, verifier)
	sessionSvc := service.NewSessionService(sessionRepo, sessionCache, liveBroker, cfg.AppBaseURL)
	materialSvc := service.NewMaterialService(materialRepo, liveBroker)

	// Create router with container
	container := &rest.Container{
		Verifier:        verifier,
		UserService:     userSvc,
		SessionService:  sessionSvc,
		MaterialService: materialSvc,
		WSHandler:       ws.NewHandler(liveBroker),
	}

	router := rest.NewRouter(container)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
