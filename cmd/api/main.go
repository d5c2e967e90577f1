package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	adapterHTTP "github.com/quizlight/recall-sync-engine/internal/adapters/handler/http"
	"github.com/quizlight/recall-sync-engine/internal/adapters/repository"
	"github.com/quizlight/recall-sync-engine/internal/adapters/session"
	"github.com/quizlight/recall-sync-engine/internal/adapters/transport"
	"github.com/quizlight/recall-sync-engine/internal/core/queue"
	"github.com/quizlight/recall-sync-engine/internal/core/scheduler"
	"github.com/quizlight/recall-sync-engine/internal/core/services"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	startTime := time.Now()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	dbPath := envOr("DB_PATH", "recall.db")
	serverPort := envOr("PORT", "8080")
	remoteURL := envOr("SYNC_REMOTE_URL", "http://localhost:9090")

	log.Printf("Opening local database at %s...", dbPath)

	db, err := repository.OpenSQLite(dbPath)
	if err != nil {
		log.Fatalf("Critical: Failed to open database: %v", err)
	}
	defer db.Close()

	log.Println("Database ready.")

	deckRepo := repository.NewSQLiteDeckRepository(db)
	cardRepo := repository.NewSQLiteCardRepository(db)
	eventRepo := repository.NewSQLiteReviewEventRepository(db)
	oplogRepo := repository.NewSQLiteSyncOperationRepository(db)

	jwtSession := session.NewJWTSession(nil)
	httpTransport := transport.NewHTTPTransport(remoteURL, nil, jwtSession)

	syncQueue := queue.New(oplogRepo, httpTransport, jwtSession, nil, queue.Config{}, nil)
	if err := syncQueue.Load(context.Background()); err != nil {
		log.Fatalf("Critical: Failed to restore sync queue: %v", err)
	}

	drainCtx, stopDrain := context.WithCancel(context.Background())
	defer stopDrain()
	syncQueue.Start(drainCtx)

	engine := scheduler.NewEngine(scheduler.Config{})
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	suppressionService := services.NewSuppressionService(deckRepo, nil)
	sessionService := services.NewSessionService(cardRepo, suppressionService, nil, rng)
	reviewService := services.NewReviewService(cardRepo, eventRepo, engine, syncQueue, nil)
	deckService := services.NewDeckService(deckRepo, cardRepo, eventRepo, syncQueue, nil)
	cardService := services.NewCardService(cardRepo, deckRepo, eventRepo, syncQueue, nil)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		DeckHandler:  adapterHTTP.NewDeckHandler(deckService, suppressionService),
		CardHandler:  adapterHTTP.NewCardHandler(cardService, reviewService),
		StudyHandler: adapterHTTP.NewStudyHandler(sessionService, reviewService),
		SyncHandler:  adapterHTTP.NewSyncHandler(syncQueue, jwtSession),
		DB:           db,
		StartTime:    startTime,
	})

	srv := &http.Server{
		Addr:         ":" + serverPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Recall Sync Engine running on http://localhost:%s", serverPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Critical server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Stop signal received. Shutting down...")

	stopDrain()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Forced shutdown error:", err)
	}

	log.Println("Server stopped gracefully.")
}
