package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/joho/godotenv"
	"google.golang.org/genai"

	"github.com/pitchcoach/backend/internal/config"
	"github.com/pitchcoach/backend/internal/handler"
	"github.com/pitchcoach/backend/internal/model/persona"
	"github.com/pitchcoach/backend/internal/service/eval"
	"github.com/pitchcoach/backend/internal/service/relay"
	"github.com/pitchcoach/backend/internal/service/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	personaStore := persona.NewMemoryStore(persona.Seed())

	// Storage collaborator (optional: no bucket, no archive).
	var store *storage.GCSStore
	var pool *storage.Pool
	if cfg.Storage.Enabled() {
		gcsClient, err := gcs.NewClient(ctx)
		if err != nil {
			log.Printf("warning: failed to initialize storage client: %v", err)
			log.Println("continuing without artifact archiving")
		} else {
			store = storage.NewGCSStore(gcsClient, cfg.Storage.Bucket)
			log.Printf("Storage service initialized for bucket %s", cfg.Storage.Bucket)
		}
	} else {
		log.Println("GCS_BUCKET_NAME not set, artifact archiving disabled")
	}
	pool = storage.NewPool(cfg.Storage.Workers, cfg.Storage.QueueSize)
	defer pool.Close()

	// Gemini collaborators: relay to the Live API plus post-session
	// evaluation. Both share one credential.
	var relayMgr *relay.Manager
	var evalSvc *eval.Service
	if cfg.Gemini.Enabled() {
		relayMgr = relay.NewManager(relay.Config{
			Endpoint:     cfg.Gemini.LiveURL(),
			Model:        cfg.Gemini.LiveModel,
			Voice:        cfg.Relay.Voice,
			PingInterval: cfg.Relay.PingInterval,
			ReadTimeout:  cfg.Relay.ReadTimeout,
		}, relay.NewWSDialer(30*time.Second))
		log.Println("Relay service initialized successfully")

		genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.Gemini.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			log.Printf("warning: failed to initialize Gemini client: %v", err)
			log.Println("continuing without evaluation functionality")
		} else {
			var objectStore storage.ObjectStore
			if store != nil {
				objectStore = store
			}
			generator := eval.NewGeminiGenerator(genaiClient, cfg.Gemini.EvalModel)
			evalSvc = eval.New(generator, objectStore, pool, cfg.Gemini.EvalTimeout)
			log.Println("Evaluation service initialized successfully")
		}
	} else {
		log.Println("GEMINI_API_KEY not set, relay and evaluation disabled")
	}

	router := handler.NewRouter(personaStore, relayMgr, evalSvc, store, cfg.Relay.DefaultPersona)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("PitchCoach backend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
