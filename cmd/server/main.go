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

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ayush/company-research/backend/internal/config"
	"github.com/ayush/company-research/backend/internal/middleware"
	"github.com/ayush/company-research/backend/internal/plan"
	"github.com/ayush/company-research/backend/internal/research"
	"github.com/ayush/company-research/backend/internal/store"
	"github.com/ayush/company-research/backend/internal/upstream"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	// ── Research store ───────────────────────────────────────
	var researchStore research.ResearchStore
	if strings.HasPrefix(cfg.MongoURI, "memory://") {
		log.Printf("Using in-memory research store; records are lost on restart")
		researchStore = store.NewMemoryStore()
	} else {
		// Connect is lazy: a database that is down at boot only degrades writes.
		mongoClient, err := mongo.Connect(ctx, store.ClientOptions(cfg.MongoURI))
		if err != nil {
			log.Fatalf("mongo client: %v", err)
		}
		defer mongoClient.Disconnect(ctx)

		mongoStore := store.NewMongoStore(mongoClient, cfg.MongoDB, cfg.StorePingTimeout)
		idxCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := mongoStore.EnsureIndexes(idxCtx); err != nil {
			log.Printf("MongoDB unavailable at startup, research will not be saved until it is: %v", err)
		} else {
			log.Printf("Connected to MongoDB database %q", cfg.MongoDB)
		}
		cancel()
		researchStore = mongoStore
	}

	// ── Upstream clients ─────────────────────────────────────
	researchClient := upstream.NewResearchClient(cfg.ResearchAPIURL, cfg.ResearchTimeout)
	planClient := upstream.NewPlanClient(cfg.PlanAPIURL, cfg.PlanTimeout)

	// ── MinIO (optional plan archive) ────────────────────────
	var archive plan.Archive
	if cfg.MinioEndpoint != "" {
		planArchive, err := store.NewPlanArchive(ctx, store.ArchiveConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			Region:    cfg.MinioRegion,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			log.Printf("minio unavailable, plans will not be archived: %v", err)
		} else {
			archive = planArchive
		}
	}

	// ── Redis (optional rate limiting) ───────────────────────
	limit := noLimit
	if cfg.RedisAddr != "" {
		rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Printf("redis unavailable, rate limiting disabled: %v", err)
		} else {
			defer rdb.Close()
			counter := store.NewRedisCounter(rdb)
			limit = func(scope string) func(http.Handler) http.Handler {
				return middleware.RateLimit(counter, scope, cfg.RateLimitPerMinute, time.Minute)
			}
		}
	}

	// ── Handlers ─────────────────────────────────────────────
	researchHandler := research.NewHandler(researchStore, researchClient)
	planHandler := plan.NewHandler(planClient, researchClient, archive)

	// ── Router ───────────────────────────────────────────────
	r := newRouter(cfg.CORSOrigins, researchHandler, planHandler, limit)

	// ── Server ───────────────────────────────────────────────
	// Writes must outlast the slowest upstream call.
	writeTimeout := cfg.PlanTimeout
	if cfg.ResearchTimeout > writeTimeout {
		writeTimeout = cfg.ResearchTimeout
	}
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: writeTimeout + 10*time.Second,
	}

	go func() {
		log.Printf("Server running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	srv.Shutdown(shutCtx)
}
