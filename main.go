package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/soundrift/soundrift/handlers"
	"github.com/soundrift/soundrift/internal/config"
	"github.com/soundrift/soundrift/internal/db"
	"github.com/soundrift/soundrift/internal/identity"
	"github.com/soundrift/soundrift/internal/playlists"
	"github.com/soundrift/soundrift/internal/realtime"
	"github.com/soundrift/soundrift/internal/storage"
	"github.com/soundrift/soundrift/internal/tracks"
	"github.com/soundrift/soundrift/pkg/logger"
	"github.com/soundrift/soundrift/pkg/metrics"
	"github.com/soundrift/soundrift/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: keycloak=%v postgres=%v redis=%v", cfg.Keycloak.URL != "", cfg.Postgres.URL != "", cfg.Redis.Host != "")

	r := gin.New()

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	// (Keep this intentionally simple — production should use a stricter policy.)
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	// Global middlewares: logging + recovery
	r.Use(gin.Logger(), gin.Recovery())

	ctx := context.Background()

	// Connect to Redis early so the rate limiter and broadcaster can use it
	var rdb *redis.Client
	if cfg.Redis.Host != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			rdb = nil
		} else {
			logger.Infof("Connected to Redis: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	// Optional global rate limiter (per-user when authenticated, otherwise per-IP)
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && rdb != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// Postgres is the one hard dependency: identity, tracks and playlists
	// all live there.
	connCtx, cancel := context.WithTimeout(ctx, cfg.Postgres.ConnectTimeout)
	database, err := db.New(connCtx, cfg.Postgres.URL)
	cancel()
	if err != nil {
		logger.Fatalf("failed to connect to Postgres: %v", err)
	}
	defer database.Close()

	// Object store; uploads degrade to the fallback asset when it is down,
	// so a connect failure is a warning, not fatal.
	var store tracks.ObjectStore
	var storeReady bool
	if mcfg := storage.LoadMinIOConfig(); mcfg.Endpoint != "" {
		minioStore, err := storage.NewMinIOStorage(mcfg)
		if err != nil {
			logger.Warnf("failed to initialize MinIO storage: %v", err)
			store = failingStore{}
		} else {
			store = minioStore
			storeReady = true
		}
	} else {
		logger.Warnf("MINIO_ENDPOINT not set; all uploads will use the fallback asset")
		store = failingStore{}
	}

	// Realtime broadcaster over Redis pub/sub
	var bcast realtime.Broadcaster = realtime.NopBroadcaster{}
	if rdb != nil {
		bcast = realtime.NewRedisBroadcaster(rdb, cfg.Redis.EventChannel)
	}

	// Keycloak OIDC verifier
	var verifier middleware.Verifier
	if cfg.Keycloak.URL != "" && cfg.Keycloak.ClientID != "" && cfg.Keycloak.Realm != "" {
		issuer := strings.TrimRight(cfg.Keycloak.URL, "/") + "/realms/" + cfg.Keycloak.Realm
		ver, err := identity.NewVerifier(ctx, issuer, cfg.Keycloak.ClientID)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier: %v", err)
		} else {
			verifier = ver
		}
	}
	// Optional insecure verifier for integration tests: parse token claims without signature verification
	if verifier == nil {
		if strings.ToLower(strings.TrimSpace(os.Getenv("ALLOW_INSECURE_TOKEN"))) == "true" {
			logger.Warn("enabling insecure token verifier (integration mode)")
			verifier = identity.NewInsecureVerifier()
		}
	}

	resolver := identity.NewResolver(verifier, database.Users())
	trackSvc := tracks.NewService(store, database.Tracks(), resolver, bcast, cfg.Assets)
	playlistSvc := playlists.NewService(database.Playlists(), bcast)

	// Basic health endpoint
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness endpoint — return 200 only when critical dependencies are available
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}

		if err := database.Ping(c.Request.Context()); err != nil {
			deps["postgres"] = false
			ready = false
		} else {
			deps["postgres"] = true
		}

		// Redis readiness when used for the broadcaster or rate limiter
		if cfg.Redis.Host != "" {
			deps["redis"] = rdb != nil && rdb.Ping(c.Request.Context()).Err() == nil
			if !deps["redis"] {
				ready = false
			}
		} else {
			deps["redis"] = true
		}

		// MinIO is reported but never gates readiness: uploads degrade to the
		// fallback asset when the store is down.
		deps["minio"] = storeReady

		// OIDC readiness: if Keycloak URL was configured we expect a verifier (or ALLOW_INSECURE_TOKEN)
		if cfg.Keycloak.URL != "" {
			deps["oidc"] = verifier != nil
			if verifier == nil {
				ready = false
			}
		} else {
			deps["oidc"] = true
		}

		status := http.StatusOK
		state := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			state = "not_ready"
		}
		c.JSON(status, gin.H{"status": state, "deps": deps, "uptime": fmt.Sprintf("%s", time.Since(startTime))})
	})

	api := r.Group("/api")
	handlers.NewTracksHandler(trackSvc).Register(api)
	handlers.NewPlaylistsHandler(playlistSvc, cfg.Assets.FallbackCoverURL).Register(api, middleware.RequireIdentity(resolver))
	api.GET("/me", middleware.RequireIdentity(resolver), func(c *gin.Context) {
		ident, _ := middleware.IdentityFrom(c)
		u, err := resolver.Lookup(c.Request.Context(), ident)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "user lookup failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": u})
	})
	handlers.RegisterSwagger(r)

	// Expose Prometheus metrics
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("services: verifier=%v redis=%v store=%T", verifier != nil, rdb != nil, store)
	logger.Infof("Starting soundrift backend on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}

// failingStore stands in when no object store is configured; every put fails
// so ingestion takes the fallback-asset path.
type failingStore struct{}

func (failingStore) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	return "", fmt.Errorf("object store not configured")
}
