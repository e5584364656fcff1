package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"winelist/internal/config"
	"winelist/internal/handlers"
	"winelist/internal/logger"
	"winelist/internal/realtime"
	"winelist/internal/regions"
	"winelist/internal/repositories"
	"winelist/internal/routes"
	"winelist/internal/services"
)

type Server struct {
	HTTP *http.Server

	log     *zap.Logger
	repo    repositories.DocumentRepository
	hub     *realtime.Hub
	rdb     *redis.Client
	watcher *realtime.FileWatcher
	cancel  context.CancelFunc
}

func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Server, error) {
	reg, err := regions.Load(cfg.RegionsFile)
	if err != nil {
		return nil, err
	}

	repo, err := OpenStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s := &Server{
		log:    log,
		repo:   repo,
		hub:    realtime.NewHub(log),
		cancel: cancel,
	}

	var broadcaster services.Broadcaster = s.hub
	if cfg.Realtime.RedisAddr != "" {
		relay, err := s.startRelay(ctx, runCtx, cfg.Realtime.RedisAddr)
		if err != nil {
			s.close()
			return nil, err
		}
		broadcaster = relay
	}

	// Dependency injection
	documents := services.NewDocumentService(repo, broadcaster, log)
	if err := documents.Init(ctx); err != nil {
		s.close()
		return nil, err
	}
	auth := services.NewAuthService(cfg.Auth)
	catalog := services.NewCatalogService(documents, reg)
	integrity := services.NewIntegrityService(documents)

	if fileRepo, ok := repo.(*repositories.FileDocumentRepository); ok && cfg.Realtime.WatchDBFile {
		watcher, err := realtime.NewFileWatcher(fileRepo.Path(), fileRepo, documents.PublishExternalChange, log)
		if err != nil {
			s.close()
			return nil, err
		}
		s.watcher = watcher
		if err := watcher.Start(runCtx); err != nil {
			s.close()
			return nil, err
		}
	}

	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}
	router := gin.New()
	router.Use(logger.Recovery(log), logger.Middleware(log), cors.New(corsConfig()))

	routes.RegisterRoutes(router, routes.Handlers{
		Documents: handlers.NewDocumentHandler(documents, auth, log),
		Auth:      handlers.NewAuthHandler(auth),
		Catalog:   handlers.NewCatalogHandler(catalog, integrity, log),
		Realtime:  handlers.NewRealtimeHandler(s.hub, documents),
	}, auth, cfg.Server.MaxBodySize)

	// SERVER_TIMEOUT covers slow uploads of large backups.
	s.HTTP = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		IdleTimeout:       time.Minute,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}
	return s, nil
}

func (s *Server) startRelay(ctx, runCtx context.Context, addr string) (*realtime.RedisRelay, error) {
	s.rdb = redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	s.log.Info("connected to Redis", zap.String("addr", addr))

	relay := realtime.NewRedisRelay(s.hub, repositories.NewRedisRepository(s.rdb), s.log)
	if err := relay.Start(runCtx); err != nil {
		return nil, err
	}
	return relay, nil
}

func corsConfig() cors.Config {
	return cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization", logger.RequestIDHeader},
		ExposeHeaders:   []string{"Content-Disposition", logger.RequestIDHeader},
		MaxAge:          12 * time.Hour,
	}
}

// ListenAndServe blocks until the server stops. A graceful Shutdown is not an error.
func (s *Server) ListenAndServe() error {
	if err := s.HTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, drops sockets and releases the store.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.HTTP.Shutdown(ctx)
	s.close()
	return err
}

func (s *Server) close() {
	s.cancel()
	if s.watcher != nil {
		s.watcher.Stop()
	}
	s.hub.Close()
	if s.rdb != nil {
		if err := s.rdb.Close(); err != nil {
			s.log.Warn("failed to close redis client", zap.Error(err))
		}
	}
	if err := s.repo.Close(); err != nil {
		s.log.Warn("failed to close store", zap.Error(err))
	}
}
