package web

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"newsgraph/answer"
	"newsgraph/config"
	"newsgraph/graph"
	"newsgraph/ingest"
	"newsgraph/persistence"
	"newsgraph/web/handlers"
	"newsgraph/web/middleware"
)

// Services bundles the collaborators the HTTP layer exposes.
type Services struct {
	Store      *graph.Store
	Similarity *graph.SimilarityEngine
	Index      *graph.QueryIndex
	Ingest     *ingest.Service
	Answer     *answer.Service
	Persist    persistence.Store
	Saver      *persistence.Saver
}

type Server struct {
	router  *gin.Engine
	logger  *zap.Logger
	config  *config.Config
	limiter *middleware.ClientRateLimiter
}

func NewServer(services Services, logger *zap.Logger, config *config.Config) *Server {
	// Set Gin mode based on environment
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))

	limiter := middleware.NewClientRateLimiter(middleware.RateLimiterConfig{
		RequestsPerMinute: config.RateLimitRequestsPerMin,
		BurstSize:         config.RateLimitBurstSize,
		CleanupInterval:   10 * time.Minute,
	}, logger)

	server := &Server{
		router:  router,
		logger:  logger,
		config:  config,
		limiter: limiter,
	}

	server.setupRoutes(services)
	return server
}

func (s *Server) setupRoutes(services Services) {
	articleHandler := handlers.NewArticleHandler(services.Ingest, services.Store, services.Similarity, services.Saver, s.logger)
	queryHandler := handlers.NewQueryHandler(services.Index, s.logger)
	askHandler := handlers.NewAskHandler(services.Answer, s.logger)
	graphHandler := handlers.NewGraphHandler(services.Store, services.Persist, services.Saver, s.logger)

	s.router.GET("/healthz", graphHandler.Health)

	api := s.router.Group("/api")
	api.Use(middleware.RateLimitMiddleware(s.limiter))
	{
		api.POST("/articles", articleHandler.Ingest)
		api.POST("/articles/batch", articleHandler.IngestBatch)
		api.GET("/articles/:id", articleHandler.Get)
		api.GET("/articles/:id/similar", articleHandler.Similar)
		api.GET("/articles/:id/edges", articleHandler.Edges)
		api.POST("/edges", articleHandler.AddEdge)
		api.GET("/query/topic", queryHandler.ByTopic)
		api.GET("/query/keyword", queryHandler.ByKeyword)
		api.POST("/ask", askHandler.Ask)
		api.GET("/graph/stats", graphHandler.Stats)
		api.POST("/graph/clear", graphHandler.Clear)
		api.POST("/graph/save", graphHandler.Save)
	}
}

// Router exposes the configured handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) Start(ctx context.Context, addr string) error {
	s.logger.Info("Starting web server", zap.String("address", addr))

	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Web server failed to start", zap.Error(err))
		}
	}()

	// Wait for context cancellation
	<-ctx.Done()

	s.logger.Info("Shutting down web server")
	s.limiter.Stop()
	return srv.Shutdown(context.Background())
}
