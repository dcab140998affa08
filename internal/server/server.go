package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ticket-office/internal/config"
	"ticket-office/internal/database"
	custommiddleware "ticket-office/internal/middleware"
	"ticket-office/internal/repository"
	"ticket-office/internal/service"
	"ticket-office/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *database.Service
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *database.Service) *Server {
	router := chi.NewRouter()

	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env != "production"))

	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":   "ok",
			"database": db.Health(),
		})
	})

	// Initialize repositories
	groupRepo := repository.NewProductGroupRepository(db.DB())
	productRepo := repository.NewProductRepository(db.DB())
	tierRepo := repository.NewPriceTierRepository(db.DB())
	viewRepo := repository.NewProductViewRepository(db.DB())
	reportRepo := repository.NewReportRepository(db.DB())

	// Initialize services
	catalogService := service.NewCatalogService(groupRepo, productRepo, tierRepo)
	pricingService := service.NewPricingService(tierRepo, productRepo)
	viewService := service.NewViewService(viewRepo, productRepo)
	reportService := service.NewReportService(reportRepo, viewRepo)

	// Initialize handlers
	catalogHandler := transport.NewCatalogHandler(catalogService, logger)
	pricingHandler := transport.NewPricingHandler(pricingService, catalogService, logger)
	viewHandler := transport.NewViewHandler(viewService, logger)
	reportHandler := transport.NewReportHandler(reportService, logger)

	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	rateLimit := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: 120,
		Window:            time.Minute,
		KeyPrefix:         "ticket_office_admin",
	}, logger)

	// The whole catalog admin sits behind authentication and the
	// admin role
	router.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(custommiddleware.RequireAdmin(logger))
		r.Use(rateLimit)

		catalogHandler.RegisterRoutes(r)
		pricingHandler.RegisterRoutes(r)
		viewHandler.RegisterRoutes(r)
		reportHandler.RegisterRoutes(r)
	})

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
