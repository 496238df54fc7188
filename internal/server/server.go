package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"retail-pos/internal/config"
	custommiddleware "retail-pos/internal/middleware"
	"retail-pos/internal/repository"
	"retail-pos/internal/service"
	"retail-pos/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config      *config.Config
	logger      *zap.Logger
	db          *sql.DB
	redisClient *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env != "production"))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	// Redis backs the login rate limiter
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	shopRepo := repository.NewShopRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	productRepo := repository.NewProductRepository(db)
	brandRepo := repository.NewBrandRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	unitRepo := repository.NewUnitRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	expenseCategoryRepo := repository.NewExpenseCategoryRepository(db)
	payeeRepo := repository.NewPayeeRepository(db)
	saleRepo := repository.NewSaleRepository(db)

	// Initialize services
	userService := service.NewUserService(userRepo, refreshTokenRepo, cfg.JWT.Secret)
	saleService := service.NewSaleService(saleRepo, nil)
	reportService := service.NewReportService(saleRepo, shopRepo, nil)

	// Initialize handlers
	userHandler := transport.NewUserHandler(userService, logger)
	shopHandler := transport.NewShopHandler(shopRepo, userRepo, logger)
	customerHandler := transport.NewCustomerHandler(customerRepo, logger)
	supplierHandler := transport.NewSupplierHandler(supplierRepo, logger)
	productHandler := transport.NewProductHandler(productRepo, logger)
	catalogHandler := transport.NewCatalogHandler(brandRepo, categoryRepo, unitRepo, logger)
	expenseHandler := transport.NewExpenseHandler(expenseRepo, expenseCategoryRepo, payeeRepo, logger)
	saleHandler := transport.NewSaleHandler(saleService, reportService, logger)

	// Create shared middleware
	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	adminOnly := custommiddleware.RequireAdmin(logger)
	loginRateLimit := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimit.LoginRequests,
		Window:            time.Duration(cfg.RateLimit.LoginWindow) * time.Second,
		KeyPrefix:         "ratelimit:login",
	}, logger)

	// Register routes
	userHandler.RegisterRoutes(router, authMiddleware, adminOnly, loginRateLimit)
	shopHandler.RegisterRoutes(router, authMiddleware)
	customerHandler.RegisterRoutes(router, authMiddleware)
	supplierHandler.RegisterRoutes(router, authMiddleware)
	productHandler.RegisterRoutes(router, authMiddleware, adminOnly)
	catalogHandler.RegisterRoutes(router, authMiddleware)
	expenseHandler.RegisterRoutes(router, authMiddleware)
	saleHandler.RegisterRoutes(router, authMiddleware)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:      cfg,
		logger:      logger,
		db:          db,
		redisClient: redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
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
