package wire

import (
	"time"

	"cleaning-booking/internal/adaptor"
	"cleaning-booking/internal/data/repository"
	"cleaning-booking/internal/payfast"
	"cleaning-booking/internal/usecase"
	"cleaning-booking/pkg/middleware"
	"cleaning-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// App holds the wired dependencies
type App struct {
	Router *chi.Mux
}

// Wiring initializes all dependencies
func Wiring(repo *repository.Repository, config *utils.Config, logger *zap.Logger) *App {
	gateway := payfast.NewClient(
		config.PayFast.Host,
		time.Duration(config.PayFast.ValidateTimeoutSeconds)*time.Second,
		logger,
	)

	service := usecase.NewService(repo, gateway, config, logger)
	handler := adaptor.NewHandler(service, config, logger)

	router := setupRouter(handler, logger)

	return &App{
		Router: router,
	}
}

// setupRouter configures the Chi router
func setupRouter(handler *adaptor.Handler, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	wirePayfast(r, handler)

	return r
}
