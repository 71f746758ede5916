package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	handlers "github.com/de-tools/price-atlas/pkg/handlers/prices"
	priceatlasmiddleware "github.com/de-tools/price-atlas/pkg/server/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type WebAPI struct {
	router          *chi.Mux
	logger          *zerolog.Logger
	server          *http.Server
	shutdownTimeout time.Duration
}

type Dependencies struct {
	Prices  handlers.PriceService
	Logger  zerolog.Logger
	Metrics MetricsProvider
	Now     func() time.Time
}

// MetricsProvider exposes request metrics and the scrape endpoint.
type MetricsProvider interface {
	priceatlasmiddleware.RequestObserver
	Handler() http.Handler
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

func ConfigureRouter(config Config) *chi.Mux {
	deps := config.Dependencies
	priceHandler := handlers.NewHandler(deps.Prices, deps.Now)

	router := chi.NewRouter()

	router.Use(priceatlasmiddleware.Logger(&deps.Logger))
	if deps.Metrics != nil {
		router.Use(priceatlasmiddleware.Metrics(deps.Metrics))
	}
	router.Use(middleware.Recoverer)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/commodities", priceHandler.ListCommodities)
		r.Route("/commodities/{commodity}/{specification}", func(r chi.Router) {
			r.Get("/forecast", priceHandler.GetForecast)
			r.Get("/forecast/series", priceHandler.GetForecastSeries)
			r.Get("/years/{year}", priceHandler.GetYearSeries)
			r.Put("/override", priceHandler.PutOverride)
			r.Delete("/override", priceHandler.DeleteOverride)
		})
	})
	if deps.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	return router
}

func NewWebAPI(config Config) *WebAPI {
	router := ConfigureRouter(config)
	logger := config.Dependencies.Logger

	timeout := config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &WebAPI{
		router:          router,
		logger:          &logger,
		shutdownTimeout: timeout,
		server: &http.Server{
			Addr:              config.Addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if err != nil {
			return err
		}
	}

	return nil
}
