package router

import (
	"ads-api/internal/delivery/handler"
	"ads-api/internal/delivery/middleware"
	"ads-api/internal/domain"
	"ads-api/internal/infrastructure/metrics"
	"ads-api/internal/service"
	"ads-api/pkg/logger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// SetupAdRoutes registers the ads resource. Instances are addressed by the
// store-assigned id, which is also the resource's identifying field.
func SetupAdRoutes(adRouter chi.Router, adService service.AdService, loggers *logger.Loggers, metrics *metrics.HandlerMetrics) error {
	ads, err := handler.NewResource(handler.ResourceConfig[*domain.Ad]{
		Name:       "ads",
		Singular:   "ad",
		Factory:    domain.NewAdFromFields,
		Store:      adService,
		Properties: domain.AdProperties,
		IDField:    domain.FieldID,
	}, loggers, metrics)
	if err != nil {
		return err
	}

	ads.Register(adRouter)
	return nil
}

func NewRouter(adService service.AdService, loggers *logger.Loggers, metrics *metrics.HandlerMetrics) (*chi.Mux, error) {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(loggers))
	r.Use(chimw.Recoverer)

	if err := SetupAdRoutes(r, adService, loggers, metrics); err != nil {
		return nil, err
	}

	r.Handle("/metrics", metrics.HTTPHandler())

	return r, nil
}
