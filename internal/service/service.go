package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ads-api/internal/domain"
	"ads-api/internal/infrastructure/metrics"
	"ads-api/internal/repository"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrInvalidID  = fmt.Errorf("invalid ad ID: %w", domain.ErrInvalid)
	ErrAdNotFound = fmt.Errorf("ad %w", domain.ErrNotFound)
)

// AdService is the store handed to the ads REST resource.
type AdService interface {
	List(ctx context.Context) ([]*domain.Ad, error)
	Get(ctx context.Context, id int64) (*domain.Ad, error)
	Create(ctx context.Context, ad *domain.Ad) (*domain.Ad, error)
	Update(ctx context.Context, ad *domain.Ad) (*domain.Ad, error)
	Delete(ctx context.Context, id int64) error
}

type adService struct {
	repository repository.AdRepository
	metrics    *metrics.ServiceMetrics
	tracer     trace.Tracer
}

func NewAdService(repository repository.AdRepository, metrics *metrics.ServiceMetrics) AdService {
	tracer := otel.Tracer("ads-api/service")
	return &adService{
		repository: repository,
		metrics:    metrics,
		tracer:     tracer,
	}
}

func (s *adService) observe(method string, startTime time.Time, status *string) {
	duration := time.Since(startTime).Seconds()
	s.metrics.MethodCount.WithLabelValues(method, *status).Inc()
	s.metrics.MethodDuration.WithLabelValues(method, *status).Observe(duration)
}

func (s *adService) List(ctx context.Context) ([]*domain.Ad, error) {
	ctx, span := s.tracer.Start(ctx, "List")
	defer span.End()

	startTime := time.Now()
	status := "success"
	defer s.observe("List", startTime, &status)

	ads, err := s.repository.GetAllAds(ctx)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("ads.count", len(ads)))
	return ads, nil
}

func (s *adService) Get(ctx context.Context, id int64) (*domain.Ad, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}

	ctx, span := s.tracer.Start(ctx, "Get")
	defer span.End()

	startTime := time.Now()
	status := "success"
	defer s.observe("Get", startTime, &status)

	ad, err := s.repository.GetAdByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			status = "not_found"
			return nil, ErrAdNotFound
		}
		status = "error"
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int64("ad.id", id))
	return ad, nil
}

func (s *adService) Create(ctx context.Context, ad *domain.Ad) (*domain.Ad, error) {
	ctx, span := s.tracer.Start(ctx, "Create")
	defer span.End()

	startTime := time.Now()
	status := "success"
	defer s.observe("Create", startTime, &status)

	createdAd, err := s.repository.CreateAd(ctx, ad)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int64("ad.id", createdAd.ID),
		attribute.String("ad.title", createdAd.Title),
	)
	return createdAd, nil
}

func (s *adService) Update(ctx context.Context, ad *domain.Ad) (*domain.Ad, error) {
	if ad.ID <= 0 {
		return nil, ErrInvalidID
	}

	ctx, span := s.tracer.Start(ctx, "Update")
	defer span.End()

	startTime := time.Now()
	status := "success"
	defer s.observe("Update", startTime, &status)

	updatedAd, err := s.repository.UpdateAd(ctx, ad)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			status = "not_found"
			return nil, ErrAdNotFound
		}
		status = "error"
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int64("ad.id", updatedAd.ID),
		attribute.String("ad.title", updatedAd.Title),
	)
	return updatedAd, nil
}

func (s *adService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidID
	}

	ctx, span := s.tracer.Start(ctx, "Delete")
	defer span.End()

	startTime := time.Now()
	status := "success"
	defer s.observe("Delete", startTime, &status)

	err := s.repository.DeleteAd(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			status = "not_found"
			return ErrAdNotFound
		}
		status = "error"
		span.RecordError(err)
		return err
	}

	span.SetAttributes(attribute.Int64("ad.id", id))
	return nil
}
