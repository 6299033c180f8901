package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ads-api/internal/domain"
	"ads-api/internal/infrastructure/cache"
	"ads-api/internal/infrastructure/metrics"
	"ads-api/pkg/database"

	sq "github.com/Masterminds/squirrel"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

//go:generate mockgen -source=repository.go -destination=mocks/mock_repository.go -package=mocks

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	listCacheKey    = "ads:all"
	versionCacheKey = "ads:version"
)

var adColumns = []string{"id", "title", "description", "created_at", "author"}

type AdRepository interface {
	GetAllAds(ctx context.Context) ([]*domain.Ad, error)
	GetAdByID(ctx context.Context, id int64) (*domain.Ad, error)
	CreateAd(ctx context.Context, ad *domain.Ad) (*domain.Ad, error)
	UpdateAd(ctx context.Context, ad *domain.Ad) (*domain.Ad, error)
	DeleteAd(ctx context.Context, id int64) error
}

type sqlAdRepository struct {
	db       *sql.DB
	cache    cache.Cache
	cacheTTL time.Duration
	metrics  *metrics.RepositoryMetrics
	tracer   trace.Tracer
}

// NewSQLAdRepository works with both the mysql and sqlite3 drivers; every
// statement uses '?' placeholders.
func NewSQLAdRepository(db *sql.DB, cache cache.Cache, cacheTTL time.Duration, metrics *metrics.RepositoryMetrics) AdRepository {
	tracer := otel.Tracer("ads-api/repository")
	return &sqlAdRepository{
		db:       db,
		cache:    cache,
		cacheTTL: cacheTTL,
		metrics:  metrics,
		tracer:   tracer,
	}
}

func adCacheKey(id int64) string {
	return fmt.Sprintf("ad:%d", id)
}

func (r *sqlAdRepository) observe(query string, startTime time.Time, status *string) {
	duration := time.Since(startTime).Seconds()
	r.metrics.QueryCount.WithLabelValues(query, *status).Inc()
	r.metrics.QueryDuration.WithLabelValues(query, *status).Observe(duration)
}

func (r *sqlAdRepository) cacheGet(ctx context.Context, query, key string, dst interface{}) bool {
	cacheSpanCtx, cacheSpan := r.tracer.Start(ctx, "Cache Get")
	cached, err := r.cache.Get(cacheSpanCtx, key)
	cacheSpan.End()

	if err == nil && json.Unmarshal([]byte(cached), dst) == nil {
		r.metrics.CacheHits.WithLabelValues(query, "hit").Inc()
		return true
	}
	r.metrics.CacheHits.WithLabelValues(query, "miss").Inc()
	return false
}

// cacheVersion reads the write counter before a database read. It reports
// false when the cache is unreachable and the result must not be cached.
func (r *sqlAdRepository) cacheVersion(ctx context.Context) (string, bool) {
	version, err := r.cache.Get(ctx, versionCacheKey)
	if errors.Is(err, cache.ErrCacheMiss) {
		return "", true
	}
	return version, err == nil
}

// cacheFill stores value unless a write has bumped the counter since version
// was read.
func (r *sqlAdRepository) cacheFill(ctx context.Context, version, key string, value interface{}) {
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	cacheSpanCtx, cacheSpan := r.tracer.Start(ctx, "Cache Set")
	defer cacheSpan.End()

	stored, err := r.cache.SetIfEqual(cacheSpanCtx, versionCacheKey, version, key, string(payload), r.cacheTTL)
	if err != nil {
		cacheSpan.RecordError(err)
		return
	}
	cacheSpan.SetAttributes(attribute.Bool("cache.stored", stored))
}

// cacheInvalidate runs after a write commits. The counter must move before
// the keys are deleted.
func (r *sqlAdRepository) cacheInvalidate(ctx context.Context, keys ...string) {
	cacheSpanCtx, cacheSpan := r.tracer.Start(ctx, "Cache Delete")
	defer cacheSpan.End()

	if err := r.cache.Incr(cacheSpanCtx, versionCacheKey); err != nil {
		cacheSpan.RecordError(err)
	}
	if err := r.cache.Delete(cacheSpanCtx, keys...); err != nil {
		cacheSpan.RecordError(err)
	}
}

func (r *sqlAdRepository) GetAllAds(ctx context.Context) ([]*domain.Ad, error) {
	ctx, span := r.tracer.Start(ctx, "Repository GetAllAds")
	defer span.End()

	startTime := time.Now()
	status := "success"
	defer r.observe("GetAllAds", startTime, &status)

	var cached []*domain.Ad
	if r.cacheGet(ctx, "GetAllAds", listCacheKey, &cached) {
		return cached, nil
	}
	version, cacheable := r.cacheVersion(ctx)

	query, args, err := sq.Select(adColumns...).
		From(database.AdsTable).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		status = "error"
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to build select query")
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetAttributes(attribute.String("query", query))
		return nil, errors.Wrap(err, "failed to retrieve ads")
	}
	defer rows.Close()

	ads := make([]*domain.Ad, 0)
	for rows.Next() {
		var ad domain.Ad
		if err := rows.Scan(&ad.ID, &ad.Title, &ad.Description, &ad.CreatedAt, &ad.Author); err != nil {
			status = "error"
			span.RecordError(err)
			return nil, errors.Wrap(err, "failed to scan ad")
		}
		ads = append(ads, &ad)
	}

	if err := rows.Err(); err != nil {
		status = "error"
		span.RecordError(err)
		return nil, errors.Wrap(err, "rows error")
	}

	if cacheable {
		r.cacheFill(ctx, version, listCacheKey, ads)
	}

	span.SetAttributes(attribute.Int("ads.count", len(ads)))
	return ads, nil
}

func (r *sqlAdRepository) GetAdByID(ctx context.Context, id int64) (*domain.Ad, error) {
	ctx, span := r.tracer.Start(ctx, "Repository GetAdByID")
	defer span.End()

	span.SetAttributes(attribute.Int64("ad.id", id))

	startTime := time.Now()
	status := "success"
	defer r.observe("GetAdByID", startTime, &status)

	var cached domain.Ad
	if r.cacheGet(ctx, "GetAdByID", adCacheKey(id), &cached) {
		return &cached, nil
	}
	version, cacheable := r.cacheVersion(ctx)

	ad, err := r.selectByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			status = "not_found"
			return nil, err
		}
		status = "error"
		span.RecordError(err)
		return nil, err
	}

	if cacheable {
		r.cacheFill(ctx, version, adCacheKey(id), ad)
	}

	return ad, nil
}

// selectByID returns sql.ErrNoRows unwrapped so callers can match on it.
func (r *sqlAdRepository) selectByID(ctx context.Context, id int64) (*domain.Ad, error) {
	query, args, err := sq.Select(adColumns...).
		From(database.AdsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build select query")
	}

	ad := &domain.Ad{}
	err = r.db.QueryRowContext(ctx, query, args...).Scan(
		&ad.ID,
		&ad.Title,
		&ad.Description,
		&ad.CreatedAt,
		&ad.Author,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, errors.Wrap(err, "failed to fetch ad")
	}

	return ad, nil
}

func (r *sqlAdRepository) CreateAd(ctx context.Context, ad *domain.Ad) (*domain.Ad, error) {
	ctx, span := r.tracer.Start(ctx, "Repository CreateAd")
	defer span.End()

	span.SetAttributes(
		attribute.String("ad.title", ad.Title),
		attribute.String("ad.author", ad.Author),
	)

	startTime := time.Now()
	status := "success"
	defer r.observe("CreateAd", startTime, &status)

	query, args, err := sq.Insert(database.AdsTable).
		Columns("title", "description", "created_at", "author").
		Values(ad.Title, ad.Description, ad.CreatedAt, ad.Author).
		ToSql()
	if err != nil {
		status = "error"
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to build insert query")
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to insert ad")
	}

	id, err := result.LastInsertId()
	if err != nil {
		status = "error"
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to get last insert id")
	}

	insertedAd, err := r.selectByID(ctx, id)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to fetch inserted ad")
	}

	r.cacheInvalidate(ctx, listCacheKey)

	return insertedAd, nil
}

func (r *sqlAdRepository) UpdateAd(ctx context.Context, ad *domain.Ad) (*domain.Ad, error) {
	ctx, span := r.tracer.Start(ctx, "Repository UpdateAd")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("ad.id", ad.ID),
		attribute.String("ad.title", ad.Title),
	)

	startTime := time.Now()
	status := "success"
	defer r.observe("UpdateAd", startTime, &status)

	query, args, err := sq.Update(database.AdsTable).
		Set("title", ad.Title).
		Set("description", ad.Description).
		Set("created_at", ad.CreatedAt).
		Set("author", ad.Author).
		Where(sq.Eq{"id": ad.ID}).
		ToSql()
	if err != nil {
		status = "error"
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to build update query")
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to update ad")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		status = "error"
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to retrieve rows affected")
	}

	if rowsAffected == 0 {
		status = "not_found"
		return nil, sql.ErrNoRows
	}

	r.cacheInvalidate(ctx, adCacheKey(ad.ID), listCacheKey)

	updatedAd, err := r.selectByID(ctx, ad.ID)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to fetch updated ad")
	}

	return updatedAd, nil
}

func (r *sqlAdRepository) DeleteAd(ctx context.Context, id int64) error {
	ctx, span := r.tracer.Start(ctx, "Repository DeleteAd")
	defer span.End()

	span.SetAttributes(attribute.Int64("ad.id", id))

	startTime := time.Now()
	status := "success"
	defer r.observe("DeleteAd", startTime, &status)

	query, args, err := sq.Delete(database.AdsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		status = "error"
		span.RecordError(err)
		return errors.Wrap(err, "failed to build delete query")
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return errors.Wrap(err, "failed to delete ad")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		status = "error"
		span.RecordError(err)
		return errors.Wrap(err, "failed to retrieve rows affected")
	}

	if rowsAffected == 0 {
		status = "not_found"
		return sql.ErrNoRows
	}

	r.cacheInvalidate(ctx, adCacheKey(id), listCacheKey)

	return nil
}
