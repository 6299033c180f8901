package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"ads-api/internal/domain"
	"ads-api/internal/infrastructure/metrics"
	"ads-api/internal/repository/mocks"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestService(t *testing.T) (AdService, *mocks.MockAdRepository, *metrics.ServiceMetrics) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockAdRepository(ctrl)
	m := metrics.NewServiceMetrics(prometheus.NewRegistry())
	return NewAdService(repo, m), repo, m
}

func TestGet(t *testing.T) {
	ad := &domain.Ad{ID: 1, Title: "Sale"}

	tests := []struct {
		name    string
		id      int64
		setup   func(repo *mocks.MockAdRepository)
		want    *domain.Ad
		wantErr error
	}{
		{
			name: "found",
			id:   1,
			setup: func(repo *mocks.MockAdRepository) {
				repo.EXPECT().GetAdByID(gomock.Any(), int64(1)).Return(ad, nil)
			},
			want: ad,
		},
		{
			name: "missing row maps to not found",
			id:   2,
			setup: func(repo *mocks.MockAdRepository) {
				repo.EXPECT().GetAdByID(gomock.Any(), int64(2)).Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrAdNotFound,
		},
		{
			name:    "non positive id never reaches the repository",
			id:      0,
			setup:   func(repo *mocks.MockAdRepository) {},
			wantErr: ErrInvalidID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestService(t)
			tt.setup(repo)

			got, err := svc.Get(context.Background(), tt.id)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSentinelsWrapDomainErrors(t *testing.T) {
	assert.True(t, errors.Is(ErrAdNotFound, domain.ErrNotFound))
	assert.True(t, errors.Is(ErrInvalidID, domain.ErrInvalid))
}

func TestUpdateNotFound(t *testing.T) {
	svc, repo, m := newTestService(t)
	ad := &domain.Ad{ID: 9}

	repo.EXPECT().UpdateAd(gomock.Any(), ad).Return(nil, sql.ErrNoRows)

	_, err := svc.Update(context.Background(), ad)
	assert.True(t, errors.Is(err, ErrAdNotFound))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.MethodCount.WithLabelValues("Update", "not_found")))
}

func TestDelete(t *testing.T) {
	svc, repo, _ := newTestService(t)

	repo.EXPECT().DeleteAd(gomock.Any(), int64(3)).Return(nil)
	repo.EXPECT().DeleteAd(gomock.Any(), int64(4)).Return(sql.ErrNoRows)

	assert.NoError(t, svc.Delete(context.Background(), 3))
	assert.True(t, errors.Is(svc.Delete(context.Background(), 4), ErrAdNotFound))
}

func TestListAndCreatePropagateErrors(t *testing.T) {
	svc, repo, m := newTestService(t)
	boom := errors.New("connection lost")

	repo.EXPECT().GetAllAds(gomock.Any()).Return(nil, boom)
	repo.EXPECT().CreateAd(gomock.Any(), gomock.Any()).Return(nil, boom)

	_, err := svc.List(context.Background())
	assert.ErrorIs(t, err, boom)

	_, err = svc.Create(context.Background(), &domain.Ad{Title: "t"})
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.MethodCount.WithLabelValues("List", "error")))
}
