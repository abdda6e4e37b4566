package temples

import (
	"context"
	"strconv"

	"github.com/mandirtech/edarshan/internal/domain"
	"github.com/mandirtech/edarshan/internal/metrics"
	"github.com/mandirtech/edarshan/internal/repository"
)

type TempleUseCase interface {
	List(ctx context.Context) ([]domain.Temple, error)
	GetByID(ctx context.Context, id int64) (*domain.Temple, error)
	RecordVisit(ctx context.Context, id int64) (int64, error)
}

type Cache interface {
	GetTemples(ctx context.Context) ([]domain.Temple, error)
	SetTemples(ctx context.Context, temples []domain.Temple) error
	IncrementVisits(ctx context.Context, templeID int64) (int64, error)
}

type TempleService struct {
	repo    repository.TempleRepository
	cache   Cache
	metrics *metrics.Metrics
}

func NewTempleService(repo repository.TempleRepository, cache Cache, m *metrics.Metrics) *TempleService {
	return &TempleService{repo: repo, cache: cache, metrics: m}
}

func (s *TempleService) List(ctx context.Context) ([]domain.Temple, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetTemples(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	temples, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetTemples(ctx, temples)
	}
	return temples, nil
}

func (s *TempleService) GetByID(ctx context.Context, id int64) (*domain.Temple, error) {
	return s.repo.GetByID(ctx, id)
}

// RecordVisit bumps both the durable counter and the live redis counter the
// crowd dashboards poll. The durable count is the returned value.
func (s *TempleService) RecordVisit(ctx context.Context, id int64) (int64, error) {
	visits, err := s.repo.IncrementVisits(ctx, id)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		_, _ = s.cache.IncrementVisits(ctx, id)
	}
	if s.metrics != nil {
		s.metrics.TempleVisits.WithLabelValues(strconv.FormatInt(id, 10)).Inc()
	}
	return visits, nil
}

var _ TempleUseCase = (*TempleService)(nil)
