package routes

import (
	"context"

	"github.com/mvolosh/jetcharter/internal/domain"
	"github.com/mvolosh/jetcharter/internal/policy"
	"github.com/mvolosh/jetcharter/internal/repository"
)

type RouteUseCase interface {
	List(ctx context.Context) ([]domain.Route, error)
	GetByID(ctx context.Context, id int64) (*domain.Route, error)
	BaggageAllowance(class domain.AircraftClass) (policy.BaggageAllowance, bool)
}

type RouteCache interface {
	GetRoutes(ctx context.Context) ([]domain.Route, error)
	SetRoutes(ctx context.Context, routes []domain.Route) error
}

type RouteService struct {
	repo  repository.RouteRepository
	cache RouteCache
	rates policy.RateTable
}

func NewRouteService(repo repository.RouteRepository, cache RouteCache, rates policy.RateTable) *RouteService {
	return &RouteService{repo: repo, cache: cache, rates: rates}
}

func (s *RouteService) List(ctx context.Context) ([]domain.Route, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetRoutes(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	routes, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetRoutes(ctx, routes)
	}
	return routes, nil
}

func (s *RouteService) GetByID(ctx context.Context, id int64) (*domain.Route, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *RouteService) BaggageAllowance(class domain.AircraftClass) (policy.BaggageAllowance, bool) {
	return s.rates.Baggage(class)
}

var _ RouteUseCase = (*RouteService)(nil)
