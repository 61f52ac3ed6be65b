package schedule

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"nub.ac.bd/transport/internal/entity"
	"nub.ac.bd/transport/internal/modules/schedule/dto"
	"nub.ac.bd/transport/internal/modules/schedule/repository"
	"nub.ac.bd/transport/internal/modules/schedule/search"
	"nub.ac.bd/transport/pkg/apperror"
	"nub.ac.bd/transport/pkg/sanitize"
)

type RouteService interface {
	GetAllRoutes(ctx context.Context) ([]*entity.BusRoute, error)
	GetRouteByID(ctx context.Context, id uint) (*entity.BusRoute, error)
	CreateRoute(ctx context.Context, req dto.CreateRouteRequest) (*entity.BusRoute, error)
	CreateRouteWithStops(ctx context.Context, req dto.RouteWithStopsRequest) (*entity.BusRoute, error)
	UpdateRoute(ctx context.Context, id uint, req dto.UpdateRouteRequest) (*entity.BusRoute, error)
	DeleteRoute(ctx context.Context, id uint) error
}

type routeService struct {
	repo         repository.RouteRepository
	stopRepo     repository.StopRepository
	scheduleRepo repository.ScheduleRepository
	index        search.StopIndex
}

// NewRouteService accepts a nil index when search is not configured.
func NewRouteService(repo repository.RouteRepository, stopRepo repository.StopRepository, scheduleRepo repository.ScheduleRepository, index search.StopIndex) RouteService {
	return &routeService{
		repo:         repo,
		stopRepo:     stopRepo,
		scheduleRepo: scheduleRepo,
		index:        index,
	}
}

func (s *routeService) GetAllRoutes(ctx context.Context) ([]*entity.BusRoute, error) {
	routes, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return routes, nil
}

func (s *routeService) GetRouteByID(ctx context.Context, id uint) (*entity.BusRoute, error) {
	route, err := s.repo.FindByIDWithDetails(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Route with ID %d not found", id)
		}
		return nil, apperror.Internal(err)
	}
	return route, nil
}

func (s *routeService) CreateRoute(ctx context.Context, req dto.CreateRouteRequest) (*entity.BusRoute, error) {
	route := &entity.BusRoute{
		Name:        strings.TrimSpace(req.Name),
		Description: sanitize.Ptr(req.Description),
	}
	if err := s.repo.Create(ctx, route); err != nil {
		return nil, apperror.Internal(err)
	}
	return route, nil
}

// CreateRouteWithStops stores the route and all of its stops atomically.
func (s *routeService) CreateRouteWithStops(ctx context.Context, req dto.RouteWithStopsRequest) (*entity.BusRoute, error) {
	route := &entity.BusRoute{
		Name:        strings.TrimSpace(req.Name),
		Description: sanitize.Ptr(req.Description),
	}

	stops := make([]*entity.BusStop, 0, len(req.Stops))
	for _, stopReq := range req.Stops {
		stop, err := newStop(stopReq)
		if err != nil {
			return nil, err
		}
		stops = append(stops, stop)
	}

	if err := s.repo.CreateWithStops(ctx, route, stops); err != nil {
		return nil, apperror.Internal(err)
	}

	route.Stops = make([]entity.BusStop, 0, len(stops))
	for _, stop := range stops {
		route.Stops = append(route.Stops, *stop)
		indexStop(s.index, stop, route.Name)
	}
	return route, nil
}

func (s *routeService) UpdateRoute(ctx context.Context, id uint, req dto.UpdateRouteRequest) (*entity.BusRoute, error) {
	route, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Route with ID %d not found", id)
		}
		return nil, apperror.Internal(err)
	}

	renamed := false
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		renamed = name != route.Name
		route.Name = name
	}
	if req.Description != nil {
		route.Description = sanitize.Ptr(req.Description)
	}

	if err := s.repo.Update(ctx, route); err != nil {
		return nil, apperror.Internal(err)
	}

	if renamed && s.index != nil {
		s.reindexRoute(ctx, route)
	}
	return route, nil
}

func (s *routeService) reindexRoute(ctx context.Context, route *entity.BusRoute) {
	stops, err := s.stopRepo.FindByRoute(ctx, route.ID)
	if err != nil {
		logrus.WithError(err).Warnf("failed to load stops of route %d for reindex", route.ID)
		return
	}
	for _, stop := range stops {
		stop.Route = route
	}
	if err := s.index.IndexStops(stops); err != nil {
		logrus.WithError(err).Warnf("failed to reindex stops of route %d", route.ID)
	}
}

// DeleteRoute refuses while schedules still reference the route. Stops go
// with the route through the cascade.
func (s *routeService) DeleteRoute(ctx context.Context, id uint) error {
	route, err := s.repo.FindByIDWithDetails(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("Route with ID %d not found", id)
		}
		return apperror.Internal(err)
	}

	count, err := s.scheduleRepo.CountByRoute(ctx, id)
	if err != nil {
		return apperror.Internal(err)
	}
	if count > 0 {
		return apperror.BadRequest("Cannot delete route: %d schedules are associated with this route", count)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return apperror.BadRequest("Cannot delete route with ID %d: it has recorded journeys", id)
		}
		return apperror.Internal(err)
	}

	for _, stop := range route.Stops {
		unindexStop(s.index, stop.ID)
	}
	return nil
}
