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
)

const defaultSearchLimit = 20

type StopService interface {
	GetAllStops(ctx context.Context) ([]*entity.BusStop, error)
	GetStopByID(ctx context.Context, id uint) (*entity.BusStop, error)
	GetStopsByRoute(ctx context.Context, routeID uint) ([]*entity.BusStop, error)
	CreateStop(ctx context.Context, req dto.CreateStopRequest) (*entity.BusStop, error)
	UpdateStop(ctx context.Context, id uint, req dto.UpdateStopRequest) (*entity.BusStop, error)
	DeleteStop(ctx context.Context, id uint) error
	SearchStops(ctx context.Context, query dto.StopSearchQuery) ([]*entity.BusStop, error)
	ReindexStops(ctx context.Context) error
}

type stopService struct {
	repo      repository.StopRepository
	routeRepo repository.RouteRepository
	index     search.StopIndex
}

// NewStopService accepts a nil index when search is not configured.
func NewStopService(repo repository.StopRepository, routeRepo repository.RouteRepository, index search.StopIndex) StopService {
	return &stopService{
		repo:      repo,
		routeRepo: routeRepo,
		index:     index,
	}
}

func newStop(req dto.CreateStopRequest) (*entity.BusStop, error) {
	stop := &entity.BusStop{
		Name:     strings.TrimSpace(req.Name),
		Sequence: req.Sequence,
		RouteID:  req.RouteID,
	}
	if req.Latitude != nil {
		stop.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		stop.Longitude = *req.Longitude
	}
	if req.ScheduledArrivalTime != nil {
		t, err := entity.ParseTimeOfDay(*req.ScheduledArrivalTime)
		if err != nil {
			return nil, err
		}
		stop.ScheduledArrivalTime = &t
	}
	return stop, nil
}

func indexStop(index search.StopIndex, stop *entity.BusStop, routeName string) {
	if index == nil {
		return
	}
	if err := index.IndexStop(stop, routeName); err != nil {
		logrus.WithError(err).Warnf("failed to index bus stop %d", stop.ID)
	}
}

func unindexStop(index search.StopIndex, id uint) {
	if index == nil {
		return
	}
	if err := index.DeleteStop(id); err != nil {
		logrus.WithError(err).Warnf("failed to remove bus stop %d from index", id)
	}
}

func (s *stopService) findRoute(ctx context.Context, id uint) (*entity.BusRoute, error) {
	route, err := s.routeRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.BadRequest("Route with ID %d not found", id)
		}
		return nil, apperror.Internal(err)
	}
	return route, nil
}

func (s *stopService) GetAllStops(ctx context.Context) ([]*entity.BusStop, error) {
	stops, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return stops, nil
}

func (s *stopService) GetStopByID(ctx context.Context, id uint) (*entity.BusStop, error) {
	stop, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Bus stop with ID %d not found", id)
		}
		return nil, apperror.Internal(err)
	}
	return stop, nil
}

func (s *stopService) GetStopsByRoute(ctx context.Context, routeID uint) ([]*entity.BusStop, error) {
	if _, err := s.routeRepo.FindByID(ctx, routeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Route with ID %d not found", routeID)
		}
		return nil, apperror.Internal(err)
	}

	stops, err := s.repo.FindByRoute(ctx, routeID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return stops, nil
}

func (s *stopService) CreateStop(ctx context.Context, req dto.CreateStopRequest) (*entity.BusStop, error) {
	if req.RouteID == 0 {
		return nil, apperror.BadRequest("route_id is required")
	}
	route, err := s.findRoute(ctx, req.RouteID)
	if err != nil {
		return nil, err
	}

	stop, err := newStop(req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, stop); err != nil {
		return nil, apperror.Internal(err)
	}

	stop.Route = route
	indexStop(s.index, stop, route.Name)
	return stop, nil
}

func (s *stopService) UpdateStop(ctx context.Context, id uint, req dto.UpdateStopRequest) (*entity.BusStop, error) {
	stop, err := s.GetStopByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.RouteID != nil {
		route, err := s.findRoute(ctx, *req.RouteID)
		if err != nil {
			return nil, err
		}
		stop.RouteID = route.ID
		stop.Route = route
	}
	if req.Name != nil {
		stop.Name = strings.TrimSpace(*req.Name)
	}
	if req.Latitude != nil {
		stop.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		stop.Longitude = *req.Longitude
	}
	if req.Sequence != nil {
		stop.Sequence = *req.Sequence
	}
	if req.ScheduledArrivalTime.Set {
		if req.ScheduledArrivalTime.Value == nil {
			stop.ScheduledArrivalTime = nil
		} else {
			t, err := entity.ParseTimeOfDay(*req.ScheduledArrivalTime.Value)
			if err != nil {
				return nil, err
			}
			stop.ScheduledArrivalTime = &t
		}
	}

	if err := s.repo.Update(ctx, stop); err != nil {
		return nil, apperror.Internal(err)
	}

	routeName := ""
	if stop.Route != nil {
		routeName = stop.Route.Name
	}
	indexStop(s.index, stop, routeName)
	return stop, nil
}

func (s *stopService) DeleteStop(ctx context.Context, id uint) error {
	if _, err := s.GetStopByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperror.Internal(err)
	}
	unindexStop(s.index, id)
	return nil
}

// SearchStops asks the search index first and falls back to a name match in
// the database when the index is missing or failing.
func (s *stopService) SearchStops(ctx context.Context, query dto.StopSearchQuery) ([]*entity.BusStop, error) {
	q := strings.TrimSpace(query.Q)
	if q == "" {
		return nil, apperror.BadRequest("Search query must not be empty")
	}
	limit := query.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	if s.index != nil {
		ids, err := s.index.SearchStopIDs(q, limit)
		if err == nil {
			return s.stopsInOrder(ctx, ids)
		}
		logrus.WithError(err).Warn("stop search index unavailable, using database")
	}

	stops, err := s.repo.Search(ctx, q, limit)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return stops, nil
}

// stopsInOrder loads stops by id keeping the ranking of ids. Ids that no
// longer exist are skipped.
func (s *stopService) stopsInOrder(ctx context.Context, ids []uint) ([]*entity.BusStop, error) {
	found, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	byID := make(map[uint]*entity.BusStop, len(found))
	for _, stop := range found {
		byID[stop.ID] = stop
	}

	stops := make([]*entity.BusStop, 0, len(ids))
	for _, id := range ids {
		if stop, ok := byID[id]; ok {
			stops = append(stops, stop)
		}
	}
	return stops, nil
}

func (s *stopService) ReindexStops(ctx context.Context) error {
	if s.index == nil {
		return nil
	}
	stops, err := s.repo.FindAll(ctx)
	if err != nil {
		return err
	}
	return s.index.IndexStops(stops)
}
