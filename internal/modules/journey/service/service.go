package journey

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"nub.ac.bd/transport/internal/entity"
	busRepo "nub.ac.bd/transport/internal/modules/bus/repository"
	"nub.ac.bd/transport/internal/modules/journey/dto"
	"nub.ac.bd/transport/internal/modules/journey/feed"
	"nub.ac.bd/transport/internal/modules/journey/repository"
	scheduleRepo "nub.ac.bd/transport/internal/modules/schedule/repository"
	"nub.ac.bd/transport/pkg/apperror"
	pkgdto "nub.ac.bd/transport/pkg/dto"
	"nub.ac.bd/transport/pkg/sanitize"
)

// ManagerLookup answers who may act on a bus.
type ManagerLookup interface {
	IsBusManager(ctx context.Context, userID, busID uint) (bool, error)
	GetBusManagerByUserAndBus(ctx context.Context, userID, busID uint) (*entity.BusManager, error)
}

type JourneyService interface {
	StartJourney(ctx context.Context, req dto.StartJourneyRequest, userID uint) (*entity.BusJourney, error)
	EndJourney(ctx context.Context, journeyID uint, req dto.EndJourneyRequest, userID uint) (*entity.BusJourney, error)
	GetAllJourneys(ctx context.Context, filter dto.JourneyFilter) ([]*entity.BusJourney, int64, error)
	GetBusJourneys(ctx context.Context, busID uint, filter dto.JourneyFilter) ([]*entity.BusJourney, int64, error)
	GetActiveJourneys(ctx context.Context) ([]*entity.BusJourney, error)

	CreateCheckIn(ctx context.Context, journeyID uint, req dto.CreateCheckInRequest, userID uint) (*entity.BusJourneyCheckIn, error)
	UpdateCheckIn(ctx context.Context, checkInID uint, req dto.UpdateCheckInRequest, userID uint) (*entity.BusJourneyCheckIn, error)
	GetJourneyCheckIns(ctx context.Context, journeyID uint, filter dto.CheckInFilter) ([]*entity.BusJourneyCheckIn, error)

	GetBusLocation(ctx context.Context, journeyID uint) (*dto.BusLocation, error)
	GetAllActiveBusLocations(ctx context.Context) ([]dto.BusLocation, error)
}

type journeyService struct {
	repo        repository.JourneyRepository
	checkInRepo repository.CheckInRepository
	busRepo     busRepo.BusRepository
	routeRepo   scheduleRepo.RouteRepository
	stopRepo    scheduleRepo.StopRepository
	managers    ManagerLookup
	publisher   feed.Publisher
	now         func() time.Time
}

func NewJourneyService(
	repo repository.JourneyRepository,
	checkInRepo repository.CheckInRepository,
	busRepo busRepo.BusRepository,
	routeRepo scheduleRepo.RouteRepository,
	stopRepo scheduleRepo.StopRepository,
	managers ManagerLookup,
	publisher feed.Publisher,
) JourneyService {
	return &journeyService{
		repo:        repo,
		checkInRepo: checkInRepo,
		busRepo:     busRepo,
		routeRepo:   routeRepo,
		stopRepo:    stopRepo,
		managers:    managers,
		publisher:   publisher,
		now:         time.Now,
	}
}

func (s *journeyService) findJourney(ctx context.Context, id uint) (*entity.BusJourney, error) {
	journey, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Journey with ID %d not found", id)
		}
		return nil, apperror.Internal(err)
	}
	return journey, nil
}

// StartJourney checks run in a fixed order: bus, route, off day, manager,
// then the single active journey rule.
func (s *journeyService) StartJourney(ctx context.Context, req dto.StartJourneyRequest, userID uint) (*entity.BusJourney, error) {
	bus, err := s.busRepo.FindByID(ctx, req.BusID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.BadRequest("Bus with ID %d not found", req.BusID)
		}
		return nil, apperror.Internal(err)
	}

	route, err := s.routeRepo.FindByID(ctx, req.RouteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.BadRequest("Route with ID %d not found", req.RouteID)
		}
		return nil, apperror.Internal(err)
	}

	now := s.now()
	if bus.IsOffDay(int(now.Weekday())) {
		return nil, apperror.BadRequest("Cannot start journey: Bus is on its off day")
	}

	manager, err := s.managers.GetBusManagerByUserAndBus(ctx, userID, bus.ID)
	if err != nil {
		return nil, err
	}
	if manager.ID != req.ManagerID {
		return nil, apperror.BadRequest("Manager ID mismatch. The provided manager ID does not match your assigned manager role.")
	}

	active, err := s.repo.FindActiveByBus(ctx, bus.ID)
	if err == nil {
		return nil, apperror.BadRequest("Bus already has an active journey (ID: %d)", active.ID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Internal(err)
	}

	journey := &entity.BusJourney{
		BusID:          bus.ID,
		RouteID:        route.ID,
		ManagerID:      manager.ID,
		StartTime:      now,
		StartLatitude:  *req.Latitude,
		StartLongitude: *req.Longitude,
		Status:         entity.JourneyStatusInProgress,
		Notes:          sanitize.Ptr(req.Notes),
	}

	if err := s.repo.CreateExclusive(ctx, journey); err != nil {
		return nil, s.startError(ctx, bus.ID, err)
	}

	journey.Bus = bus
	journey.Route = route
	journey.Manager = manager
	s.publisher.PublishLocation(ctx, locationOf(journey, nil))
	return journey, nil
}

// startError maps a failed insert. The lock and the partial unique index
// both surface a concurrent start as the same client error.
func (s *journeyService) startError(ctx context.Context, busID uint, err error) error {
	var activeErr *repository.ActiveJourneyError
	if errors.As(err, &activeErr) {
		return apperror.BadRequest("Bus already has an active journey (ID: %d)", activeErr.JourneyID)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		if active, findErr := s.repo.FindActiveByBus(ctx, busID); findErr == nil {
			return apperror.BadRequest("Bus already has an active journey (ID: %d)", active.ID)
		}
		return apperror.BadRequest("Bus already has an active journey")
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.BadRequest("Bus with ID %d not found", busID)
	}
	return apperror.Internal(err)
}

func (s *journeyService) EndJourney(ctx context.Context, journeyID uint, req dto.EndJourneyRequest, userID uint) (*entity.BusJourney, error) {
	journey, err := s.findJourney(ctx, journeyID)
	if err != nil {
		return nil, err
	}

	if !journey.IsInProgress() {
		return nil, apperror.BadRequest("Journey is already %s", journey.Status)
	}

	if journey.Manager == nil || journey.Manager.UserID != userID {
		return nil, apperror.Forbidden("Only the manager who started this journey can end it")
	}

	now := s.now()
	journey.EndTime = &now
	journey.EndLatitude = req.Latitude
	journey.EndLongitude = req.Longitude
	journey.Status = req.Status

	if endNotes := sanitize.Ptr(req.Notes); endNotes != nil {
		notes := ""
		if journey.Notes != nil {
			notes = *journey.Notes
		}
		notes += "\nEnd notes: " + *endNotes
		journey.Notes = &notes
	}

	finished, err := s.repo.Finish(ctx, journey)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !finished {
		current, err := s.findJourney(ctx, journeyID)
		if err != nil {
			return nil, err
		}
		return nil, apperror.BadRequest("Journey is already %s", current.Status)
	}

	if latest, err := s.latestCheckIn(ctx, journey.ID); err == nil {
		s.publisher.PublishLocation(ctx, locationOf(journey, latest))
	}
	return journey, nil
}

func (s *journeyService) journeyQuery(filter dto.JourneyFilter) (repository.JourneyQuery, error) {
	q := repository.JourneyQuery{
		BusID:     filter.BusID,
		RouteID:   filter.RouteID,
		ManagerID: filter.ManagerID,
		Status:    filter.Status,
	}

	from, to, ok, err := pkgdto.ResolveDateRange(filter.StartDateFrom, filter.StartDateTo, s.now())
	if err != nil {
		return q, err
	}
	if ok {
		q.StartFrom = &from
		q.StartTo = &to
	}

	page := filter.Pagination.Normalize()
	q.Limit = page.Limit
	q.Offset = page.Offset()
	return q, nil
}

func (s *journeyService) GetAllJourneys(ctx context.Context, filter dto.JourneyFilter) ([]*entity.BusJourney, int64, error) {
	q, err := s.journeyQuery(filter)
	if err != nil {
		return nil, 0, err
	}

	journeys, total, err := s.repo.FindAll(ctx, q)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return journeys, total, nil
}

func (s *journeyService) GetBusJourneys(ctx context.Context, busID uint, filter dto.JourneyFilter) ([]*entity.BusJourney, int64, error) {
	if _, err := s.busRepo.FindByID(ctx, busID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, apperror.NotFound("Bus with ID %d not found", busID)
		}
		return nil, 0, apperror.Internal(err)
	}

	filter.BusID = &busID
	return s.GetAllJourneys(ctx, filter)
}

func (s *journeyService) GetActiveJourneys(ctx context.Context) ([]*entity.BusJourney, error) {
	journeys, err := s.repo.FindActive(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return journeys, nil
}
