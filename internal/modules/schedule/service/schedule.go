package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"nub.ac.bd/transport/internal/entity"
	busRepo "nub.ac.bd/transport/internal/modules/bus/repository"
	"nub.ac.bd/transport/internal/modules/schedule/dto"
	"nub.ac.bd/transport/internal/modules/schedule/repository"
	"nub.ac.bd/transport/pkg/apperror"
	pkgdto "nub.ac.bd/transport/pkg/dto"
)

type ScheduleService interface {
	GetAllSchedules(ctx context.Context, filter dto.ScheduleFilter) ([]*entity.BusSchedule, error)
	GetScheduleByID(ctx context.Context, id uint) (*entity.BusSchedule, error)
	CreateSchedule(ctx context.Context, req dto.CreateScheduleRequest) (*entity.BusSchedule, error)
	UpdateSchedule(ctx context.Context, id uint, req dto.UpdateScheduleRequest) (*entity.BusSchedule, error)
	DeleteSchedule(ctx context.Context, id uint) error
	GetTodaySchedules(ctx context.Context, filter dto.TodayFilter) ([]*entity.BusSchedule, error)
}

type scheduleService struct {
	repo      repository.ScheduleRepository
	routeRepo repository.RouteRepository
	busRepo   busRepo.BusRepository
	now       func() time.Time
}

func NewScheduleService(repo repository.ScheduleRepository, routeRepo repository.RouteRepository, busRepo busRepo.BusRepository) ScheduleService {
	return &scheduleService{
		repo:      repo,
		routeRepo: routeRepo,
		busRepo:   busRepo,
		now:       time.Now,
	}
}

func (s *scheduleService) GetAllSchedules(ctx context.Context, filter dto.ScheduleFilter) ([]*entity.BusSchedule, error) {
	schedules, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return schedules, nil
}

func (s *scheduleService) GetScheduleByID(ctx context.Context, id uint) (*entity.BusSchedule, error) {
	schedule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Schedule with ID %d not found", id)
		}
		return nil, apperror.Internal(err)
	}
	return schedule, nil
}

func (s *scheduleService) findRoute(ctx context.Context, id uint) (*entity.BusRoute, error) {
	route, err := s.routeRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.BadRequest("Route with ID %d not found", id)
		}
		return nil, apperror.Internal(err)
	}
	return route, nil
}

// findAssignableBus only checks status at assignment time; a bus that later
// leaves service keeps its schedules.
func (s *scheduleService) findAssignableBus(ctx context.Context, id uint) (*entity.Bus, error) {
	bus, err := s.busRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.BadRequest("Bus with ID %d not found", id)
		}
		return nil, apperror.Internal(err)
	}
	if bus.Status != entity.BusStatusActive {
		return nil, apperror.BadRequest("Cannot assign schedule to bus with ID %d: Bus is %s", id, bus.Status)
	}
	return bus, nil
}

func (s *scheduleService) CreateSchedule(ctx context.Context, req dto.CreateScheduleRequest) (*entity.BusSchedule, error) {
	route, err := s.findRoute(ctx, req.RouteID)
	if err != nil {
		return nil, err
	}

	departure, err := entity.ParseTimeOfDay(req.DepartureTime)
	if err != nil {
		return nil, err
	}
	arrival, err := entity.ParseTimeOfDay(req.ArrivalTime)
	if err != nil {
		return nil, err
	}

	schedule := &entity.BusSchedule{
		RouteID:       route.ID,
		Route:         route,
		DepartureTime: departure,
		ArrivalTime:   arrival,
		OperatingDays: append(pq.Int64Array{}, entity.AllWeekdays...),
		IsActive:      true,
	}
	if len(req.OperatingDays) > 0 {
		days, err := pkgdto.NormalizeWeekdays(req.OperatingDays, "Operating days")
		if err != nil {
			return nil, err
		}
		schedule.OperatingDays = days
	}
	if req.IsActive != nil {
		schedule.IsActive = *req.IsActive
	}

	if req.BusID != nil {
		bus, err := s.findAssignableBus(ctx, *req.BusID)
		if err != nil {
			return nil, err
		}
		schedule.BusID = &bus.ID
		schedule.Bus = bus
	}

	if err := s.repo.Create(ctx, schedule); err != nil {
		return nil, apperror.Internal(err)
	}
	return schedule, nil
}

func (s *scheduleService) UpdateSchedule(ctx context.Context, id uint, req dto.UpdateScheduleRequest) (*entity.BusSchedule, error) {
	schedule, err := s.GetScheduleByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.RouteID != nil {
		route, err := s.findRoute(ctx, *req.RouteID)
		if err != nil {
			return nil, err
		}
		schedule.RouteID = route.ID
		schedule.Route = route
	}

	if req.BusID.Set {
		if req.BusID.Value == nil {
			schedule.BusID = nil
			schedule.Bus = nil
		} else {
			bus, err := s.findAssignableBus(ctx, *req.BusID.Value)
			if err != nil {
				return nil, err
			}
			schedule.BusID = &bus.ID
			schedule.Bus = bus
		}
	}

	if req.DepartureTime != nil {
		t, err := entity.ParseTimeOfDay(*req.DepartureTime)
		if err != nil {
			return nil, err
		}
		schedule.DepartureTime = t
	}
	if req.ArrivalTime != nil {
		t, err := entity.ParseTimeOfDay(*req.ArrivalTime)
		if err != nil {
			return nil, err
		}
		schedule.ArrivalTime = t
	}
	if req.OperatingDays != nil {
		days, err := pkgdto.NormalizeWeekdays(req.OperatingDays, "Operating days")
		if err != nil {
			return nil, err
		}
		schedule.OperatingDays = days
	}
	if req.IsActive != nil {
		schedule.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, schedule); err != nil {
		return nil, apperror.Internal(err)
	}
	return schedule, nil
}

func (s *scheduleService) DeleteSchedule(ctx context.Context, id uint) error {
	if _, err := s.GetScheduleByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

// GetTodaySchedules uses the server's local weekday.
func (s *scheduleService) GetTodaySchedules(ctx context.Context, filter dto.TodayFilter) ([]*entity.BusSchedule, error) {
	weekday := int(s.now().Weekday())
	schedules, err := s.repo.FindForDay(ctx, weekday, filter)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return schedules, nil
}
