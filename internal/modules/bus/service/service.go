package bus

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"nub.ac.bd/transport/internal/entity"
	"nub.ac.bd/transport/internal/modules/bus/dto"
	"nub.ac.bd/transport/internal/modules/bus/repository"
	scheduleRepo "nub.ac.bd/transport/internal/modules/schedule/repository"
	userRepo "nub.ac.bd/transport/internal/modules/user/repository"
	"nub.ac.bd/transport/pkg/apperror"
	pkgdto "nub.ac.bd/transport/pkg/dto"
	"nub.ac.bd/transport/pkg/sanitize"
)

type BusService interface {
	GetAllBuses(ctx context.Context, filter dto.BusFilter) ([]*entity.Bus, int64, error)
	GetBusByID(ctx context.Context, id uint) (*entity.Bus, error)
	CreateBus(ctx context.Context, req dto.CreateBusRequest) (*entity.Bus, error)
	UpdateBus(ctx context.Context, id uint, req dto.UpdateBusRequest) (*entity.Bus, error)
	DeleteBus(ctx context.Context, id uint) error
	UpdateBusOffDays(ctx context.Context, busID uint, days []int) (*entity.Bus, error)

	AssignManager(ctx context.Context, req dto.AssignManagerRequest) (*entity.BusManager, error)
	UnassignManager(ctx context.Context, id uint) (*entity.BusManager, error)
	GetBusManagers(ctx context.Context, busID uint) ([]*entity.BusManager, error)
	IsBusManager(ctx context.Context, userID, busID uint) (bool, error)
	GetBusManagerByUserAndBus(ctx context.Context, userID, busID uint) (*entity.BusManager, error)
}

type busService struct {
	repo        repository.BusRepository
	managerRepo repository.ManagerRepository
	routeRepo   scheduleRepo.RouteRepository
	userRepo    userRepo.UserRepository
	now         func() time.Time
}

func NewBusService(repo repository.BusRepository, managerRepo repository.ManagerRepository, routeRepo scheduleRepo.RouteRepository, userRepo userRepo.UserRepository) BusService {
	return &busService{
		repo:        repo,
		managerRepo: managerRepo,
		routeRepo:   routeRepo,
		userRepo:    userRepo,
		now:         time.Now,
	}
}

// NormalizeOffDays validates weekday numbers and removes duplicates,
// keeping first-occurrence order.
func NormalizeOffDays(days []int) (pq.Int64Array, error) {
	return pkgdto.NormalizeWeekdays(days, "Off days")
}

func (s *busService) GetAllBuses(ctx context.Context, filter dto.BusFilter) ([]*entity.Bus, int64, error) {
	buses, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return buses, total, nil
}

func (s *busService) GetBusByID(ctx context.Context, id uint) (*entity.Bus, error) {
	bus, err := s.repo.FindByIDWithManagers(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Bus with ID %d not found", id)
		}
		return nil, apperror.Internal(err)
	}
	return bus, nil
}

// checkLegacyRoute validates a route id sent by older clients. The value is
// not persisted; buses reach routes through schedules.
func (s *busService) checkLegacyRoute(ctx context.Context, routeID *uint) error {
	if routeID == nil {
		return nil
	}
	if _, err := s.routeRepo.FindByID(ctx, *routeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.BadRequest("Route with ID %d not found", *routeID)
		}
		return apperror.Internal(err)
	}
	return nil
}

func (s *busService) saveError(err error, registration string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.BadRequest("Bus with registration number %s already exists", registration)
	}
	return apperror.Internal(err)
}

func (s *busService) CreateBus(ctx context.Context, req dto.CreateBusRequest) (*entity.Bus, error) {
	if err := s.checkLegacyRoute(ctx, req.RouteID); err != nil {
		return nil, err
	}

	offDays, err := NormalizeOffDays(req.OffDays)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = entity.BusStatusActive
	}

	bus := &entity.Bus{
		RegistrationNumber: strings.TrimSpace(req.RegistrationNumber),
		Model:              strings.TrimSpace(req.Model),
		Capacity:           req.Capacity,
		YearOfManufacture:  req.YearOfManufacture,
		Status:             status,
		Notes:              sanitize.Ptr(req.Notes),
		OffDays:            offDays,
	}

	if err := s.repo.Create(ctx, bus); err != nil {
		return nil, s.saveError(err, bus.RegistrationNumber)
	}
	return bus, nil
}

func (s *busService) UpdateBus(ctx context.Context, id uint, req dto.UpdateBusRequest) (*entity.Bus, error) {
	bus, err := s.GetBusByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.checkLegacyRoute(ctx, req.RouteID); err != nil {
		return nil, err
	}

	if req.RegistrationNumber != nil {
		bus.RegistrationNumber = strings.TrimSpace(*req.RegistrationNumber)
	}
	if req.Model != nil {
		bus.Model = strings.TrimSpace(*req.Model)
	}
	if req.Capacity != nil {
		bus.Capacity = *req.Capacity
	}
	if req.YearOfManufacture != nil {
		bus.YearOfManufacture = req.YearOfManufacture
	}
	if req.Status != nil {
		bus.Status = *req.Status
	}
	if req.Notes != nil {
		bus.Notes = sanitize.Ptr(req.Notes)
	}
	if req.OffDays != nil {
		offDays, err := NormalizeOffDays(req.OffDays)
		if err != nil {
			return nil, err
		}
		bus.OffDays = offDays
	}

	if err := s.repo.Update(ctx, bus); err != nil {
		return nil, s.saveError(err, bus.RegistrationNumber)
	}
	return bus, nil
}

func (s *busService) DeleteBus(ctx context.Context, id uint) error {
	if _, err := s.GetBusByID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return apperror.BadRequest("Cannot delete bus with ID %d: it has recorded journeys or manager assignments", id)
		}
		return apperror.Internal(err)
	}
	return nil
}

func (s *busService) UpdateBusOffDays(ctx context.Context, busID uint, days []int) (*entity.Bus, error) {
	bus, err := s.GetBusByID(ctx, busID)
	if err != nil {
		return nil, err
	}

	offDays, err := NormalizeOffDays(days)
	if err != nil {
		return nil, err
	}
	bus.OffDays = offDays

	if err := s.repo.Update(ctx, bus); err != nil {
		return nil, apperror.Internal(err)
	}
	return bus, nil
}

func (s *busService) AssignManager(ctx context.Context, req dto.AssignManagerRequest) (*entity.BusManager, error) {
	if _, err := s.repo.FindByID(ctx, req.BusID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.BadRequest("Bus with ID %d not found", req.BusID)
		}
		return nil, apperror.Internal(err)
	}

	user, err := s.userRepo.FindByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.BadRequest("User with ID %d not found", req.UserID)
		}
		return nil, apperror.Internal(err)
	}

	role := req.Role
	if role == "" {
		role = entity.ManagerRoleDriver
	}

	manager := &entity.BusManager{
		UserID:        user.ID,
		BusID:         req.BusID,
		Role:          role,
		LicenseNumber: req.LicenseNumber,
		AssignedAt:    s.now(),
		IsActive:      true,
		Notes:         sanitize.Ptr(req.Notes),
	}

	if err := s.managerRepo.Create(ctx, manager); err != nil {
		return nil, apperror.Internal(err)
	}
	manager.User = user
	return manager, nil
}

func (s *busService) UnassignManager(ctx context.Context, id uint) (*entity.BusManager, error) {
	manager, err := s.managerRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Manager with ID %d not found", id)
		}
		return nil, apperror.Internal(err)
	}

	if err := s.managerRepo.Deactivate(ctx, id); err != nil {
		return nil, apperror.Internal(err)
	}
	manager.IsActive = false
	return manager, nil
}

func (s *busService) GetBusManagers(ctx context.Context, busID uint) ([]*entity.BusManager, error) {
	if _, err := s.GetBusByID(ctx, busID); err != nil {
		return nil, err
	}

	managers, err := s.managerRepo.FindByBus(ctx, busID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return managers, nil
}

func (s *busService) IsBusManager(ctx context.Context, userID, busID uint) (bool, error) {
	_, err := s.managerRepo.FindActiveByUserAndBus(ctx, userID, busID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, apperror.Internal(err)
	}
	return true, nil
}

func (s *busService) GetBusManagerByUserAndBus(ctx context.Context, userID, busID uint) (*entity.BusManager, error) {
	manager, err := s.managerRepo.FindActiveByUserAndBus(ctx, userID, busID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Unauthorized("User is not an active manager for bus with ID %d", busID)
		}
		return nil, apperror.Internal(err)
	}
	return manager, nil
}
