package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"nub.ac.bd/transport/internal/entity"
	"nub.ac.bd/transport/internal/modules/schedule/dto"
)

type ScheduleRepository interface {
	Create(ctx context.Context, schedule *entity.BusSchedule) error
	FindByID(ctx context.Context, id uint) (*entity.BusSchedule, error)
	FindAll(ctx context.Context, filter dto.ScheduleFilter) ([]*entity.BusSchedule, error)
	FindForDay(ctx context.Context, weekday int, filter dto.TodayFilter) ([]*entity.BusSchedule, error)
	CountByRoute(ctx context.Context, routeID uint) (int64, error)
	Update(ctx context.Context, schedule *entity.BusSchedule) error
	Delete(ctx context.Context, id uint) error
}

type scheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) ScheduleRepository {
	return &scheduleRepository{db: db}
}

func (r *scheduleRepository) Create(ctx context.Context, schedule *entity.BusSchedule) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(schedule).Error
}

func (r *scheduleRepository) FindByID(ctx context.Context, id uint) (*entity.BusSchedule, error) {
	var schedule entity.BusSchedule
	if err := r.db.WithContext(ctx).
		Preload("Route").
		Preload("Bus").
		First(&schedule, id).Error; err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *scheduleRepository) FindAll(ctx context.Context, filter dto.ScheduleFilter) ([]*entity.BusSchedule, error) {
	query := r.db.WithContext(ctx).Preload("Route").Preload("Bus")

	if filter.RouteID != nil {
		query = query.Where("route_id = ?", *filter.RouteID)
	}
	if filter.BusID != nil {
		query = query.Where("bus_id = ?", *filter.BusID)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.DayOfWeek != nil {
		query = query.Where("? = ANY(operating_days)", *filter.DayOfWeek)
	}

	var schedules []*entity.BusSchedule
	if err := query.Order("departure_time ASC, id ASC").Find(&schedules).Error; err != nil {
		return nil, err
	}
	return schedules, nil
}

func (r *scheduleRepository) FindForDay(ctx context.Context, weekday int, filter dto.TodayFilter) ([]*entity.BusSchedule, error) {
	query := r.db.WithContext(ctx).
		Preload("Route").
		Preload("Route.Stops", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC, id ASC")
		}).
		Preload("Bus").
		Where("is_active = ?", true).
		Where("? = ANY(operating_days)", weekday)

	if filter.BusID != nil {
		query = query.Where("bus_id = ?", *filter.BusID)
	}
	if filter.RouteID != nil {
		query = query.Where("route_id = ?", *filter.RouteID)
	}

	var schedules []*entity.BusSchedule
	if err := query.Order("departure_time ASC").Find(&schedules).Error; err != nil {
		return nil, err
	}
	return schedules, nil
}

func (r *scheduleRepository) CountByRoute(ctx context.Context, routeID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.BusSchedule{}).
		Where("route_id = ?", routeID).
		Count(&count).Error
	return count, err
}

func (r *scheduleRepository) Update(ctx context.Context, schedule *entity.BusSchedule) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(schedule).Error
}

func (r *scheduleRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.BusSchedule{}, id).Error
}
