package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"nub.ac.bd/transport/internal/entity"
)

type RouteRepository interface {
	Create(ctx context.Context, route *entity.BusRoute) error
	CreateWithStops(ctx context.Context, route *entity.BusRoute, stops []*entity.BusStop) error
	FindByID(ctx context.Context, id uint) (*entity.BusRoute, error)
	FindByIDWithDetails(ctx context.Context, id uint) (*entity.BusRoute, error)
	FindAll(ctx context.Context) ([]*entity.BusRoute, error)
	Update(ctx context.Context, route *entity.BusRoute) error
	Delete(ctx context.Context, id uint) error
}

type routeRepository struct {
	db *gorm.DB
}

func NewRouteRepository(db *gorm.DB) RouteRepository {
	return &routeRepository{db: db}
}

func orderedStops(db *gorm.DB) *gorm.DB {
	return db.Order("sequence ASC, id ASC")
}

func (r *routeRepository) Create(ctx context.Context, route *entity.BusRoute) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(route).Error
}

func (r *routeRepository) CreateWithStops(ctx context.Context, route *entity.BusRoute, stops []*entity.BusStop) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(route).Error; err != nil {
			return err
		}
		for _, stop := range stops {
			stop.RouteID = route.ID
			if err := tx.Omit(clause.Associations).Create(stop).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *routeRepository) FindByID(ctx context.Context, id uint) (*entity.BusRoute, error) {
	var route entity.BusRoute
	if err := r.db.WithContext(ctx).First(&route, id).Error; err != nil {
		return nil, err
	}
	return &route, nil
}

func (r *routeRepository) FindByIDWithDetails(ctx context.Context, id uint) (*entity.BusRoute, error) {
	var route entity.BusRoute
	if err := r.db.WithContext(ctx).
		Preload("Stops", orderedStops).
		Preload("Schedules").
		First(&route, id).Error; err != nil {
		return nil, err
	}
	return &route, nil
}

func (r *routeRepository) FindAll(ctx context.Context) ([]*entity.BusRoute, error) {
	var routes []*entity.BusRoute
	if err := r.db.WithContext(ctx).
		Preload("Stops", orderedStops).
		Order("id ASC").
		Find(&routes).Error; err != nil {
		return nil, err
	}
	return routes, nil
}

func (r *routeRepository) Update(ctx context.Context, route *entity.BusRoute) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(route).Error
}

func (r *routeRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.BusRoute{}, id).Error
}
