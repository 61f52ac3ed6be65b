package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"nub.ac.bd/transport/internal/entity"
)

type StopRepository interface {
	Create(ctx context.Context, stop *entity.BusStop) error
	FindByID(ctx context.Context, id uint) (*entity.BusStop, error)
	FindByIDs(ctx context.Context, ids []uint) ([]*entity.BusStop, error)
	FindAll(ctx context.Context) ([]*entity.BusStop, error)
	FindByRoute(ctx context.Context, routeID uint) ([]*entity.BusStop, error)
	Search(ctx context.Context, q string, limit int) ([]*entity.BusStop, error)
	Update(ctx context.Context, stop *entity.BusStop) error
	Delete(ctx context.Context, id uint) error
}

type stopRepository struct {
	db *gorm.DB
}

func NewStopRepository(db *gorm.DB) StopRepository {
	return &stopRepository{db: db}
}

func (r *stopRepository) Create(ctx context.Context, stop *entity.BusStop) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(stop).Error
}

func (r *stopRepository) FindByID(ctx context.Context, id uint) (*entity.BusStop, error) {
	var stop entity.BusStop
	if err := r.db.WithContext(ctx).Preload("Route").First(&stop, id).Error; err != nil {
		return nil, err
	}
	return &stop, nil
}

func (r *stopRepository) FindByIDs(ctx context.Context, ids []uint) ([]*entity.BusStop, error) {
	var stops []*entity.BusStop
	if len(ids) == 0 {
		return stops, nil
	}
	if err := r.db.WithContext(ctx).Preload("Route").Where("id IN ?", ids).Find(&stops).Error; err != nil {
		return nil, err
	}
	return stops, nil
}

func (r *stopRepository) FindAll(ctx context.Context) ([]*entity.BusStop, error) {
	var stops []*entity.BusStop
	if err := r.db.WithContext(ctx).Preload("Route").Order("id ASC").Find(&stops).Error; err != nil {
		return nil, err
	}
	return stops, nil
}

func (r *stopRepository) FindByRoute(ctx context.Context, routeID uint) ([]*entity.BusStop, error) {
	var stops []*entity.BusStop
	if err := r.db.WithContext(ctx).
		Where("route_id = ?", routeID).
		Order("sequence ASC, id ASC").
		Find(&stops).Error; err != nil {
		return nil, err
	}
	return stops, nil
}

func (r *stopRepository) Search(ctx context.Context, q string, limit int) ([]*entity.BusStop, error) {
	var stops []*entity.BusStop
	if err := r.db.WithContext(ctx).
		Preload("Route").
		Where("name LIKE ?", "%"+q+"%").
		Order("name ASC").
		Limit(limit).
		Find(&stops).Error; err != nil {
		return nil, err
	}
	return stops, nil
}

func (r *stopRepository) Update(ctx context.Context, stop *entity.BusStop) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(stop).Error
}

func (r *stopRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.BusStop{}, id).Error
}
