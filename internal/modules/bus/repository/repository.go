package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"nub.ac.bd/transport/internal/entity"
	"nub.ac.bd/transport/internal/modules/bus/dto"
)

type BusRepository interface {
	Create(ctx context.Context, bus *entity.Bus) error
	FindByID(ctx context.Context, id uint) (*entity.Bus, error)
	FindByIDWithManagers(ctx context.Context, id uint) (*entity.Bus, error)
	FindAll(ctx context.Context, filter dto.BusFilter) ([]*entity.Bus, int64, error)
	Update(ctx context.Context, bus *entity.Bus) error
	Delete(ctx context.Context, id uint) error
}

type busRepository struct {
	db *gorm.DB
}

func NewBusRepository(db *gorm.DB) BusRepository {
	return &busRepository{db: db}
}

func (r *busRepository) Create(ctx context.Context, bus *entity.Bus) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(bus).Error
}

func (r *busRepository) FindByID(ctx context.Context, id uint) (*entity.Bus, error) {
	var bus entity.Bus
	if err := r.db.WithContext(ctx).First(&bus, id).Error; err != nil {
		return nil, err
	}
	return &bus, nil
}

func (r *busRepository) FindByIDWithManagers(ctx context.Context, id uint) (*entity.Bus, error) {
	var bus entity.Bus
	if err := r.db.WithContext(ctx).
		Preload("Managers.User").
		First(&bus, id).Error; err != nil {
		return nil, err
	}
	return &bus, nil
}

func (r *busRepository) FindAll(ctx context.Context, filter dto.BusFilter) ([]*entity.Bus, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Bus{})

	if filter.RegistrationNumber != "" {
		query = query.Where("registration_number LIKE ?", "%"+filter.RegistrationNumber+"%")
	}
	if filter.Model != "" {
		query = query.Where("model LIKE ?", "%"+filter.Model+"%")
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Pagination.Normalize()
	var buses []*entity.Bus
	if err := query.
		Preload("Managers.User").
		Order("id ASC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&buses).Error; err != nil {
		return nil, 0, err
	}
	return buses, total, nil
}

func (r *busRepository) Update(ctx context.Context, bus *entity.Bus) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(bus).Error
}

func (r *busRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.Bus{}, id).Error
}
