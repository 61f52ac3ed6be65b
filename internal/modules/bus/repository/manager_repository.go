package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"nub.ac.bd/transport/internal/entity"
)

type ManagerRepository interface {
	Create(ctx context.Context, manager *entity.BusManager) error
	FindByID(ctx context.Context, id uint) (*entity.BusManager, error)
	FindActiveByUserAndBus(ctx context.Context, userID, busID uint) (*entity.BusManager, error)
	FindByBus(ctx context.Context, busID uint) ([]*entity.BusManager, error)
	Deactivate(ctx context.Context, id uint) error
}

type managerRepository struct {
	db *gorm.DB
}

func NewManagerRepository(db *gorm.DB) ManagerRepository {
	return &managerRepository{db: db}
}

func (r *managerRepository) Create(ctx context.Context, manager *entity.BusManager) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(manager).Error
}

func (r *managerRepository) FindByID(ctx context.Context, id uint) (*entity.BusManager, error) {
	var manager entity.BusManager
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Bus").
		First(&manager, id).Error; err != nil {
		return nil, err
	}
	return &manager, nil
}

func (r *managerRepository) FindActiveByUserAndBus(ctx context.Context, userID, busID uint) (*entity.BusManager, error) {
	var manager entity.BusManager
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ? AND bus_id = ? AND is_active = ?", userID, busID, true).
		Order("assigned_at DESC").
		First(&manager).Error; err != nil {
		return nil, err
	}
	return &manager, nil
}

func (r *managerRepository) FindByBus(ctx context.Context, busID uint) ([]*entity.BusManager, error) {
	var managers []*entity.BusManager
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("bus_id = ?", busID).
		Order("assigned_at DESC").
		Find(&managers).Error; err != nil {
		return nil, err
	}
	return managers, nil
}

func (r *managerRepository) Deactivate(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&entity.BusManager{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}
