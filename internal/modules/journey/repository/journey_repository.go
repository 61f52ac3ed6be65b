package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"nub.ac.bd/transport/internal/entity"
)

// ActiveJourneyError is returned when a bus already has a journey in progress.
type ActiveJourneyError struct {
	JourneyID uint
}

func (e *ActiveJourneyError) Error() string {
	return fmt.Sprintf("bus already has an active journey (ID: %d)", e.JourneyID)
}

// JourneyQuery holds resolved journey filters. Zero values mean "any".
type JourneyQuery struct {
	BusID     *uint
	RouteID   *uint
	ManagerID *uint
	Status    string
	StartFrom *time.Time
	StartTo   *time.Time
	Limit     int
	Offset    int
}

type JourneyRepository interface {
	CreateExclusive(ctx context.Context, journey *entity.BusJourney) error
	FindByID(ctx context.Context, id uint) (*entity.BusJourney, error)
	FindActiveByBus(ctx context.Context, busID uint) (*entity.BusJourney, error)
	FindAll(ctx context.Context, q JourneyQuery) ([]*entity.BusJourney, int64, error)
	FindActive(ctx context.Context) ([]*entity.BusJourney, error)
	Finish(ctx context.Context, journey *entity.BusJourney) (bool, error)
}

type journeyRepository struct {
	db *gorm.DB
}

func NewJourneyRepository(db *gorm.DB) JourneyRepository {
	return &journeyRepository{db: db}
}

// CreateExclusive inserts an in_progress journey while holding a lock on the
// bus row, so two managers starting the same bus are serialised.
func (r *journeyRepository) CreateExclusive(ctx context.Context, journey *entity.BusJourney) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var bus entity.Bus
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&bus, journey.BusID).Error; err != nil {
			return err
		}

		var active entity.BusJourney
		err := tx.Select("id").
			Where("bus_id = ? AND status = ?", journey.BusID, entity.JourneyStatusInProgress).
			First(&active).Error
		if err == nil {
			return &ActiveJourneyError{JourneyID: active.ID}
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return tx.Omit(clause.Associations).Create(journey).Error
	})
}

func (r *journeyRepository) FindByID(ctx context.Context, id uint) (*entity.BusJourney, error) {
	var journey entity.BusJourney
	if err := r.db.WithContext(ctx).
		Preload("Bus").
		Preload("Route").
		Preload("Manager.User").
		First(&journey, id).Error; err != nil {
		return nil, err
	}
	return &journey, nil
}

func (r *journeyRepository) FindActiveByBus(ctx context.Context, busID uint) (*entity.BusJourney, error) {
	var journey entity.BusJourney
	if err := r.db.WithContext(ctx).
		Where("bus_id = ? AND status = ?", busID, entity.JourneyStatusInProgress).
		First(&journey).Error; err != nil {
		return nil, err
	}
	return &journey, nil
}

func (r *journeyRepository) FindAll(ctx context.Context, q JourneyQuery) ([]*entity.BusJourney, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.BusJourney{})

	if q.BusID != nil {
		query = query.Where("bus_id = ?", *q.BusID)
	}
	if q.RouteID != nil {
		query = query.Where("route_id = ?", *q.RouteID)
	}
	if q.ManagerID != nil {
		query = query.Where("manager_id = ?", *q.ManagerID)
	}
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.StartFrom != nil && q.StartTo != nil {
		query = query.Where("start_time BETWEEN ? AND ?", *q.StartFrom, *q.StartTo)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if q.Limit > 0 {
		query = query.Limit(q.Limit).Offset(q.Offset)
	}

	var journeys []*entity.BusJourney
	if err := query.
		Preload("Bus").
		Preload("Route").
		Preload("Manager.User").
		Order("start_time DESC, id DESC").
		Find(&journeys).Error; err != nil {
		return nil, 0, err
	}
	return journeys, total, nil
}

func (r *journeyRepository) FindActive(ctx context.Context) ([]*entity.BusJourney, error) {
	var journeys []*entity.BusJourney
	if err := r.db.WithContext(ctx).
		Preload("Bus").
		Preload("Route").
		Preload("Manager.User").
		Where("status = ?", entity.JourneyStatusInProgress).
		Order("start_time DESC, id DESC").
		Find(&journeys).Error; err != nil {
		return nil, err
	}
	return journeys, nil
}

// Finish writes the end fields only while the journey is still in progress.
// It reports false when another request ended the journey first.
func (r *journeyRepository) Finish(ctx context.Context, journey *entity.BusJourney) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.BusJourney{}).
		Where("id = ? AND status = ?", journey.ID, entity.JourneyStatusInProgress).
		Updates(map[string]any{
			"end_time":      journey.EndTime,
			"end_latitude":  journey.EndLatitude,
			"end_longitude": journey.EndLongitude,
			"status":        journey.Status,
			"notes":         journey.Notes,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
