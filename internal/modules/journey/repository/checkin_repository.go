package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"nub.ac.bd/transport/internal/entity"
)

type CheckInQuery struct {
	JourneyID    uint
	BusStopID    *uint
	LocationName string
	From         *time.Time
	To           *time.Time
}

type CheckInRepository interface {
	Create(ctx context.Context, checkIn *entity.BusJourneyCheckIn) error
	FindByID(ctx context.Context, id uint) (*entity.BusJourneyCheckIn, error)
	FindByJourney(ctx context.Context, q CheckInQuery) ([]*entity.BusJourneyCheckIn, error)
	FindLatest(ctx context.Context, journeyID uint) (*entity.BusJourneyCheckIn, error)
	Update(ctx context.Context, checkIn *entity.BusJourneyCheckIn) error
}

type checkInRepository struct {
	db *gorm.DB
}

func NewCheckInRepository(db *gorm.DB) CheckInRepository {
	return &checkInRepository{db: db}
}

func (r *checkInRepository) Create(ctx context.Context, checkIn *entity.BusJourneyCheckIn) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(checkIn).Error
}

func (r *checkInRepository) FindByID(ctx context.Context, id uint) (*entity.BusJourneyCheckIn, error) {
	var checkIn entity.BusJourneyCheckIn
	if err := r.db.WithContext(ctx).
		Preload("Journey.Manager").
		Preload("BusStop").
		First(&checkIn, id).Error; err != nil {
		return nil, err
	}
	return &checkIn, nil
}

func (r *checkInRepository) FindByJourney(ctx context.Context, q CheckInQuery) ([]*entity.BusJourneyCheckIn, error) {
	query := r.db.WithContext(ctx).
		Preload("BusStop").
		Where("journey_id = ?", q.JourneyID)

	if q.BusStopID != nil {
		query = query.Where("bus_stop_id = ?", *q.BusStopID)
	}
	if q.LocationName != "" {
		query = query.Where("location_name LIKE ?", "%"+q.LocationName+"%")
	}
	if q.From != nil && q.To != nil {
		query = query.Where("check_in_time BETWEEN ? AND ?", *q.From, *q.To)
	}

	var checkIns []*entity.BusJourneyCheckIn
	if err := query.Order("check_in_time ASC, id ASC").Find(&checkIns).Error; err != nil {
		return nil, err
	}
	return checkIns, nil
}

// FindLatest breaks check_in_time ties by the higher id.
func (r *checkInRepository) FindLatest(ctx context.Context, journeyID uint) (*entity.BusJourneyCheckIn, error) {
	var checkIn entity.BusJourneyCheckIn
	if err := r.db.WithContext(ctx).
		Where("journey_id = ?", journeyID).
		Order("check_in_time DESC, id DESC").
		First(&checkIn).Error; err != nil {
		return nil, err
	}
	return &checkIn, nil
}

func (r *checkInRepository) Update(ctx context.Context, checkIn *entity.BusJourneyCheckIn) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(checkIn).Error
}
