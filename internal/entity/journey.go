package entity

import "time"

const (
	JourneyStatusInProgress = "in_progress"
	JourneyStatusCompleted  = "completed"
	JourneyStatusCancelled  = "cancelled"
)

// BusJourney is one trip of a bus. The partial unique index keeps a bus at a
// single in_progress journey.
type BusJourney struct {
	Base
	BusID          uint                `gorm:"not null;index;uniqueIndex:idx_bus_journeys_one_active,where:status = 'in_progress'" json:"bus_id"`
	Bus            *Bus                `json:"bus,omitempty"`
	RouteID        uint                `gorm:"not null;index" json:"route_id"`
	Route          *BusRoute           `json:"route,omitempty"`
	ManagerID      uint                `gorm:"not null;index" json:"manager_id"`
	Manager        *BusManager         `json:"manager,omitempty"`
	StartTime      time.Time           `gorm:"not null" json:"start_time"`
	StartLatitude  float64             `gorm:"not null" json:"start_latitude"`
	StartLongitude float64             `gorm:"not null" json:"start_longitude"`
	EndTime        *time.Time          `json:"end_time"`
	EndLatitude    *float64            `json:"end_latitude"`
	EndLongitude   *float64            `json:"end_longitude"`
	Status         string              `gorm:"size:20;not null;default:in_progress;index" json:"status"`
	Notes          *string             `gorm:"type:text" json:"notes"`
	CheckIns       []BusJourneyCheckIn `gorm:"foreignKey:JourneyID" json:"check_ins,omitempty"`
}

func (j *BusJourney) IsInProgress() bool {
	return j.Status == JourneyStatusInProgress
}

type BusJourneyCheckIn struct {
	Base
	JourneyID    uint        `gorm:"not null;index" json:"journey_id"`
	Journey      *BusJourney `json:"journey,omitempty"`
	BusStopID    *uint       `gorm:"index" json:"bus_stop_id"`
	BusStop      *BusStop    `gorm:"constraint:OnDelete:SET NULL" json:"bus_stop,omitempty"`
	CheckInTime  time.Time   `gorm:"not null;index" json:"check_in_time"`
	Latitude     float64     `gorm:"not null" json:"latitude"`
	Longitude    float64     `gorm:"not null" json:"longitude"`
	LocationName *string     `gorm:"size:255" json:"location_name"`
	Notes        *string     `gorm:"type:text" json:"notes"`
}
