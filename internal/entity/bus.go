package entity

import (
	"slices"

	"github.com/lib/pq"
)

const (
	BusStatusActive      = "active"
	BusStatusMaintenance = "maintenance"
	BusStatusInactive    = "inactive"
)

type Bus struct {
	Base
	RegistrationNumber string        `gorm:"size:50;uniqueIndex;not null" json:"registration_number"`
	Model              string        `gorm:"size:100;not null" json:"model"`
	Capacity           int           `gorm:"not null" json:"capacity"`
	YearOfManufacture  *int          `json:"year_of_manufacture"`
	Status             string        `gorm:"size:20;not null;default:active" json:"status"`
	Notes              *string       `gorm:"type:text" json:"notes"`
	OffDays            pq.Int64Array `gorm:"type:int[];not null;default:'{}'" json:"off_days"`
	Managers           []BusManager  `gorm:"foreignKey:BusID" json:"managers,omitempty"`
	Journeys           []BusJourney  `gorm:"foreignKey:BusID" json:"journeys,omitempty"`
	Schedules          []BusSchedule `gorm:"foreignKey:BusID;constraint:OnDelete:SET NULL" json:"schedules,omitempty"`
}

// IsOffDay reports whether weekday (0 = Sunday) is one of the bus's off days.
func (b *Bus) IsOffDay(weekday int) bool {
	return slices.Contains(b.OffDays, int64(weekday))
}
