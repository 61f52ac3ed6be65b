package entity

import "github.com/lib/pq"

// AllWeekdays is the operating-day set used when a schedule names none.
var AllWeekdays = pq.Int64Array{0, 1, 2, 3, 4, 5, 6}

type BusSchedule struct {
	Base
	RouteID       uint          `gorm:"not null;index" json:"route_id"`
	Route         *BusRoute     `json:"route,omitempty"`
	BusID         *uint         `gorm:"index" json:"bus_id"`
	Bus           *Bus          `json:"bus,omitempty"`
	DepartureTime TimeOfDay     `gorm:"type:time;not null" json:"departure_time"`
	ArrivalTime   TimeOfDay     `gorm:"type:time;not null" json:"arrival_time"`
	OperatingDays pq.Int64Array `gorm:"type:int[];not null" json:"operating_days"`
	IsActive      bool          `gorm:"not null" json:"is_active"`
}
