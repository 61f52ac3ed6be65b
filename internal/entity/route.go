package entity

type BusRoute struct {
	Base
	Name        string        `gorm:"size:100;not null" json:"name"`
	Description *string       `gorm:"type:text" json:"description"`
	Stops       []BusStop     `gorm:"foreignKey:RouteID;constraint:OnDelete:CASCADE" json:"stops,omitempty"`
	Schedules   []BusSchedule `gorm:"foreignKey:RouteID" json:"schedules,omitempty"`
}

type BusStop struct {
	Base
	Name                 string     `gorm:"size:100;not null" json:"name"`
	Latitude             float64    `gorm:"not null" json:"latitude"`
	Longitude            float64    `gorm:"not null" json:"longitude"`
	Sequence             int        `gorm:"not null;default:0" json:"sequence"`
	ScheduledArrivalTime *TimeOfDay `gorm:"type:time" json:"scheduled_arrival_time"`
	RouteID              uint       `gorm:"not null;index" json:"route_id"`
	Route                *BusRoute  `json:"route,omitempty"`
}
