package dto

import (
	"time"

	"nub.ac.bd/transport/pkg/dto"
)

type StartJourneyRequest struct {
	BusID     uint     `json:"bus_id" binding:"required"`
	RouteID   uint     `json:"route_id" binding:"required"`
	ManagerID uint     `json:"manager_id" binding:"required"`
	Latitude  *float64 `json:"latitude" binding:"required,latitude"`
	Longitude *float64 `json:"longitude" binding:"required,longitude"`
	Notes     *string  `json:"notes"`
}

type EndJourneyRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required,latitude"`
	Longitude *float64 `json:"longitude" binding:"required,longitude"`
	Status    string   `json:"status" binding:"required,oneof=completed cancelled"`
	Notes     *string  `json:"notes"`
}

type CreateCheckInRequest struct {
	BusStopID    *uint    `json:"bus_stop_id"`
	Latitude     *float64 `json:"latitude" binding:"required,latitude"`
	Longitude    *float64 `json:"longitude" binding:"required,longitude"`
	LocationName *string  `json:"location_name" binding:"omitempty,max=255"`
	Notes        *string  `json:"notes"`
}

// UpdateCheckInRequest applies only the fields present in the body. An
// explicit null bus_stop_id detaches the stop.
type UpdateCheckInRequest struct {
	BusStopID    dto.OptionalUint `json:"bus_stop_id"`
	Latitude     *float64         `json:"latitude" binding:"omitempty,latitude"`
	Longitude    *float64         `json:"longitude" binding:"omitempty,longitude"`
	LocationName *string          `json:"location_name" binding:"omitempty,max=255"`
	Notes        *string          `json:"notes"`
}

type JourneyFilter struct {
	BusID         *uint  `form:"bus_id"`
	RouteID       *uint  `form:"route_id"`
	ManagerID     *uint  `form:"manager_id"`
	Status        string `form:"status" binding:"omitempty,oneof=in_progress completed cancelled"`
	StartDateFrom string `form:"start_date_from"`
	StartDateTo   string `form:"start_date_to"`
	dto.Pagination
}

type CheckInFilter struct {
	BusStopID    *uint  `form:"bus_stop_id"`
	LocationName string `form:"location_name"`
	dto.DateRange
}

// BusLocation is the last known position of a bus on a journey.
type BusLocation struct {
	JourneyID          uint      `json:"journey_id"`
	BusID              uint      `json:"bus_id"`
	RegistrationNumber string    `json:"registration_number"`
	Latitude           float64   `json:"latitude"`
	Longitude          float64   `json:"longitude"`
	LastCheckinTime    time.Time `json:"last_checkin_time"`
	JourneyStatus      string    `json:"journey_status"`
	LocationName       *string   `json:"location_name"`
}
