package dto

import "nub.ac.bd/transport/pkg/dto"

type CreateRouteRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Description *string `json:"description"`
}

type UpdateRouteRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
}

type RouteWithStopsRequest struct {
	Name        string              `json:"name" binding:"required,max=100"`
	Description *string             `json:"description"`
	Stops       []CreateStopRequest `json:"stops" binding:"dive"`
}

type CreateStopRequest struct {
	Name                 string   `json:"name" binding:"required,max=100"`
	Latitude             *float64 `json:"latitude" binding:"required,latitude"`
	Longitude            *float64 `json:"longitude" binding:"required,longitude"`
	RouteID              uint     `json:"route_id"`
	Sequence             int      `json:"sequence"`
	ScheduledArrivalTime *string  `json:"scheduled_arrival_time"`
}

type UpdateStopRequest struct {
	Name                 *string            `json:"name" binding:"omitempty,min=1,max=100"`
	Latitude             *float64           `json:"latitude" binding:"omitempty,latitude"`
	Longitude            *float64           `json:"longitude" binding:"omitempty,longitude"`
	RouteID              *uint              `json:"route_id"`
	Sequence             *int               `json:"sequence"`
	ScheduledArrivalTime dto.OptionalString `json:"scheduled_arrival_time"`
}

type CreateScheduleRequest struct {
	RouteID       uint    `json:"route_id" binding:"required"`
	BusID         *uint   `json:"bus_id"`
	DepartureTime string  `json:"departure_time" binding:"required"`
	ArrivalTime   string  `json:"arrival_time" binding:"required"`
	OperatingDays []int64 `json:"operating_days" binding:"omitempty,min=1,dive,min=0,max=6"`
	IsActive      *bool   `json:"is_active"`
}

type UpdateScheduleRequest struct {
	RouteID       *uint            `json:"route_id"`
	BusID         dto.OptionalUint `json:"bus_id"`
	DepartureTime *string          `json:"departure_time"`
	ArrivalTime   *string          `json:"arrival_time"`
	OperatingDays []int64          `json:"operating_days" binding:"omitempty,min=1,dive,min=0,max=6"`
	IsActive      *bool            `json:"is_active"`
}

type ScheduleFilter struct {
	RouteID   *uint `form:"route_id"`
	BusID     *uint `form:"bus_id"`
	IsActive  *bool `form:"is_active"`
	DayOfWeek *int  `form:"day_of_week" binding:"omitempty,min=0,max=6"`
}

type TodayFilter struct {
	BusID   *uint `form:"bus_id"`
	RouteID *uint `form:"route_id"`
}

type StopSearchQuery struct {
	Q     string `form:"q" binding:"required"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=50"`
}
