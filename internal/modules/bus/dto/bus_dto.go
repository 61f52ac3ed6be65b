package dto

import (
	"nub.ac.bd/transport/pkg/dto"
)

type CreateBusRequest struct {
	RegistrationNumber string  `json:"registration_number" binding:"required,max=50"`
	Model              string  `json:"model" binding:"required,max=100"`
	Capacity           int     `json:"capacity" binding:"required,min=1"`
	YearOfManufacture  *int    `json:"year_of_manufacture" binding:"omitempty,min=1900,max=2100"`
	Status             string  `json:"status" binding:"omitempty,oneof=active maintenance inactive"`
	Notes              *string `json:"notes"`
	OffDays            []int   `json:"off_days"`
	// RouteID is accepted for older clients. It is validated but not stored.
	RouteID *uint `json:"route_id"`
}

type UpdateBusRequest struct {
	RegistrationNumber *string `json:"registration_number" binding:"omitempty,min=1,max=50"`
	Model              *string `json:"model" binding:"omitempty,min=1,max=100"`
	Capacity           *int    `json:"capacity" binding:"omitempty,min=1"`
	YearOfManufacture  *int    `json:"year_of_manufacture" binding:"omitempty,min=1900,max=2100"`
	Status             *string `json:"status" binding:"omitempty,oneof=active maintenance inactive"`
	Notes              *string `json:"notes"`
	OffDays            []int   `json:"off_days"`
	RouteID            *uint   `json:"route_id"`
}

type UpdateOffDaysRequest struct {
	OffDays []int `json:"off_days" binding:"required"`
}

type AssignManagerRequest struct {
	UserID        uint    `json:"user_id" binding:"required"`
	BusID         uint    `json:"bus_id" binding:"required"`
	Role          string  `json:"role" binding:"omitempty,oneof=driver conductor supervisor maintenance"`
	LicenseNumber *string `json:"license_number" binding:"omitempty,max=50"`
	Notes         *string `json:"notes"`
}

type BusFilter struct {
	RegistrationNumber string `form:"registration_number"`
	Model              string `form:"model"`
	Status             string `form:"status" binding:"omitempty,oneof=active maintenance inactive"`
	dto.Pagination
}
