package entity

import "time"

const (
	ManagerRoleDriver      = "driver"
	ManagerRoleConductor   = "conductor"
	ManagerRoleSupervisor  = "supervisor"
	ManagerRoleMaintenance = "maintenance"
)

// BusManager links a user to a bus. Rows are deactivated, never deleted.
type BusManager struct {
	Base
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	User          *User     `json:"user,omitempty"`
	BusID         uint      `gorm:"not null;index" json:"bus_id"`
	Bus           *Bus      `json:"bus,omitempty"`
	Role          string    `gorm:"size:20;not null;default:driver" json:"role"`
	LicenseNumber *string   `gorm:"size:50" json:"license_number"`
	AssignedAt    time.Time `gorm:"not null" json:"assigned_at"`
	IsActive      bool      `gorm:"not null" json:"is_active"`
	Notes         *string   `gorm:"type:text" json:"notes"`
}
