package entity

import "time"

const (
	RoleStudent   = "student"
	RoleTeacher   = "teacher"
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
)

var UserRoles = []string{RoleStudent, RoleTeacher, RoleAdmin, RoleModerator}

type User struct {
	Base
	Name         string       `gorm:"size:100;not null" json:"name"`
	Email        string       `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string       `gorm:"size:255;not null" json:"-"`
	Role         string       `gorm:"size:20;not null;default:student" json:"role"`
	ResetPassOTP *string      `gorm:"column:reset_pass_otp;size:6" json:"-"`
	OTPIssuedAt  *time.Time   `gorm:"column:otp_issued_at" json:"-"`
	PhotoURL     *string      `gorm:"type:text" json:"photo_url"`
	BusManagers  []BusManager `gorm:"foreignKey:UserID" json:"bus_managers,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
