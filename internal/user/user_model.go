package user

import "gorm.io/gorm"

// RoleLeader is derived, never stored: a user leads a team iff a teams row
// points at them. RoleMember is everyone else.
const (
	RoleLeader = "leader"
	RoleMember = "member"
)

type User struct {
	gorm.Model
	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	Name         string `gorm:"not null" json:"name"`
	Password     string `gorm:"not null" json:"-"`
	RefreshToken string `json:"-"`
}
