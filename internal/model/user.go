package model

import "time"

type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"not null;uniqueIndex;size:255" json:"username"`
	Password  string    `gorm:"not null" json:"-"`
	Email     string    `gorm:"not null;uniqueIndex;size:255" json:"email"`
	Name      string    `gorm:"not null;size:255" json:"name"`
	Role      string    `gorm:"not null;default:'user';size:20" json:"role"`
	Verified  bool      `gorm:"default:false" json:"verified"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// Role constants
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

// IsAdminRole reports whether the role may manage project files and names.
func IsAdminRole(role string) bool {
	return role == RoleAdmin || role == RoleSuperadmin
}
