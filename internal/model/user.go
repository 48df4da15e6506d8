package model

import "time"

// Role 后台角色
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleCashier Role = "cashier"
	RoleKitchen Role = "kitchen"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleCashier || r == RoleKitchen
}

// SystemUser 后台账号
type SystemUser struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"type:varchar(32);uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(128);not null"`
	DisplayName  string    `json:"display_name" gorm:"type:varchar(64)"`
	Role         Role      `json:"role" gorm:"type:varchar(16);not null"`
	Status       Lifecycle `json:"status" gorm:"type:varchar(16);not null;default:'active'"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (SystemUser) TableName() string { return "system_users" }
