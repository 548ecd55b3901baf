package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type Role struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"        json:"id"`
	Name        string `gorm:"size:60;uniqueIndex;not null"    json:"name"`
	Description string `gorm:"size:200"                        json:"description"`
}

type Account struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"        json:"id"`
	Email        string `gorm:"size:60;uniqueIndex;not null"    json:"email"`
	Username     string `gorm:"size:60;uniqueIndex;not null"    json:"username"`
	FirstName    string `gorm:"size:60;index"                   json:"first_name"`
	LastName     string `gorm:"size:60;index"                   json:"last_name"`
	PasswordHash string `gorm:"size:128;not null"               json:"-"`
	DepartmentID *uint  `                                       json:"department_id,omitempty"`
	RoleID       *uint  `gorm:"index"                           json:"role_id,omitempty"`
	Role         *Role  `gorm:"constraint:OnDelete:SET NULL;"   json:"role,omitempty"`
	IsAdmin      bool   `gorm:"not null;default:false"          json:"is_admin"`
}

type RevokedToken struct {
	ID        uint      `gorm:"primaryKey"                      json:"id"`
	JTI       string    `gorm:"size:120;uniqueIndex;not null"   json:"jti"`
	ExpiresAt time.Time `gorm:"index;not null"                  json:"expires_at"`
	CreatedAt time.Time `                                       json:"created_at"`
}
