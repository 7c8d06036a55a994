package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	UserStatusActive  = "ACTIVE"
	UserStatusBlocked = "BLOCKED"
)

type User struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	Email         string    `gorm:"uniqueIndex;not null" json:"email"`
	Name          string    `gorm:"not null" json:"name"`
	Password      string    `gorm:"not null" json:"-"` // bcrypt hash
	Role          string    `gorm:"size:20;default:'user';not null" json:"role"`
	EmailVerified bool      `gorm:"not null;default:false" json:"emailVerified"`
	Status        string    `gorm:"size:20;default:'ACTIVE';not null" json:"status"`
	VerifyCode    string    `gorm:"size:20" json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// ValidRole reports whether r is a role an admin may assign.
func ValidRole(r string) bool {
	return r == RoleUser || r == RoleAdmin
}

func ValidUserStatus(s string) bool {
	return s == UserStatusActive || s == UserStatusBlocked
}
