package user

import "time"

type Role string

const (
	RoleUser    Role = "USER"
	RoleTrainer Role = "TRAINER"
	RoleAdmin   Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleTrainer, RoleAdmin:
		return true
	}
	return false
}

// User is an account. Password holds the bcrypt hash and never leaves the
// service in JSON.
type User struct {
	ID               uint      `json:"userId" gorm:"primaryKey"`
	Email            string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	Password         string    `json:"-" gorm:"size:255;not null"`
	Role             Role      `json:"role" gorm:"size:20;not null"`
	IsActive         bool      `json:"isActive" gorm:"not null"`
	ProfileCompleted bool      `json:"profileCompleted" gorm:"not null"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}
