package entity

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID               string    `json:"id" firestore:"id"`
	Name             string    `json:"name" firestore:"name"`
	Surname          string    `json:"surname" firestore:"surname"`
	Email            string    `json:"email" firestore:"email"`
	PasswordHash     string    `json:"-" firestore:"passwordHash"`
	Phone            string    `json:"phone,omitempty" firestore:"phone,omitempty"`
	Country          string    `json:"country,omitempty" firestore:"country,omitempty"`
	Role             string    `json:"role" firestore:"role"`
	Verified         bool      `json:"verified" firestore:"verified"`
	VerificationCode string    `json:"-" firestore:"verificationCode,omitempty"`
	CreatedAt        time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt        time.Time `json:"updated_at" firestore:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
