package domain

import (
	"time"

	"github.com/google/uuid"
)

const MinPasswordLength = 8

type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile é a visão pública de um usuário.
type Profile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u User) Profile() Profile {
	return Profile{Name: u.Name, Email: u.Email}
}
