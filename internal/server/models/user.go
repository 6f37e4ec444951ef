package models

import "time"

type User struct {
	ID           string    `json:"id"`
	UserName     string    `json:"username"`
	Name         *string   `json:"name"`
	Email        *string   `json:"email"`
	PasswordHash []byte    `json:"-"`
	Salt         []byte    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
