package domain

import "time"

type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name,omitempty"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	GoogleID     string     `json:"-"`
	GithubID     string     `json:"-"`
	LinkedinID   string     `json:"-"`
	OtpCodeHash  string     `json:"-"`
	OtpExpiresAt *time.Time `json:"-"`
	IsVerified   bool       `json:"isVerified"`
	CreatedAt    time.Time  `json:"created_at"`
}
