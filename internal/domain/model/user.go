package model

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	AccountActive   = "active"
	AccountInactive = "inactive"
)

type User struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	Flag          bool      `json:"flag"`
	AccountStatus string    `json:"account_status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CanSubmit reports whether the account may create graded submissions.
// Flagged or deactivated accounts are rejected before any judging call.
func (u *User) CanSubmit() bool {
	return !u.Flag && u.AccountStatus == AccountActive
}
