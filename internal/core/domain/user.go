package domain

import "time"

// User is a registered account holder. The username is the primary key;
// users are never deleted in normal operation.
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserInfo is a user plus its computed balance, as returned to admins.
type UserInfo struct {
	Username    string    `json:"username"`
	BalanceMsat int64     `json:"balance_msat"`
	CreatedAt   time.Time `json:"created_at"`
}
