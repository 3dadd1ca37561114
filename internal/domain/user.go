package domain

import "time"

// Principal is the authenticated identity of a session.
type Principal struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// User is an account known to the authentication service.
type User struct {
	UID          string    `json:"uid"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u User) Principal() Principal {
	return Principal{UID: u.UID, Email: u.Email}
}

// AuthState is what the authentication-state observer reports. Until Resolved is
// true nothing may be concluded from Principal.
type AuthState struct {
	Resolved  bool
	Principal *Principal
}
