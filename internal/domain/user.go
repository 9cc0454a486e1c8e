// Package domain contains value types and the error taxonomy, no transport logic.
package domain

import (
	"errors"

	"github.com/google/uuid"
)

const (
	MaxUserIDLen   = 36
	MaxUsernameLen = 36
)

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
)

type UserID string

// User is the local viewer driving the companion, identified by its client token.
type User struct {
	ID       UserID `json:"id"`
	Username string `json:"username"`
}

func NewUser(username string) (*User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	id := UserID(uuid.NewString())
	return &User{ID: id, Username: username}, nil
}

// Guest builds a user for a known client token.
func Guest(id UserID) *User {
	return &User{ID: id, Username: "guest"}
}

func (u *User) SetUsername(username string) error {
	if err := validateUsername(username); err != nil {
		return err
	}
	u.Username = username
	return nil
}

// Identity is the remote identity this user announces when joining a room.
func (u *User) Identity() RemoteID {
	id := string(u.ID)
	if len(id) > MaxUserIDLen {
		id = id[:MaxUserIDLen]
	}
	return RemoteID(id)
}

func validateUsername(username string) error {
	if len(username) == 0 {
		return ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return ErrUsernameTooLong
	}
	return nil
}
