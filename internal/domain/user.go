// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
)

var (
	ErrUserIDEmpty   = errors.New("user id empty")
	ErrUserNameEmpty = errors.New("user name empty")
)

type UserID string

// User is the identity supplied by the host platform. The id is only unique
// inside one room's member set.
type User struct {
	ID   UserID `json:"id"`
	Name string `json:"name"`
}
