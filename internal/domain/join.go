package domain

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// JoinRequest is the identity triple a connection presents to enter a room.
type JoinRequest struct {
	RoomID   RoomID `json:"roomId" validate:"required"`
	UserID   UserID `json:"userId" validate:"required"`
	UserName string `json:"userName" validate:"required"`
}

// Validate reports the first missing field as one of the domain errors.
func (j JoinRequest) Validate() error {
	err := validate.Struct(j)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validate join: %w", err)
	}
	switch verrs[0].StructField() {
	case "RoomID":
		return ErrRoomIDEmpty
	case "UserID":
		return ErrUserIDEmpty
	default:
		return ErrUserNameEmpty
	}
}

// User returns the identity carried by the request.
func (j JoinRequest) User() User {
	return User{ID: j.UserID, Name: j.UserName}
}
