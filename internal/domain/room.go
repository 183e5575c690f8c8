package domain

import "errors"

var ErrRoomIDEmpty = errors.New("room id empty")

type RoomID string
