package events

import (
	"errors"

	"helphands-go/internal/domain/validation"
)

var (
	ErrEventNotFound        = errors.New("event not found")
	ErrEventFull            = errors.New("event is full")
	ErrAlreadyVolunteer     = errors.New("already joined this event")
	ErrNotVolunteer         = errors.New("not enrolled in this event")
	ErrCapacityBelowCurrent = errors.New("max volunteers cannot be below current volunteers")

	ErrInvalidDate     = validation.New("date", "event date must be in the future")
	ErrInvalidCapacity = validation.New("max_volunteers", "max volunteers must be between 1 and 1000")
)
