package queue

import "errors"

var (
	// ErrNameRequired is returned when intake data has no patient name
	ErrNameRequired = errors.New("patient name is required")

	// ErrNoActiveVisit is returned when a move targets a patient with no
	// non-discharged visit
	ErrNoActiveVisit = errors.New("no active visit for patient")

	// ErrInvalidStage is returned when a move targets an unknown stage
	ErrInvalidStage = errors.New("invalid stage")
)
