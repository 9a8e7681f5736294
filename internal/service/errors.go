package service

import "errors"

var (
	// ErrAlreadyProcessing is returned when a pass is requested while one is running
	ErrAlreadyProcessing = errors.New("a recompute pass is already running")

	// ErrConfigurationIncomplete is returned when a required threshold is missing
	ErrConfigurationIncomplete = errors.New("configuration incomplete")

	// ErrPrimarySourceFetch aborts a pass
	ErrPrimarySourceFetch = errors.New("primary workout source fetch failed")

	// ErrSecondarySourceFetch is logged; the pass continues without secondary workouts
	ErrSecondarySourceFetch = errors.New("secondary workout source fetch failed")

	// ErrPersistence aborts a pass; nothing from the pass is written
	ErrPersistence = errors.New("persisting recompute pass failed")
)
