package service

import "time"

const (
	// DefaultHistoryDays is the window of a full recompute
	DefaultHistoryDays = 90

	// Duplicate detection tolerances between the two workout sources
	DuplicateStartTolerance    = 60 * time.Second
	DuplicateDurationTolerance = 5 * time.Second

	// TrendWindowDays is how many recent scores feed the trend
	TrendWindowDays = 7

	// sleepLookback widens sleep fetches so a night that started the
	// evening before the first day is still complete
	sleepLookback = 24 * time.Hour

	// secondaryUploadLag is how far before the cursor incremental updates
	// look for secondary workouts uploaded after they started
	secondaryUploadLag = 48 * time.Hour
)
