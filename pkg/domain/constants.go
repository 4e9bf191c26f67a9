package domain

import "time"

// InternalErrorMessage is answered to the end user for any unexpected failure.
const InternalErrorMessage = "server error occurred"

// Session eviction defaults.
const (
	DefaultCleanPeriod        = 60 * time.Second
	DefaultMaxSessionLifetime = 3600 * time.Second
)
