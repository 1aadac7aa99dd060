package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrItemNotFound indicates the requested item does not exist
	ErrItemNotFound = errors.New("item not found")

	// ErrServerOffline indicates the warehouse API is unreachable
	ErrServerOffline = errors.New("warehouse server is unreachable")

	// ErrAuthFailed indicates the init data was rejected
	ErrAuthFailed = errors.New("telegram init data was rejected")

	// ErrQueryTooShort indicates a search query below the minimum length
	ErrQueryTooShort = errors.New("search query is too short")

	// ErrRateLimited indicates the backend answered 429
	ErrRateLimited = errors.New("too many requests")
)
