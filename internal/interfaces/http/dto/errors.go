package dto

import "net/http"

// Error codes shared between the domain layer and the HTTP surface
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "INVALID_INPUT"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	// ErrCodeConflict is used when a conditional write loses a race
	ErrCodeConflict = "CONFLICT"
	// ErrCodeInvalidState is used when an operation is invalid for the current state
	ErrCodeInvalidState = "INVALID_STATE"
	// ErrCodePrintInProgress is used when a print attempt is already in flight
	ErrCodePrintInProgress = "PRINT_IN_PROGRESS"
	// ErrCodeFeedUnreachable is used when the external feed cannot be fetched
	ErrCodeFeedUnreachable = "FEED_UNREACHABLE"
	// ErrCodeStoreFailure is used when the persistence layer rejects an operation
	ErrCodeStoreFailure = "STORE_FAILURE"
	// ErrCodeNoSyncConfig is used when a sync runs without an active configuration
	ErrCodeNoSyncConfig = "NO_SYNC_CONFIG"
	// ErrCodeMaxSubscribers is used when the notification hub is at capacity
	ErrCodeMaxSubscribers = "MAX_SUBSCRIBERS_REACHED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeAlreadyExists:   http.StatusConflict,
	ErrCodeConflict:        http.StatusConflict,
	ErrCodeInvalidState:    http.StatusUnprocessableEntity,
	ErrCodePrintInProgress: http.StatusConflict,
	ErrCodeFeedUnreachable: http.StatusBadGateway,
	ErrCodeStoreFailure:    http.StatusInternalServerError,
	ErrCodeNoSyncConfig:    http.StatusBadRequest,
	ErrCodeMaxSubscribers:  http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500 Internal Server Error.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
