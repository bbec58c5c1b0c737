package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound        = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists   = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput    = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConflict        = NewDomainError("CONFLICT", "Resource state changed by another operation")
	ErrPrintInProgress = NewDomainError("PRINT_IN_PROGRESS", "A print attempt is already in flight for this order")
	ErrFeedUnreachable = NewDomainError("FEED_UNREACHABLE", "External feed could not be reached")
	ErrStoreFailure    = NewDomainError("STORE_FAILURE", "Persistence layer rejected the operation")
	ErrInvalidState    = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)
