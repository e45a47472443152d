package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenRevoked       = errors.New("token revoked")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// Dependency errors (store, mail relay, blob storage)
	ErrUpstream = errors.New("upstream failure")
)

// User errors
var (
	ErrUserNotFound       = wrap(ErrResourceNotFound, "user not found")
	ErrEmailAlreadyExists = wrap(ErrConflict, "email already exists")
	ErrNotAStudent        = wrap(ErrResourceNotFound, "student not found")
)

// Profile errors
var (
	ErrProfileNotFound = wrap(ErrResourceNotFound, "profile not found")
	ErrInvalidCGPA     = wrap(ErrValidationFailed, "cgpa must be between 0 and 10")
	ErrInvalidBacklogs = wrap(ErrValidationFailed, "backlogs cannot be negative")
	ErrUserIDMismatch  = wrap(ErrPermissionDenied, "user ID mismatch")
)

// Job and application errors
var (
	ErrJobNotFound         = wrap(ErrResourceNotFound, "job not found")
	ErrApplicationNotFound = wrap(ErrResourceNotFound, "application not found")
	ErrAlreadyApplied      = wrap(ErrConflict, "you have already applied for this job")
	ErrDeadlinePassed      = wrap(ErrValidationFailed, "application deadline has passed")
	ErrInvalidDepartments  = wrap(ErrValidationFailed, "invalid department set")
)

// Message errors
var (
	ErrMessageNotFound = wrap(ErrResourceNotFound, "message not found")
)

// kindError is a named sentinel that also matches its broader kind with errors.Is.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func wrap(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewValidationError creates a validation failure carrying a user-facing message
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// NewUpstreamError marks a failure of a backing dependency
func NewUpstreamError(message string, cause error) error {
	return &CustomError{
		Err:     errors.Join(ErrUpstream, cause),
		Message: message,
	}
}

// Is returns whether err matches target or any of errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// PublicMessage returns the most specific user-facing message in err's chain,
// or fallback when none is found.
func PublicMessage(err error, fallback string) string {
	var custom *CustomError
	if errors.As(err, &custom) && custom.Message != "" {
		return custom.Message
	}
	var kind *kindError
	if errors.As(err, &kind) {
		return kind.msg
	}
	return fallback
}
