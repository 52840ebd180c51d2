package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
)

// Standard error codes
const (
	ErrInvalidRequest      = 400
	ErrUnauthorized        = 401
	ErrForbidden           = 403
	ErrNotFound            = 404
	ErrConflict            = 409
	ErrInternalServerError = 500
	ErrServiceUnavailable  = 503

	// Infrastructure error codes (1000+)
	ErrKafkaError   = 1006
	ErrRedisError   = 1007
	ErrConfigError  = 1008
	ErrWebhookError = 1010

	// Reel error codes (2000+)
	ErrEmptyNameList         = 2001
	ErrNoSelection           = 2002
	ErrMissingDisplaySurface = 2003
	ErrSpinInProgress        = 2004
	ErrCallbackPanic         = 2005
	ErrInvalidPrizePool      = 2006
	ErrReelNotFound          = 2007
)

// Sentinels for the guarded spin failures. Compare with errors.Is, which
// matches on Code so wrapped copies still compare equal.
var (
	EmptyNameList         = New(ErrEmptyNameList, "name list is empty")
	NoSelection           = New(ErrNoSelection, "no prize could be selected")
	MissingDisplaySurface = New(ErrMissingDisplaySurface, "display surface unavailable")
	SpinInProgress        = New(ErrSpinInProgress, "a spin is already in progress")
)

// AppError represents a custom application error
type AppError struct {
	Code         int    `json:"code"`
	Message      string `json:"message"`
	DebugMessage string `json:"debug_message,omitempty"`
	Err          error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.DebugMessage != "" {
		return fmt.Sprintf("[%d] %s: %s", e.Code, e.Message, e.DebugMessage)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s [%v]", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError carrying the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithDebug returns a copy of e carrying a debug message.
func (e *AppError) WithDebug(format string, args ...interface{}) *AppError {
	cp := *e
	cp.DebugMessage = fmt.Sprintf(format, args...)
	return &cp
}

// New creates a new AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewWithDebug creates a new AppError with a debug message
func NewWithDebug(code int, message string, debugMessage string) *AppError {
	return &AppError{
		Code:         code,
		Message:      message,
		DebugMessage: debugMessage,
	}
}

// Wrap wraps an existing error into an AppError
func Wrap(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Response returns a map suitable for JSON response
func (e *AppError) Response() map[string]interface{} {
	response := map[string]interface{}{
		"code":    e.Code,
		"message": e.Message,
	}

	env := os.Getenv("APP_ENV")
	if (env == "dev" || env == "development") && e.DebugMessage != "" {
		response["debug_message"] = e.DebugMessage
	}

	return response
}

// As finds the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsAppError checks if an error is or wraps an AppError
func IsAppError(err error) bool {
	_, ok := As(err)
	return ok
}

// GetCode extracts error code from an error
func GetCode(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return ErrInternalServerError
}

// HTTPStatusFromCode maps error codes to HTTP status codes
func HTTPStatusFromCode(code int) int {
	switch code {
	case ErrInvalidRequest, ErrInvalidPrizePool:
		return http.StatusBadRequest
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	case ErrNotFound, ErrReelNotFound:
		return http.StatusNotFound
	case ErrConflict, ErrSpinInProgress:
		return http.StatusConflict
	case ErrEmptyNameList, ErrNoSelection:
		return http.StatusUnprocessableEntity
	case ErrServiceUnavailable, ErrMissingDisplaySurface:
		return http.StatusServiceUnavailable
	case ErrKafkaError, ErrRedisError, ErrWebhookError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
