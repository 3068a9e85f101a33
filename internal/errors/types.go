// Package errors defines the structured error taxonomy shared by the
// configuration resolver, the path resolver and the render pipeline.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeConfig          ErrorType = "config"
	ErrorTypePath            ErrorType = "path"
	ErrorTypeRender          ErrorType = "render"
	ErrorTypeSecondaryRender ErrorType = "secondary_render"
	ErrorTypeValidation      ErrorType = "validation"
)

// Common error codes.
const (
	ErrCodeConfigInvalid    = "ERR_CONFIG_INVALID"
	ErrCodeConfigFile       = "ERR_CONFIG_FILE"
	ErrCodeProjectRoot      = "ERR_PROJECT_ROOT"
	ErrCodePathUnresolvable = "ERR_PATH_UNRESOLVABLE"
	ErrCodeRenderFailed     = "ERR_RENDER_FAILED"
	ErrCodeErrorViewFailed  = "ERR_ERROR_VIEW_FAILED"
	ErrCodeViewMissing      = "ERR_VIEW_MISSING"
	ErrCodeValidationFailed = "ERR_VALIDATION_FAILED"
)

// Error is a structured error type with context.
type Error struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	View        string
	Path        string
	Recoverable bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}
	if e.View != "" {
		parts = append(parts, "view:"+e.View)
	}
	if e.Path != "" {
		parts = append(parts, "path:"+e.Path)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")
	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// String returns the same text as Error, so templates can print the error.
func (e *Error) String() string {
	return e.Error()
}

// Unwrap returns the underlying cause error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors of the same type and code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithPath attaches the filesystem path the error is about.
func (e *Error) WithPath(path string) *Error {
	e.Path = path

	return e
}

// NewConfigError creates a fatal configuration error.
func NewConfigError(code, message string, cause error) *Error {
	return &Error{
		Type:        ErrorTypeConfig,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// NewPathResolutionError creates the error returned when no candidate
// directory and no fallback directory could be used.
func NewPathResolutionError(message string, cause error) *Error {
	return &Error{
		Type:        ErrorTypePath,
		Code:        ErrCodePathUnresolvable,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// NewRenderError wraps an engine failure for the named view.
func NewRenderError(view string, cause error) *Error {
	return &Error{
		Type:        ErrorTypeRender,
		Code:        ErrCodeRenderFailed,
		Message:     "view rendering failed",
		Cause:       cause,
		View:        view,
		Recoverable: true,
	}
}

// NewSecondaryRenderError wraps a failure of the configured error view.
func NewSecondaryRenderError(view string, cause error) *Error {
	return &Error{
		Type:        ErrorTypeSecondaryRender,
		Code:        ErrCodeErrorViewFailed,
		Message:     "error view rendering failed",
		Cause:       cause,
		View:        view,
		Recoverable: true,
	}
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *Error {
	return &Error{
		Type:        ErrorTypeValidation,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// IsRecoverable checks if an error is recoverable.
func IsRecoverable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Recoverable
	}

	return false
}

// IsConfigError reports whether err is a configuration error.
func IsConfigError(err error) bool {
	return hasType(err, ErrorTypeConfig)
}

// IsPathError reports whether err is a path resolution error.
func IsPathError(err error) bool {
	return hasType(err, ErrorTypePath)
}

// IsRenderError reports whether err is a render error.
func IsRenderError(err error) bool {
	return hasType(err, ErrorTypeRender)
}

func hasType(err error, typ ErrorType) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == typ
	}

	return false
}

// ErrMissingView is returned when a render is requested without a view name.
func ErrMissingView() *Error {
	return NewValidationError(ErrCodeViewMissing, "no view has been specified")
}

// ErrRequiredPath creates the strict-profile error for an unset path key.
func ErrRequiredPath(key string) *Error {
	return NewConfigError(
		ErrCodeConfigInvalid,
		fmt.Sprintf("configuration value for '%s' must be a non-empty string", key),
		nil,
	).WithContext("key", key)
}
