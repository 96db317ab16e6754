package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// FileReadError indicates a source file could not be read
	FileReadError ErrorCode = "FILE_READ_ERROR"
	// ParseError indicates a source file could not be parsed
	ParseError ErrorCode = "PARSE_ERROR"
	// ModuleNotFound indicates a module path resolves to no declared module
	ModuleNotFound ErrorCode = "MODULE_NOT_FOUND"
	// DuplicateModule indicates two configs declare the same module path
	DuplicateModule ErrorCode = "DUPLICATE_MODULE"
	// ModuleAlreadyExists indicates a create-module edit targets a declared path
	ModuleAlreadyExists ErrorCode = "MODULE_ALREADY_EXISTS"
	// EditNotApplicable indicates an edit does not apply to the target config
	EditNotApplicable ErrorCode = "EDIT_NOT_APPLICABLE"
	// ConfigDoesNotExist indicates the config document is missing from disk
	ConfigDoesNotExist ErrorCode = "CONFIG_DOES_NOT_EXIST"
	// ParsingFailed indicates the on-disk config document could not be parsed
	ParsingFailed ErrorCode = "PARSING_FAILED"
	// DiskWriteFailed indicates the config document could not be written back
	DiskWriteFailed ErrorCode = "DISK_WRITE_FAILED"
	// RelativeImportEscapesRoot indicates a relative import climbs above its source root
	RelativeImportEscapesRoot ErrorCode = "RELATIVE_IMPORT_ESCAPES_ROOT"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// ModboundError represents a modbound error with a stable code and optional file context
type ModboundError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	// FilePath is set on per-file extraction errors so callers can
	// aggregate them without aborting a whole-project pass.
	FilePath string `json:"filePath,omitempty"`
	cause    error
}

// New creates a new ModboundError
func New(code ErrorCode, message string, cause error) *ModboundError {
	return &ModboundError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Newf creates a new ModboundError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *ModboundError {
	return &ModboundError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface
func (e *ModboundError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.FilePath != "" {
		msg = fmt.Sprintf("%s (file: %s)", msg, e.FilePath)
	}
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

// Unwrap returns the underlying error
func (e *ModboundError) Unwrap() error {
	return e.cause
}

// WithFile attaches the file path the error occurred in
func (e *ModboundError) WithFile(filePath string) *ModboundError {
	e.FilePath = filePath
	return e
}

// CodeOf returns the error code of err, or InternalError for foreign errors
func CodeOf(err error) ErrorCode {
	var me *ModboundError
	if stderrors.As(err, &me) {
		return me.Code
	}
	return InternalError
}

// HasCode reports whether err carries the given error code
func HasCode(err error, code ErrorCode) bool {
	var me *ModboundError
	if stderrors.As(err, &me) {
		return me.Code == code
	}
	return false
}
