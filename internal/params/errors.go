package params

import (
	"errors"
	"fmt"
)

// Tier tells apart failures while collecting parameters from failed cross-field checks.
type Tier string

const (
	TierParse      Tier = "parse"
	TierValidation Tier = "validation"
)

// Error represents a failed parameter session. Message carries the diagnostic shown
// to the user. File is the canonical path of the configuration file the offending
// token was read from, empty for the argument list.
type Error struct {
	Tier    Tier
	Code    string
	Message string
	Param   string
	File    string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Redacted returns a diagnostic that leaves out tokens read from configuration
// files. Errors raised on the argument list keep their message.
func (e *Error) Redacted() string {
	if e.File == "" {
		return e.Message
	}
	return fmt.Sprintf("%s in config file: %s", e.Code, e.File)
}

// Error codes
const (
	ErrCodeRegistryFull      = "REGISTRY_FULL"
	ErrCodeUnknownParameter  = "UNKNOWN_PARAMETER"
	ErrCodeMissingValue      = "MISSING_VALUE"
	ErrCodeInvalidList       = "INVALID_LIST"
	ErrCodeConfigUnreadable  = "CONFIG_UNREADABLE"
	ErrCodeIncludeCycle      = "INCLUDE_CYCLE"
	ErrCodeIncludeDepth      = "INCLUDE_DEPTH"
	ErrCodePathOutsideRoot   = "PATH_OUTSIDE_ROOT"
	ErrCodeTooManyTokens     = "TOO_MANY_TOKENS"
	ErrCodeCorruptContainer  = "CORRUPT_CONTAINER"
	ErrCodeInterlacedInput   = "INTERLACED_INPUT"
	ErrCodeContainerRead     = "CONTAINER_READ"
	ErrCodeInvalidParameters = "INVALID_PARAMETERS"
)

func parseError(code, param, message string, cause error) *Error {
	return &Error{Tier: TierParse, Code: code, Param: param, Message: message, Cause: cause}
}

func validationError(param, message string) *Error {
	return &Error{Tier: TierValidation, Code: ErrCodeInvalidParameters, Param: param, Message: message}
}

// IsParseError reports whether err stems from collecting parameters.
func IsParseError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Tier == TierParse
}

// IsValidationError reports whether err is a failed cross-field check.
func IsValidationError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Tier == TierValidation
}

// Code returns the error code of err, or "" when err is not an *Error.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
