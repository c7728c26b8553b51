package utils

import (
	"github.com/devws-io/devws/internal/types"
)

// Exit codes
const (
	ExitSuccess = 0
	// Identity and manifest errors (10-19)
	ExitNoRemote        = 10
	ExitManifestMissing = 11
	ExitNotARepository  = 12
	// Storage and secrets errors (20-29)
	ExitStorageError = 20
	ExitSecretsError = 21
	ExitLocalIOError = 22
	// Validation errors (40-49)
	ExitInvalidArgument = 40
	ExitConfigInvalid   = 41
	// Batch errors
	ExitPartialFailure = 60
	// Unknown
	ExitUnknown = 99
)

// Error codes (tool-owned, stable)
const (
	ErrCodeNoRemote        = "NO_REMOTE"
	ErrCodeNotARepository  = "NOT_A_REPOSITORY"
	ErrCodeManifestMissing = "MANIFEST_MISSING"
	ErrCodeManifestExists  = "MANIFEST_EXISTS"
	ErrCodeStorageError    = "STORAGE_ERROR"
	ErrCodeSecretsError    = "SECRETS_ERROR"
	ErrCodeLocalIOError    = "LOCAL_IO_ERROR"
	ErrCodeInvalidArgument = "INVALID_ARGUMENT"
	ErrCodeConfigInvalid   = "CONFIG_INVALID"
	ErrCodePartialFailure  = "PARTIAL_FAILURE"
	ErrCodeUnknown         = "UNKNOWN"
)

// AppError carries a structured CLIError through command execution so the
// entry point can map it to an exit code
type AppError struct {
	CLIError types.CLIError
}

func (e *AppError) Error() string {
	return e.CLIError.Message
}

// NewAppError creates an AppError with the given code and message
func NewAppError(code, message string) *AppError {
	return &AppError{
		CLIError: types.CLIError{
			Code:    code,
			Message: message,
		},
	}
}

// WithContext attaches a context key/value to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.CLIError.Context == nil {
		e.CLIError.Context = make(map[string]interface{})
	}
	e.CLIError.Context[key] = value
	return e
}

// GetExitCode returns the exit code for an error code
func GetExitCode(errorCode string) int {
	mapping := map[string]int{
		ErrCodeNoRemote:        ExitNoRemote,
		ErrCodeNotARepository:  ExitNotARepository,
		ErrCodeManifestMissing: ExitManifestMissing,
		ErrCodeStorageError:    ExitStorageError,
		ErrCodeSecretsError:    ExitSecretsError,
		ErrCodeLocalIOError:    ExitLocalIOError,
		ErrCodeInvalidArgument: ExitInvalidArgument,
		ErrCodeConfigInvalid:   ExitConfigInvalid,
		ErrCodePartialFailure:  ExitPartialFailure,
	}
	if code, ok := mapping[errorCode]; ok {
		return code
	}
	return ExitUnknown
}
