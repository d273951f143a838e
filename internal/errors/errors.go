// Package errors provides structured CLI error types for Lineup.
//
// CLIError wraps errors with user-facing messages, hints, and exit codes
// to provide consistent, actionable error output across all commands.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Exit codes for CLI errors.
const (
	ExitSuccess = 0  // Successful execution
	ExitGeneral = 1  // General error
	ExitAuth    = 2  // Authentication error
	ExitNetwork = 3  // Network/API error
	ExitConfig  = 4  // Configuration error
	ExitCleanup = 5  // Shutdown cleanup failure
	ExitUsage   = 64 // Command line usage error (BSD convention)
)

// CLIError represents a user-facing CLI error with actionable guidance.
type CLIError struct {
	// Message is the primary error message shown to the user.
	Message string

	// Hint provides actionable guidance on how to fix the error.
	Hint string

	// Cause is the underlying error, if any.
	Cause error

	// Code is the exit code for the CLI.
	Code int
}

// Error implements the error interface.
func (e *CLIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}

	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// New creates a new CLIError with the given message and exit code.
func New(code int, message string) *CLIError {
	return &CLIError{
		Message: message,
		Code:    code,
	}
}

// Wrap wraps an existing error with a CLIError.
func Wrap(code int, message string, cause error) *CLIError {
	return &CLIError{
		Message: message,
		Cause:   cause,
		Code:    code,
	}
}

// WithHint adds a hint to the error.
func (e *CLIError) WithHint(hint string) *CLIError {
	e.Hint = hint
	return e
}

// As is a convenience function for errors.As with CLIError.
func As(err error, target **CLIError) bool {
	return errors.As(err, target)
}

// --- Common error constructors ---

// NotAuthenticated returns an error indicating missing credentials.
func NotAuthenticated() *CLIError {
	return &CLIError{
		Message: "Not authenticated",
		Hint:    "Run 'lineup auth login' to authenticate",
		Code:    ExitAuth,
	}
}

// AuthFailed returns an error for failed authentication.
func AuthFailed(cause error) *CLIError {
	return &CLIError{
		Message: "Authentication failed",
		Hint:    "Check your access token or run 'lineup auth login'",
		Cause:   cause,
		Code:    ExitAuth,
	}
}

// TokenExpired returns an error for an expired access token.
func TokenExpired() *CLIError {
	return &CLIError{
		Message: "Access token has expired",
		Hint:    "Run 'lineup auth login' with a fresh token",
		Code:    ExitAuth,
	}
}

// TokenEmpty returns an error when the access token is empty.
func TokenEmpty() *CLIError {
	return &CLIError{
		Message: "Access token cannot be empty",
		Hint:    "Enter a valid token or set the LINEUP_TOKEN environment variable",
		Code:    ExitAuth,
	}
}

// CannotPrompt returns an error when interactive input is needed but
// unavailable.
func CannotPrompt(envVar string) *CLIError {
	return &CLIError{
		Message: "Interactive input is not available",
		Hint:    fmt.Sprintf("Set the %s environment variable or pass the value as a flag", envVar),
		Code:    ExitUsage,
	}
}

// UncertifiedProjects returns an error for requested project ids that are
// not in the certified-project mapping.
func UncertifiedProjects(ids []string) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Not certified for project(s): %s", strings.Join(ids, ", ")),
		Hint:    "Run 'lineup projects' to see the projects you are certified for",
		Code:    ExitConfig,
	}
}

// NoCertifiedProjects returns an error when the certified-project mapping
// is empty.
func NoCertifiedProjects() *CLIError {
	return &CLIError{
		Message: "No certified projects configured",
		Hint:    "Add your certified projects under 'projects.certified' in the config file",
		Code:    ExitConfig,
	}
}

// NoLanguages returns an error when no working languages are configured.
func NoLanguages() *CLIError {
	return &CLIError{
		Message: "No working languages configured",
		Hint:    "Set 'projects.languages' in the config file, e.g. [en, de]",
		Code:    ExitConfig,
	}
}

// NoPushDevices returns an error when push notifications are enabled but
// no registered device exists.
func NoPushDevices() *CLIError {
	return &CLIError{
		Message: "Push notifications enabled but no registered device found",
		Hint:    "Register a device with your push provider, or drop the --push flag",
		Code:    ExitConfig,
	}
}

// PushTokenMissing returns an error when --push is set without a token.
func PushTokenMissing() *CLIError {
	return &CLIError{
		Message: "Push notifications enabled but no push access token configured",
		Hint:    "Set 'push.access_token' in the config file or the LINEUP_PUSH_ACCESS_TOKEN environment variable",
		Code:    ExitConfig,
	}
}

// RequestCleanupFailed returns an error for a failing delete during
// terminate-and-clean. Cleanup could not be confirmed, so this is fatal.
func RequestCleanupFailed(cause error) *CLIError {
	return &CLIError{
		Message: "Failed to withdraw the outstanding submission request",
		Hint:    "The request will expire server-side within its remaining window",
		Cause:   cause,
		Code:    ExitCleanup,
	}
}

// ConfigFailed returns an error for configuration save failures.
func ConfigFailed(operation string, cause error) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Failed to %s", operation),
		Hint:    "Check file permissions for your Lineup config directory or run 'lineup doctor'",
		Cause:   cause,
		Code:    ExitConfig,
	}
}
