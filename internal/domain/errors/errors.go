package errors

import (
	"net/http"

	"github.com/pkg/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Sentinels recognized with errors.Is across the linking flow.
var (
	// ErrIntegrationUnavailable marks a backend that does not implement the
	// integration endpoints yet (HTTP 404 on status). The presenter shows
	// "not available" instead of "disconnected" for this one.
	ErrIntegrationUnavailable = errors.New("integration not available on backend")

	// ErrConnectPending rejects a second start-connect while one flow is in flight.
	ErrConnectPending = errors.New("a connect flow is already pending for this provider")

	// ErrNotLoggedIn is returned by operations that require a stored credential.
	ErrNotLoggedIn = errors.New("no credential stored on this device")
)

// Predefined error types
var (
	// Authentication-related errors
	ErrInvalidCredentials = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
		"อีเมลหรือรหัสผ่านไม่ถูกต้อง",
		"",
	)

	ErrSessionExpired = NewBaseError(
		http.StatusUnauthorized,
		"SESSION_EXPIRED",
		"เซสชันหมดอายุ กรุณาเข้าสู่ระบบใหม่",
		"",
	)

	// OAuth-related errors
	ErrOAuthFailed = NewBaseError(
		http.StatusUnauthorized,
		"OAUTH_FAILED",
		"การเชื่อมต่อบัญชีล้มเหลว",
		"",
	)

	ErrOAuthCodeInvalid = NewBaseError(
		http.StatusBadRequest,
		"OAUTH_CODE_INVALID",
		"รหัสยืนยันไม่ถูกต้อง",
		"",
	)

	// Integration-related errors
	ErrConnectFailed = NewBaseError(
		http.StatusBadGateway,
		"CONNECT_FAILED",
		"ไม่สามารถเชื่อมต่อบัญชีได้ กรุณาลองใหม่อีกครั้ง",
		"",
	)

	ErrDisconnectFailed = NewBaseError(
		http.StatusBadGateway,
		"DISCONNECT_FAILED",
		"ไม่สามารถยกเลิกการเชื่อมต่อได้ กรุณาลองใหม่อีกครั้ง",
		"",
	)

	// Validation-related errors
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"ข้อมูลไม่ถูกต้อง",
		"",
	)

	// General errors
	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"เกิดข้อผิดพลาดภายในระบบ",
		"",
	)

	ErrNetworkUnreachable = NewBaseError(
		http.StatusServiceUnavailable,
		"NETWORK_UNREACHABLE",
		"ไม่สามารถติดต่อเซิร์ฟเวอร์ได้ กรุณาตรวจสอบการเชื่อมต่อ",
		"",
	)
)
