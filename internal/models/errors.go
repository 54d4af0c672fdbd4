package models

import (
	"errors"
	"fmt"
)

// Error codes for structured error handling.
const (
	ErrCodeAuth        = "AUTH_ERROR"
	ErrCodeNotFound    = "NOT_FOUND"
	ErrCodeDecryption  = "DECRYPTION_ERROR"
	ErrCodeValidation  = "VALIDATION_ERROR"
	ErrCodeStorage     = "STORAGE_ERROR"
	ErrCodeConfig      = "CONFIG_ERROR"
	ErrCodeServerError = "SERVER_ERROR"
)

// Sentinel errors
var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrUserNotFound     = errors.New("user not found")
	ErrDocumentNotFound = errors.New("document not found")
	ErrEmailTaken       = errors.New("email already registered")
	ErrEmailNotAllowed  = errors.New("email domain not allowed")
	ErrStageNotFound    = errors.New("journey stage not found")
	ErrInvalidConfig    = errors.New("invalid configuration")
)

// APIError is the JSON error shape returned by the HTTP surface.
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// UploadError provides detailed upload failure information.
type UploadError struct {
	Code     string
	Phase    string
	UserID   string
	Filename string
	Err      error
}

func (e *UploadError) Error() string {
	if e.Filename != "" {
		return fmt.Sprintf("upload %s [%s]: user %s: %s: %v", e.Phase, e.Code, e.UserID, e.Filename, e.Err)
	}
	return fmt.Sprintf("upload %s [%s]: user %s: %v", e.Phase, e.Code, e.UserID, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}
