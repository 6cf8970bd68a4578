package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"error"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"-"`
	// HTTPStatus is the HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context, flattened into the response body.
	Details map[string]any `json:"-"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any, len(details))
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// MissingAudioFile is returned when the upload carries no audio part.
func MissingAudioFile(fields ...string) *AppError {
	e := New(ErrCodeMissingAudioFile, "No audio file was uploaded.", http.StatusBadRequest)
	if len(fields) > 0 {
		e.WithDetail("accepted_fields", fields)
	}
	return e
}

// EmptyAudioUpload is returned when the upload is too small to be real audio.
func EmptyAudioUpload(size int64) *AppError {
	return New(ErrCodeEmptyAudioUpload, "The uploaded audio is empty or too short.", http.StatusBadRequest).
		WithDetail("size", size)
}

// MissingUserID is returned when no identity key could be resolved.
func MissingUserID() *AppError {
	return New(ErrCodeMissingUserID, "A user id is required.", http.StatusBadRequest)
}

// UploadTooLarge is returned when the request body exceeds limit bytes.
func UploadTooLarge(limit int64) *AppError {
	return New(ErrCodeUploadTooLarge, "The uploaded audio is too large.", http.StatusRequestEntityTooLarge).
		WithDetail("limit", limit)
}

// STTUnavailable is returned when the transcoder or the provider cannot be used.
func STTUnavailable(reason string) *AppError {
	e := New(ErrCodeSTTUnavailable, "Speech-to-text is temporarily unavailable.", http.StatusServiceUnavailable)
	if reason != "" {
		e.WithDetail("reason", reason)
	}
	return e
}

// TranscodeFailed carries the diagnostics of a transcoder run that produced
// no usable output.
func TranscodeFailed(exitCode int, stderr, stdout string) *AppError {
	e := New(ErrCodeTranscodeFailed, "The audio could not be converted.", http.StatusInternalServerError).
		WithDetail("exit_code", exitCode)
	if stderr != "" {
		e.WithDetail("stderr", stderr)
	}
	if stdout != "" {
		e.WithDetail("stdout", stdout)
	}
	return e
}

// UnsupportedAudioFormat is returned when the provider rejects the audio content.
func UnsupportedAudioFormat(cause error) *AppError {
	return New(ErrCodeUnsupportedAudioFormat, "The audio format is not supported.", http.StatusBadRequest).
		WithCause(cause)
}

// STTFailed wraps a transient or unclassified provider failure.
func STTFailed(cause error) *AppError {
	return New(ErrCodeSTTFailed, "Transcription failed. Please try again.", http.StatusInternalServerError).
		WithCause(cause)
}

// Internal creates a new AppError for an internal server error.
func Internal(cause error) *AppError {
	return New(ErrCodeInternal, "An unexpected error occurred.", http.StatusInternalServerError).
		WithCause(cause)
}
