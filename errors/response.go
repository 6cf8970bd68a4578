package errors

import (
	stderrors "errors"
)

// Reserved body keys that details may not overwrite.
const (
	ResponseKeyError   = "error"
	ResponseKeyMessage = "message"
)

// ToResponse flattens the error into the JSON body sent to clients:
// {"error": code, "message": ..., <details>}.
func (e *AppError) ToResponse() map[string]any {
	body := make(map[string]any, len(e.Details)+2)
	for k, v := range e.Details {
		body[k] = v
	}
	body[ResponseKeyError] = string(e.Code)
	body[ResponseKeyMessage] = e.Message
	return body
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// From returns err as an *AppError, wrapping anything else as internal_error.
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return Internal(err)
}
