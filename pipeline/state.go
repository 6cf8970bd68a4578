package pipeline

import (
	"strings"

	apperrors "github.com/kbukum/voiceingest/errors"
)

// State is a step of the request state machine.
type State string

const (
	Received     State = "received"
	Validated    State = "validated"
	PassThrough  State = "pass_through"
	Resolving    State = "resolving"
	Transcoding  State = "transcoding"
	Verified     State = "verified"
	Transcribing State = "transcribing"
	Recorded     State = "recorded"
	NotRecorded  State = "not_recorded"
	Cleaned      State = "cleaned"
	Responded    State = "responded"

	ValidationFailed      State = "validation_failed"
	DependencyUnavailable State = "dependency_unavailable"
	TranscodeFailed       State = "transcode_failed"
	ProviderFailed        State = "provider_failed"
	UnexpectedFailure     State = "unexpected_failure"
)

// IsFailure reports whether s is a terminal failure state.
func (s State) IsFailure() bool {
	switch s {
	case ValidationFailed, DependencyUnavailable, TranscodeFailed, ProviderFailed, UnexpectedFailure:
		return true
	}
	return false
}

// Trace is the ordered list of states a run visited.
type Trace []State

func (t Trace) String() string {
	parts := make([]string, len(t))
	for i, s := range t {
		parts[i] = string(s)
	}
	return strings.Join(parts, " → ")
}

// Contains reports whether s was visited.
func (t Trace) Contains(s State) bool {
	for _, v := range t {
		if v == s {
			return true
		}
	}
	return false
}

// Outcome returns the terminal state before cleanup: the failure state
// if any, otherwise Recorded or NotRecorded.
func (t Trace) Outcome() State {
	for i := len(t) - 1; i >= 0; i-- {
		switch s := t[i]; {
		case s.IsFailure(), s == Recorded, s == NotRecorded:
			return s
		}
	}
	return ""
}

// failureState maps an error to the failure state that owns it.
func failureState(err error) State {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		return UnexpectedFailure
	}
	switch appErr.Code {
	case apperrors.ErrCodeMissingAudioFile, apperrors.ErrCodeEmptyAudioUpload, apperrors.ErrCodeMissingUserID,
		apperrors.ErrCodeUploadTooLarge:
		return ValidationFailed
	case apperrors.ErrCodeSTTUnavailable:
		return DependencyUnavailable
	case apperrors.ErrCodeTranscodeFailed:
		return TranscodeFailed
	case apperrors.ErrCodeUnsupportedAudioFormat, apperrors.ErrCodeSTTFailed:
		return ProviderFailed
	default:
		return UnexpectedFailure
	}
}
