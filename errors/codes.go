package errors

// ErrorCode is the stable machine-readable error string sent to clients.
type ErrorCode string

// Validation errors (client fixable).
const (
	// ErrCodeMissingAudioFile indicates no audio part was found in the upload.
	ErrCodeMissingAudioFile ErrorCode = "missing_audio_file"
	// ErrCodeEmptyAudioUpload indicates the upload is below the minimum size.
	ErrCodeEmptyAudioUpload ErrorCode = "empty_audio_upload"
	// ErrCodeMissingUserID indicates no identity key could be resolved.
	ErrCodeMissingUserID ErrorCode = "missing_user_id"
	// ErrCodeUploadTooLarge indicates the body exceeded the server limit.
	ErrCodeUploadTooLarge ErrorCode = "upload_too_large"
	// ErrCodeUnsupportedAudioFormat indicates the provider rejected the audio.
	ErrCodeUnsupportedAudioFormat ErrorCode = "unsupported_audio_format"
)

// Dependency errors (operator fixable).
const (
	// ErrCodeSTTUnavailable indicates the transcoder or provider is unusable.
	ErrCodeSTTUnavailable ErrorCode = "stt_unavailable"
)

// Processing errors.
const (
	// ErrCodeTranscodeFailed indicates the transcoder produced no usable output.
	ErrCodeTranscodeFailed ErrorCode = "transcode_failed"
	// ErrCodeSTTFailed indicates a transient or unknown provider failure.
	ErrCodeSTTFailed ErrorCode = "stt_failed"
	// ErrCodeInternal indicates an unexpected failure.
	ErrCodeInternal ErrorCode = "internal_error"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeSTTUnavailable:  true,
	ErrCodeSTTFailed:       true,
	ErrCodeTranscodeFailed: false,
	ErrCodeInternal:        false,
}

// IsRetryableCode reports whether a client may retry after receiving code.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
