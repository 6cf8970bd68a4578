// Package pipeline runs one transcription request end to end:
// intake, optional transcoding, the provider call and the usage record,
// with every temporary file released when the run unwinds.
//
// Each run walks the request state machine and returns the states it
// visited:
//
//	Received → Validated → {PassThrough | Resolving → Transcoding → Verified}
//	         → Transcribing → {Recorded | NotRecorded} → Cleaned → Responded
//
// Failures leave the happy path for ValidationFailed, DependencyUnavailable,
// TranscodeFailed, ProviderFailed or UnexpectedFailure, and still pass
// through Cleaned and Responded.
package pipeline
