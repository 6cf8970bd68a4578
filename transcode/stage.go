package transcode

// Stage is a step inside Prepare.
type Stage int

const (
	StagePassThrough Stage = iota
	StageResolving
	StageTranscoding
	StageVerified
)

func (s Stage) String() string {
	switch s {
	case StagePassThrough:
		return "pass_through"
	case StageResolving:
		return "resolving"
	case StageTranscoding:
		return "transcoding"
	case StageVerified:
		return "verified"
	default:
		return "unknown"
	}
}

// PrepareOption configures one Prepare call.
type PrepareOption func(*prepareOptions)

type prepareOptions struct {
	onStage func(Stage)
}

// WithStageHook calls fn as Prepare enters each stage.
func WithStageHook(fn func(Stage)) PrepareOption {
	return func(o *prepareOptions) { o.onStage = fn }
}

func (o *prepareOptions) enter(s Stage) {
	if o.onStage != nil {
		o.onStage(s)
	}
}
