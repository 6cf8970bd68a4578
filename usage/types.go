package usage

import "time"

// KindSTT tags speech-to-text attempts.
const KindSTT = "stt"

// dayLayout formats a UTC calendar day.
const dayLayout = "2006-01-02"

// Attempt is one logical, billable attempt.
type Attempt struct {
	Identity       string
	IdempotencyKey string
	Kind           string
	At             time.Time
}

// Day returns the UTC calendar day of the attempt.
func (a Attempt) Day() string {
	return Day(a.At)
}

// Day formats t as a UTC calendar day.
func Day(t time.Time) string {
	return t.UTC().Format(dayLayout)
}

// Usage is the current count against a limit. Limit -1 means unlimited.
type Usage struct {
	Used  int64 `json:"used"`
	Limit int64 `json:"limit"`
}

// Outcome reports what RecordTranscription did. Usage is set whenever a
// write was attempted.
type Outcome struct {
	Recorded        bool
	AlreadyRecorded bool
	Skipped         bool
	Usage           *Usage
}
