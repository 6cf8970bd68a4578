package toolchain

// Tier identifies where a candidate path came from.
type Tier string

const (
	TierConfigured Tier = "configured"
	TierPath       Tier = "path"
	TierBundled    Tier = "bundled"
)

// Candidate is one probed location and its outcome.
type Candidate struct {
	Tier  Tier   `json:"tier"`
	Path  string `json:"path"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Resolution is the outcome of resolving the executable.
type Resolution struct {
	Candidates []Candidate `json:"candidates,omitempty"`
	Path       string      `json:"path,omitempty"`
	Version    string      `json:"version,omitempty"`
	Reason     string      `json:"reason,omitempty"`
}

// Available reports whether an executable was found.
func (r Resolution) Available() bool {
	return r.Path != ""
}

// ReasonWaitTimedOut is reported when a caller gave up waiting on an
// in-flight resolution.
const ReasonWaitTimedOut = "resolution in progress: wait timed out"

func unavailable(reason string) Resolution {
	return Resolution{Reason: reason}
}
