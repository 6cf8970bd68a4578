// Package process runs external executables under supervision.
//
// Each child runs in its own process group. When the context ends, the group
// receives SIGTERM and, after a grace period, SIGKILL. Standard output and
// error are captured for diagnostics.
package process
