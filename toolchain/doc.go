// Package toolchain locates an external executable once per process and
// shares the result with every caller.
//
// Resolution tries, in order, an explicitly configured path, the bare name
// on PATH, and a bundled fallback. Each candidate is probed by running it
// with a version flag. The first candidate that exits cleanly with output
// wins. Callers never poll: they wait on the in-flight resolution for at
// most Config.WaitTimeout.
package toolchain
