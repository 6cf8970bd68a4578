// Package version exposes build information for the voiceingest binary.
//
// Values are injected at link time:
//
//	go build -ldflags "-X github.com/kbukum/voiceingest/version.Version=1.4.0"
//
// Fields left empty are filled from runtime/debug build info when the
// binary was built from a VCS checkout.
package version
