// Package transcode decides whether an upload needs conversion and, when it
// does, converts it to 16 kHz mono PCM WAV with an external transcoder.
//
// Formats the speech provider accepts directly pass through untouched.
// Conversion needs a resolved executable; when none is available the
// request fails as a dependency outage rather than silently forwarding the
// original bytes.
package transcode
