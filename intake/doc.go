// Package intake turns a multipart upload into a temporary audio file plus
// the identity of the caller who sent it.
//
// Every check that can reject the request runs before anything is written
// to disk. The temp file is registered with the request's cleanup scope as
// soon as it exists.
package intake
