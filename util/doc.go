// Package util holds small helpers shared across packages: size parsing,
// secret masking, and string selection.
package util
