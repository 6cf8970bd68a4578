// Package cleanup tracks temporary files created while serving one request
// and removes all of them exactly once when the request unwinds.
package cleanup

import (
	"errors"
	"io/fs"
	"os"
	"sync"

	"github.com/kbukum/voiceingest/logger"
)

// Scope owns the temporary files of a single request.
type Scope struct {
	log *logger.Logger

	mu     sync.Mutex
	paths  []string
	seen   map[string]struct{}
	closed bool

	once sync.Once
	done chan struct{}
}

// NewScope creates an empty scope.
func NewScope(log *logger.Logger) *Scope {
	if log == nil {
		log = logger.Nop()
	}
	return &Scope{
		log:  log,
		seen: make(map[string]struct{}),
		done: make(chan struct{}),
	}
}

// Track registers path for removal. Tracking the same path twice is a
// no-op. Paths tracked after Close are removed immediately.
func (s *Scope) Track(path string) {
	if path == "" {
		return
	}
	s.mu.Lock()
	if _, ok := s.seen[path]; ok {
		s.mu.Unlock()
		return
	}
	s.seen[path] = struct{}{}
	if s.closed {
		s.mu.Unlock()
		s.remove(path)
		return
	}
	s.paths = append(s.paths, path)
	s.mu.Unlock()
}

// Paths returns a snapshot of the tracked paths.
func (s *Scope) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.paths))
	copy(out, s.paths)
	return out
}

// Close removes every tracked file in the background. Only the first call
// has any effect; it never blocks on the filesystem.
func (s *Scope) Close() {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		paths := s.paths
		s.paths = nil
		s.mu.Unlock()

		go func() {
			defer close(s.done)
			for _, p := range paths {
				s.remove(p)
			}
		}()
	})
}

// Wait blocks until the removal started by Close has finished.
func (s *Scope) Wait() {
	<-s.done
}

func (s *Scope) remove(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.log.Warn("failed to remove temp file", logger.Fields(logger.FieldPath, path, logger.FieldError, err.Error()))
		return
	}
	s.log.Debug("temp file removed", logger.Fields(logger.FieldPath, path))
}
