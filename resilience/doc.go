// Package resilience provides the two guards the pipeline puts around its
// external dependencies:
//
//   - CircuitBreaker fails fast once the speech-to-text provider keeps failing.
//   - Bulkhead caps how many transcoder processes run at once.
//
// Neither retries. A request that is rejected fails immediately and the
// client decides whether to try again.
package resilience
