// Package component defines lifecycle-managed infrastructure (database,
// redis, HTTP server) and the registry that starts them in order, stops
// them in reverse, and aggregates their health.
//
// Checks that have no lifecycle of their own, such as whether the
// transcoder executable resolved, are added with Registry.AddCheck and
// reported alongside the components.
package component
