// Package redis provides a Redis client wrapper built on go-redis with
// structured logging, connection pooling, key namespacing and component
// lifecycle support.
package redis
