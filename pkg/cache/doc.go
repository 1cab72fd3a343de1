// Package cache provides a small generic LRU used for read-mostly lookups
// that tolerate invalidate-on-write semantics.
package cache
