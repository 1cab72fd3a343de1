// Package redis bootstraps the Redis client that backs the usage counters:
// URL-based configuration, connect with retry, and a healthcheck closure.
package redis
