// Package limits enforces per-plan usage quotas for countable outreach
// actions: schools emailed, templates created, and AI personalization calls.
//
// Plans map resources to per-period ceilings (-1 means unlimited) and are
// loaded once at startup from a Source, either an in-memory map or a YAML file
// deployed with the service. Usage lives in a UsageStore; the Redis-backed
// store keys counters by billing period and relies on INCRBY for atomicity,
// the in-memory store is exact under a mutex.
//
// The consume protocol is check-then-act-then-charge:
//
//	if err := svc.CanConsume(ctx, userID, limits.ResourceSchoolsSent, int64(len(batch))); err != nil {
//	    return err // limits.ErrLimitExceeded prompts an upgrade, not a retry
//	}
//	// ... perform the sends ...
//	_ = svc.Consume(ctx, userID, limits.Deltas{limits.ResourceSchoolsSent: sent})
//
// Because the check and the increment are separate operations, two racing
// consumers of the same user can overshoot the limit by at most one batch in
// the worst case. That is a documented best-effort bound; within a single
// process the in-memory store is exact. A failed check (storage error) always
// denies the action.
package limits
