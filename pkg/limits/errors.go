package limits

import "errors"

// Domain errors for quota operations.
var (
	// Plan errors
	ErrPlanNotFound             = errors.New("limits.errors.plan_not_found")
	ErrPlanIDNotInContext       = errors.New("limits.errors.plan_id_not_in_context")
	ErrInvalidPlanConfiguration = errors.New("limits.errors.invalid_plan_configuration")

	// Quota errors. ErrLimitExceeded is surfaced distinctly from delivery
	// errors so callers can prompt a plan upgrade instead of a retry.
	ErrLimitExceeded    = errors.New("limits.errors.limit_exceeded")
	ErrInvalidResource  = errors.New("limits.errors.invalid_resource")
	ErrInvalidBatchSize = errors.New("limits.errors.invalid_batch_size")

	// System errors. ErrUsageUnavailable means the check could not be
	// evaluated; callers must treat it as a denial (fail closed).
	ErrFailedToLoadPlans = errors.New("limits.errors.failed_to_load_plans")
	ErrUsageUnavailable  = errors.New("limits.errors.usage_unavailable")
	ErrConsumeFailed     = errors.New("limits.errors.consume_failed")
)
