package limits

// Resource represents a countable per-user action gated by plan limits.
type Resource string

// Resources consumed by the outreach pipeline.
const (
	ResourceSchoolsSent Resource = "schools_sent"
	ResourceTemplates   Resource = "templates"
	ResourceAICalls     Resource = "ai_calls"
)

// Unlimited marks a resource with no ceiling (-1).
const Unlimited int64 = -1

// UsageInfo contains the current usage and limit for a resource.
type UsageInfo struct {
	Used  int64 `json:"used"`
	Limit int64 `json:"limit"`
}

// Deltas maps resources to the amount consumed by one completed action.
type Deltas map[Resource]int64
