package limits

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

type planIDCtxKey struct{}

// SetPlanIDToContext stores the resolved plan ID in the context so downstream
// quota checks do not need another subscription lookup.
func SetPlanIDToContext(ctx context.Context, planID string) context.Context {
	return context.WithValue(ctx, planIDCtxKey{}, planID)
}

// GetPlanIDFromContext retrieves the plan ID from the context, if present.
func GetPlanIDFromContext(ctx context.Context) (string, bool) {
	planID, ok := ctx.Value(planIDCtxKey{}).(string)
	return planID, ok
}

// PlanIDContextResolver is the default resolver: reads the plan ID from the
// request context or fails.
func PlanIDContextResolver(ctx context.Context, _ uuid.UUID) (string, error) {
	planID, ok := GetPlanIDFromContext(ctx)
	if !ok {
		return "", errors.Join(ErrPlanNotFound, ErrPlanIDNotInContext)
	}
	return planID, nil
}
