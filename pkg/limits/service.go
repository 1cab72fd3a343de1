package limits

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Service gates countable actions against the user's plan limits.
//
// Call discipline: CanConsume is checked before the corresponding external
// effect (send, AI call, template creation) and Consume is applied after the
// effect succeeds. Under-counting on a crash between the two is acceptable;
// charging a user for work that never happened is not.
type Service interface {
	// CanConsume returns nil iff used + n <= limit for the resource.
	// A storage failure denies the action (fail closed) with
	// ErrUsageUnavailable rather than silently allowing it.
	CanConsume(ctx context.Context, userID uuid.UUID, res Resource, n int64) error

	// Consume atomically applies the given deltas to the user's counters.
	// It must only be called after the consuming action succeeded.
	Consume(ctx context.Context, userID uuid.UUID, deltas Deltas) error

	// GetUsage returns the current usage and limit for a resource.
	GetUsage(ctx context.Context, userID uuid.UUID, res Resource) (used, limit int64, err error)

	// GetAllUsage returns usage for every resource the user's plan limits.
	GetAllUsage(ctx context.Context, userID uuid.UUID) (map[Resource]UsageInfo, error)
}

// PlanIDResolver resolves the active plan ID for a user.
type PlanIDResolver func(ctx context.Context, userID uuid.UUID) (string, error)

type service struct {
	// plans is immutable after construction; thread-safety relies on that.
	plans    map[string]Plan
	store    UsageStore
	resolver PlanIDResolver
}

// NewService loads plans from src and returns a Service backed by store.
// A nil resolver falls back to the context-based plan resolution.
func NewService(ctx context.Context, src Source, store UsageStore, resolver PlanIDResolver) (Service, error) {
	if src == nil {
		return nil, errors.Join(ErrFailedToLoadPlans, errors.New("plan source cannot be nil"))
	}
	if store == nil {
		return nil, errors.Join(ErrUsageUnavailable, errors.New("usage store cannot be nil"))
	}

	plans, err := src.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}
	if len(plans) == 0 {
		return nil, errors.Join(ErrFailedToLoadPlans, errors.New("no plans configured"))
	}

	if resolver == nil {
		resolver = PlanIDContextResolver
	}

	return &service{plans: plans, store: store, resolver: resolver}, nil
}

func (s *service) CanConsume(ctx context.Context, userID uuid.UUID, res Resource, n int64) error {
	if n < 1 {
		return errors.Join(ErrInvalidBatchSize, fmt.Errorf("batch size %d", n))
	}

	limit, err := s.limitFor(ctx, userID, res)
	if err != nil {
		return err
	}
	if limit == Unlimited {
		return nil
	}

	used, err := s.store.Get(ctx, userID, res)
	if err != nil {
		// Fail closed: an unreadable counter denies the action.
		return errors.Join(ErrUsageUnavailable, err)
	}

	if used+n > limit {
		return fmt.Errorf("%w: %s %d/%d, requested %d", ErrLimitExceeded, res, used, limit, n)
	}
	return nil
}

func (s *service) Consume(ctx context.Context, userID uuid.UUID, deltas Deltas) error {
	for res, delta := range deltas {
		if delta == 0 {
			continue
		}
		if delta < 0 {
			return errors.Join(ErrConsumeFailed, fmt.Errorf("negative delta %d for %s", delta, res))
		}
		if _, err := s.store.IncrementBy(ctx, userID, res, delta); err != nil {
			return errors.Join(ErrConsumeFailed, err)
		}
	}
	return nil
}

func (s *service) GetUsage(ctx context.Context, userID uuid.UUID, res Resource) (int64, int64, error) {
	limit, err := s.limitFor(ctx, userID, res)
	if err != nil {
		return 0, 0, err
	}

	used, err := s.store.Get(ctx, userID, res)
	if err != nil {
		return 0, 0, errors.Join(ErrUsageUnavailable, err)
	}
	return used, limit, nil
}

func (s *service) GetAllUsage(ctx context.Context, userID uuid.UUID) (map[Resource]UsageInfo, error) {
	plan, err := s.planFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make(map[Resource]UsageInfo, len(plan.Limits))
	for res, limit := range plan.Limits {
		info := UsageInfo{Limit: limit}
		if used, err := s.store.Get(ctx, userID, res); err == nil {
			info.Used = used
		}
		// Counter errors leave Used at zero; dashboards degrade, gates don't.
		result[res] = info
	}
	return result, nil
}

func (s *service) planFor(ctx context.Context, userID uuid.UUID) (Plan, error) {
	planID, err := s.resolver(ctx, userID)
	if err != nil {
		return Plan{}, err
	}

	plan, ok := s.plans[planID]
	if !ok {
		return Plan{}, fmt.Errorf("%w: %s", ErrPlanNotFound, planID)
	}
	return plan, nil
}

func (s *service) limitFor(ctx context.Context, userID uuid.UUID, res Resource) (int64, error) {
	plan, err := s.planFor(ctx, userID)
	if err != nil {
		return 0, err
	}

	limit, ok := plan.Limit(res)
	if !ok {
		return 0, fmt.Errorf("%w: %s not in plan %s", ErrInvalidResource, res, plan.ID)
	}
	return limit, nil
}
