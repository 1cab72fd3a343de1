package limits

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"

	"gopkg.in/yaml.v3"
)

// Source defines how plans are loaded into the limits service.
type Source interface {
	Load(ctx context.Context) (map[string]Plan, error)
}

// inMemSource serves a fixed plan map, mainly for tests and defaults.
type inMemSource struct {
	plans map[string]Plan
}

// NewInMemSource returns a Source backed by a deep copy of the given plans.
func NewInMemSource(plans map[string]Plan) Source {
	plansCopy := make(map[string]Plan, len(plans))
	for id, plan := range plans {
		plan.Limits = maps.Clone(plan.Limits)
		plansCopy[id] = plan
	}
	return &inMemSource{plans: plansCopy}
}

func (s *inMemSource) Load(ctx context.Context) (map[string]Plan, error) {
	plansCopy := make(map[string]Plan, len(s.plans))
	for id, plan := range s.plans {
		plan.Limits = maps.Clone(plan.Limits)
		plansCopy[id] = plan
	}
	return plansCopy, nil
}

// fileSource loads plan definitions from a YAML file at startup. Plan files
// are deployed alongside the service so tier changes do not require a code
// change.
type fileSource struct {
	path string
}

// NewFileSource returns a Source that reads plans from a YAML file.
func NewFileSource(path string) Source {
	return &fileSource{path: path}
}

func (s *fileSource) Load(ctx context.Context) (map[string]Plan, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}
	return ParsePlans(data)
}

// ParsePlans decodes a YAML plan list keyed by plan ID:
//
//	free:
//	  name: Free
//	  limits:
//	    schools_sent: 20
//	    templates: 3
//	    ai_calls: 5
//	pro:
//	  name: Pro
//	  limits:
//	    schools_sent: -1
func ParsePlans(data []byte) (map[string]Plan, error) {
	var raw map[string]Plan
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	plans := make(map[string]Plan, len(raw))
	for id, plan := range raw {
		plan.ID = id
		for res, limit := range plan.Limits {
			if limit < Unlimited {
				return nil, errors.Join(ErrInvalidPlanConfiguration,
					fmt.Errorf("plan %s: resource %s has invalid limit %d", id, res, limit))
			}
		}
		plans[id] = plan
	}
	return plans, nil
}
