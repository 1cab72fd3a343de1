package limits

// Plan describes a subscription tier and the per-period ceilings it grants.
type Plan struct {
	ID          string             `yaml:"id"`
	Name        string             `yaml:"name"`
	Description string             `yaml:"description"`
	Limits      map[Resource]int64 `yaml:"limits"`
	Public      bool               `yaml:"public"`
}

// Limit returns the ceiling for a resource and whether the plan defines one.
func (p Plan) Limit(res Resource) (int64, bool) {
	limit, ok := p.Limits[res]
	return limit, ok
}
