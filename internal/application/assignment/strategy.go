package assignment

// Strategy selects one officer among the eligible set for a stage
type Strategy string

const (
	// StrategyRandom picks uniformly among eligible officers (default)
	StrategyRandom Strategy = "RANDOM"
	// StrategyRoundRobin picks the least-recently-assigned officer
	StrategyRoundRobin Strategy = "ROUND_ROBIN"
	// StrategyWorkloadBased picks the officer with the fewest open applications
	StrategyWorkloadBased Strategy = "WORKLOAD_BASED"
	// StrategyPriorityBased picks by configured officer priority order
	StrategyPriorityBased Strategy = "PRIORITY_BASED"
)

// IsValid returns true for one of the four selection strategies
func (s Strategy) IsValid() bool {
	switch s {
	case StrategyRandom, StrategyRoundRobin, StrategyWorkloadBased, StrategyPriorityBased:
		return true
	}
	return false
}

// String returns the string representation of the strategy
func (s Strategy) String() string {
	return string(s)
}
