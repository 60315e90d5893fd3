package workflow

import "fmt"

// Machine is the single source of truth for legal status transitions. It is
// stateless and safe to share between goroutines: callers pass the current
// status explicitly and every transition, including administrative overrides,
// must pass through IsLegal/Apply.
type Machine struct {
	edges map[Status][]edge
}

type edge struct {
	to      Status
	trigger Trigger
}

// IsLegal reports whether the transition from -> to is in the table
func (m *Machine) IsLegal(from, to Status) bool {
	for _, e := range m.edges[from] {
		if e.to == to {
			return true
		}
	}
	return false
}

// Apply validates the transition from -> to and returns the new status.
// The caller owns persisting the result; Apply itself mutates nothing.
func (m *Machine) Apply(from, to Status) (Status, error) {
	if !to.IsValid() {
		return from, fmt.Errorf("%w: %s", ErrInvalidStatus, to)
	}
	if !m.IsLegal(from, to) {
		return from, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	return to, nil
}

// TriggerFor returns the trigger label of the from -> to edge, for history records
func (m *Machine) TriggerFor(from, to Status) (Trigger, bool) {
	for _, e := range m.edges[from] {
		if e.to == to {
			return e.trigger, true
		}
	}
	return "", false
}

// Targets returns all statuses reachable from the given status
func (m *Machine) Targets(from Status) []Status {
	targets := make([]Status, 0, len(m.edges[from]))
	for _, e := range m.edges[from] {
		targets = append(targets, e.to)
	}
	return targets
}

// Statuses returns every status that has at least one outgoing edge
func (m *Machine) Statuses() []Status {
	statuses := make([]Status, 0, len(m.edges))
	for s := range m.edges {
		statuses = append(statuses, s)
	}
	return statuses
}
