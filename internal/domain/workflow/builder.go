package workflow

import "fmt"

// MachineBuilder assembles the transition table before freezing it into a Machine
type MachineBuilder struct {
	edges map[Status][]edge
}

// StatusConfiguration configures outgoing transitions for one status
type StatusConfiguration struct {
	builder *MachineBuilder
	from    Status
}

// NewBuilder creates an empty machine builder
func NewBuilder() *MachineBuilder {
	return &MachineBuilder{
		edges: make(map[Status][]edge),
	}
}

// Configure returns the configuration for the given status, creating it on first use.
// Panics on an unknown status: the table is assembled at startup from constants,
// so a bad status here is a programming error.
func (b *MachineBuilder) Configure(status Status) *StatusConfiguration {
	if !status.IsValid() {
		panic(fmt.Sprintf("workflow: configuring unknown status %q", status))
	}
	return &StatusConfiguration{builder: b, from: status}
}

// Permit adds a legal transition from the configured status to the target
func (c *StatusConfiguration) Permit(trigger Trigger, to Status) *StatusConfiguration {
	if !to.IsValid() {
		panic(fmt.Sprintf("workflow: permitting unknown target status %q", to))
	}
	c.builder.edges[c.from] = append(c.builder.edges[c.from], edge{to: to, trigger: trigger})
	return c
}

// Build freezes the configured transitions into an immutable Machine
func (b *MachineBuilder) Build() *Machine {
	frozen := make(map[Status][]edge, len(b.edges))
	for status, edges := range b.edges {
		frozen[status] = append([]edge{}, edges...)
	}
	return &Machine{edges: frozen}
}
