package vm

import "github.com/tigrkoshka/karma/specs"

// SandboxPolicy is the set of restrictions the executor enforces on
// user-triggered (non-internal) register and memory accesses.
type SandboxPolicy struct {
	BlockedRegisters      map[specs.Register]bool
	BlockCodeSegment      bool
	BlockConstantsSegment bool
	// MaxStackSize bounds how many words the stack may grow to, measured
	// down from the initial stack pointer. Zero means unbounded.
	MaxStackSize specs.Word
}

// DefaultPolicy blocks nothing and leaves the stack unbounded.
func DefaultPolicy() SandboxPolicy {
	return SandboxPolicy{BlockedRegisters: map[specs.Register]bool{}}
}

// Meet computes the lattice-meet (most restrictive combination) of p and
// override: blocked-register sets are unioned, the segment-block flags
// are OR'd, and MaxStackSize takes the smaller of the two when both are
// bounded.
func (p SandboxPolicy) Meet(override SandboxPolicy) SandboxPolicy {
	blocked := map[specs.Register]bool{}
	for r := range p.BlockedRegisters {
		blocked[r] = true
	}
	for r := range override.BlockedRegisters {
		blocked[r] = true
	}

	maxStack := p.MaxStackSize
	switch {
	case p.MaxStackSize == 0:
		maxStack = override.MaxStackSize
	case override.MaxStackSize != 0 && override.MaxStackSize < maxStack:
		maxStack = override.MaxStackSize
	}

	return SandboxPolicy{
		BlockedRegisters:      blocked,
		BlockCodeSegment:      p.BlockCodeSegment || override.BlockCodeSegment,
		BlockConstantsSegment: p.BlockConstantsSegment || override.BlockConstantsSegment,
		MaxStackSize:          maxStack,
	}
}

// BlockRegister returns a copy of p with reg added to the blocked set;
// used by the fluent-builder style config loaders.
func (p SandboxPolicy) BlockRegister(reg specs.Register) SandboxPolicy {
	blocked := map[specs.Register]bool{reg: true}
	for r := range p.BlockedRegisters {
		blocked[r] = true
	}
	p.BlockedRegisters = blocked
	return p
}
