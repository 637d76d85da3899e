package colony

import (
	"fmt"
	"math"
	"sort"
)

// ResourceKind identifies a stockpiled resource
type ResourceKind string

const (
	Metal     ResourceKind = "metal"
	Crystal   ResourceKind = "crystal"
	Deuterium ResourceKind = "deuterium"
)

// AllResourceKinds returns all resource kinds in deterministic order
func AllResourceKinds() []ResourceKind {
	return []ResourceKind{Metal, Crystal, Deuterium}
}

// IsValid checks if the resource kind is known
func (k ResourceKind) IsValid() bool {
	switch k {
	case Metal, Crystal, Deuterium:
		return true
	default:
		return false
	}
}

// ParseResourceKind parses a string into a ResourceKind
func ParseResourceKind(s string) (ResourceKind, error) {
	k := ResourceKind(s)
	if !k.IsValid() {
		return "", fmt.Errorf("invalid resource kind: %s", s)
	}
	return k, nil
}

// Cost maps resource kinds to amounts
type Cost map[ResourceKind]float64

// Total returns the sum of all components
func (c Cost) Total() float64 {
	total := 0.0
	for _, v := range c {
		total += v
	}
	return total
}

// Scale returns a new cost multiplied by f
func (c Cost) Scale(f float64) Cost {
	out := make(Cost, len(c))
	for k, v := range c {
		out[k] = v * f
	}
	return out
}

// Floor returns a new cost with every component rounded down to whole units
func (c Cost) Floor() Cost {
	out := make(Cost, len(c))
	for k, v := range c {
		out[k] = math.Floor(v)
	}
	return out
}

// Clone returns a copy of the cost
func (c Cost) Clone() Cost {
	out := make(Cost, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// IsZero reports whether every component is zero
func (c Cost) IsZero() bool {
	for _, v := range c {
		if v != 0 {
			return false
		}
	}
	return true
}

// Kinds returns the resource kinds present in the cost, sorted
func (c Cost) Kinds() []ResourceKind {
	kinds := make([]ResourceKind, 0, len(c))
	for k := range c {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
