// Package rule defines the local cellular-automaton update rules agents apply
// to their own state and the states of their current neighbours.
package rule

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// ErrUnknownRule is returned by Lookup for an unregistered name.
var ErrUnknownRule = errors.New("unknown rule")

// State is a binary cell state, 0 or 1.
type State uint8

// Rule computes an agent's next state. Implementations must be pure
// functions of their arguments and must not retain the neighbours slice.
type Rule interface {
	Apply(self State, neighbors []State) State
}

// Func adapts an ordinary function to the Rule interface.
type Func func(self State, neighbors []State) State

// Apply calls f.
func (f Func) Apply(self State, neighbors []State) State {
	return f(self, neighbors)
}

// Identity keeps the current state.
type Identity struct{}

func (Identity) Apply(self State, _ []State) State { return self }

// Majority adopts the state held by the majority of the agent and its
// neighbours. On a tie the agent keeps its own state.
type Majority struct{}

func (Majority) Apply(self State, neighbors []State) State {
	ones := int(self)
	for _, s := range neighbors {
		ones += int(s)
	}
	zeros := len(neighbors) + 1 - ones
	switch {
	case ones > zeros:
		return 1
	case zeros > ones:
		return 0
	default:
		return self
	}
}

// AlwaysOne ignores its inputs and returns 1.
type AlwaysOne struct{}

func (AlwaysOne) Apply(State, []State) State { return 1 }

// AlwaysZero ignores its inputs and returns 0.
type AlwaysZero struct{}

func (AlwaysZero) Apply(State, []State) State { return 0 }

var (
	registryMu sync.RWMutex
	registry   = map[string]Rule{
		"identity": Identity{},
		"majority": Majority{},
		"one":      AlwaysOne{},
		"zero":     AlwaysZero{},
	}
)

// Register makes r available to Lookup under name. Registering an existing
// name replaces it.
func Register(name string, r Rule) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || r == nil {
		return
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = r
}

// Lookup returns the rule registered under name (case-insensitive).
func Lookup(name string) (Rule, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	r, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (valid: %s)", ErrUnknownRule, name, strings.Join(namesLocked(), ", "))
	}
	return r, nil
}

// Names returns the registered rule names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return namesLocked()
}

func namesLocked() []string {
	return slices.Sorted(maps.Keys(registry))
}
