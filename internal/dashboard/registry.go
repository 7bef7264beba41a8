// Package dashboard binds control values to output callbacks and describes
// the page layout.
package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrUnknownOutput = errors.New("unknown output")
	ErrMissingInput  = errors.New("missing input value")
	ErrDuplicate     = errors.New("output already registered")
)

// Input names one watched control property, e.g. site-dropdown.value.
type Input struct {
	ID       string `json:"id"`
	Property string `json:"property"`
}

func (i Input) String() string {
	return i.ID + "." + i.Property
}

// InputValue is the current value of an Input as sent by the page.
type InputValue struct {
	ID       string          `json:"id"`
	Property string          `json:"property"`
	Value    json.RawMessage `json:"value"`
}

// Callback computes an output from its input values, given in the order the
// inputs were registered.
type Callback func(values []json.RawMessage) (interface{}, error)

// Host is the contract a page runtime offers for binding callbacks.
type Host interface {
	Register(inputs []Input, output string, fn Callback) error
}

type binding struct {
	inputs []Input
	fn     Callback
}

// Registry is the in-process Host. Register everything before serving.
type Registry struct {
	mu       sync.RWMutex
	bindings map[string]binding
}

func NewRegistry() *Registry {
	return &Registry{bindings: make(map[string]binding)}
}

// Register binds fn to output. Each output has exactly one callback.
func (r *Registry) Register(inputs []Input, output string, fn Callback) error {
	if output == "" {
		return errors.New("register callback: empty output")
	}
	if len(inputs) == 0 {
		return fmt.Errorf("register callback %s: no inputs", output)
	}
	if fn == nil {
		return fmt.Errorf("register callback %s: nil callback", output)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bindings[output]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, output)
	}
	r.bindings[output] = binding{inputs: append([]Input(nil), inputs...), fn: fn}
	return nil
}

// Dispatch runs the callback for output with the supplied values. Values
// for inputs the callback does not watch are ignored.
func (r *Registry) Dispatch(output string, values []InputValue) (interface{}, error) {
	r.mu.RLock()
	b, ok := r.bindings[output]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOutput, output)
	}

	byInput := make(map[Input]json.RawMessage, len(values))
	for _, v := range values {
		byInput[Input{ID: v.ID, Property: v.Property}] = v.Value
	}

	args := make([]json.RawMessage, len(b.inputs))
	for i, in := range b.inputs {
		v, ok := byInput[in]
		if !ok {
			return nil, fmt.Errorf("%w: %s for %s", ErrMissingInput, in, output)
		}
		args[i] = v
	}
	return b.fn(args)
}

// Binding describes a registered callback for the page.
type Binding struct {
	Output string  `json:"output"`
	Inputs []Input `json:"inputs"`
}

// Outputs lists the registered callbacks sorted by output.
func (r *Registry) Outputs() []Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Binding, 0, len(r.bindings))
	for name, b := range r.bindings {
		out = append(out, Binding{Output: name, Inputs: append([]Input(nil), b.inputs...)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Output < out[j].Output })
	return out
}
