package di

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/kbukum/minject/errors"
	"github.com/kbukum/minject/logger"
)

// VariableEnvironment is an immutable snapshot of resolved bindings paired
// with the provider table used to resolve the rest. Every write returns a
// new environment; the receiver is never modified.
type VariableEnvironment struct {
	variables map[Key]Producer
	providers ProviderMap
	path      *resolution
	scope     string
	observer  Observer
	log       *logger.Logger
}

// resolution is the chain of keys currently being provided, innermost first.
type resolution struct {
	key    Key
	parent *resolution
	depth  int
}

func (r *resolution) contains(key Key) bool {
	for ; r != nil; r = r.parent {
		if r.key == key {
			return true
		}
	}
	return false
}

func (r *resolution) len() int {
	if r == nil {
		return 0
	}
	return r.depth
}

// chain lists the path from the outermost key, ending with next.
func (r *resolution) chain(next Key) []string {
	out := []string{string(next)}
	for ; r != nil; r = r.parent {
		out = append(out, string(r.key))
	}
	slices.Reverse(out)
	return out
}

// NewVariableEnvironment returns an empty environment over providers.
// Most callers obtain one from ProviderEnvironment.Provide instead.
func NewVariableEnvironment(providers ProviderMap) *VariableEnvironment {
	return &VariableEnvironment{
		variables: map[Key]Producer{},
		providers: providers,
		log:       logger.Get("di"),
	}
}

// Add returns an environment with key bound to p. If key is already bound
// the receiver is returned unchanged: the first writer wins.
func (e *VariableEnvironment) Add(key Key, p Producer) *VariableEnvironment {
	if _, ok := e.variables[key]; ok {
		return e
	}
	vars := make(map[Key]Producer, len(e.variables)+1)
	maps.Copy(vars, e.variables)
	vars[key] = p

	next := *e
	next.variables = vars
	return &next
}

// AddCallable binds key to a producer.
func (e *VariableEnvironment) AddCallable(key Key, p Producer) *VariableEnvironment {
	return e.Add(key, p)
}

// AddObject binds key to a fixed value.
func (e *VariableEnvironment) AddObject(key Key, v any) *VariableEnvironment {
	return e.Add(key, Constant(v))
}

// Contains reports whether key is resolved in this environment.
func (e *VariableEnvironment) Contains(key Key) bool {
	_, ok := e.variables[key]
	return ok
}

// Lookup returns the raw producer bound to key. Call it to obtain the value.
func (e *VariableEnvironment) Lookup(key Key) (Producer, bool) {
	p, ok := e.variables[key]
	return p, ok
}

// Keys returns the resolved keys in sorted order.
func (e *VariableEnvironment) Keys() []Key {
	return slices.Sorted(maps.Keys(e.variables))
}

// Providers returns the provider table this environment resolves from.
func (e *VariableEnvironment) Providers() ProviderMap {
	return e.providers
}

// Scope returns the id shared by every environment derived from the same
// ProviderEnvironment.Provide call.
func (e *VariableEnvironment) Scope() string {
	return e.scope
}

// Depth returns how many Provide calls are in progress around this
// environment. It is zero outside of provider code.
func (e *VariableEnvironment) Depth() int {
	return e.path.len()
}

// Provide resolves key and returns an environment in which it is bound.
//
// An already bound key returns the receiver. Otherwise the registered
// provider runs against the receiver, which may recursively provide the
// key's own dependencies. A key without provider fails with
// MISSING_PROVIDER; a key that is already being provided further up the
// chain fails with CYCLIC_DEPENDENCY.
func (e *VariableEnvironment) Provide(key Key) (*VariableEnvironment, error) {
	if e.Contains(key) {
		return e, nil
	}

	p, ok := e.providers[key]
	if !ok {
		err := errors.MissingProvider(string(key))
		if e.path != nil {
			err = err.WithDetail("required_by", string(e.path.key))
		}
		return nil, err
	}
	if e.path.contains(key) {
		return nil, errors.CyclicDependency(e.path.chain(key))
	}

	inner := *e
	inner.path = &resolution{key: key, parent: e.path, depth: e.path.len() + 1}

	start := time.Now()
	out, err := p.Get(key).Run(&inner)
	e.report(key, p, start, err)
	if err != nil {
		return nil, err
	}
	if out == nil || !out.Contains(key) {
		return nil, errors.Internal(fmt.Errorf("provider for %q did not bind its key", key))
	}

	resolved := *out
	resolved.path = e.path
	return &resolved, nil
}

// GetOnce provides key and immediately calls its producer, returning the
// value rather than the environment.
func (e *VariableEnvironment) GetOnce(key Key) (any, error) {
	env, err := e.Provide(key)
	if err != nil {
		return nil, err
	}
	return env.value(key)
}

func (e *VariableEnvironment) value(key Key) (any, error) {
	p, ok := e.Lookup(key)
	if !ok {
		return nil, errors.MissingProvider(string(key))
	}
	return p()
}

// selector defers reading key from e until the returned producer is called.
func (e *VariableEnvironment) selector(key Key) Producer {
	return func() (any, error) {
		return e.value(key)
	}
}

func (e *VariableEnvironment) report(key Key, p Provider, start time.Time, err error) {
	d := time.Since(start)
	kind := Describe(key, p).Kind

	if e.observer != nil {
		e.observer.OnResolve(ResolveEvent{
			Scope:    e.scope,
			Key:      key,
			Kind:     kind,
			Depth:    e.path.len() + 1,
			Start:    start,
			Duration: d,
			Err:      err,
		})
	}

	if e.log == nil {
		return
	}
	if err != nil {
		if e.path != nil {
			return
		}
		e.log.Warn("binding resolution failed", logger.MergeWithError(logger.Fields(
			logger.FieldKey, string(key),
			logger.FieldScope, e.scope,
		), err))
		return
	}
	if e.log.Enabled(zerolog.DebugLevel) {
		fields := logger.DurationFields("provide", d)
		fields[logger.FieldKey] = string(key)
		fields[logger.FieldKind] = string(kind)
		fields[logger.FieldScope] = e.scope
		fields[logger.FieldDepth] = e.path.len() + 1
		e.log.Debug("binding resolved", fields)
	}
}
