package di

import (
	"github.com/kbukum/minject/errors"
	"github.com/kbukum/minject/reader"
)

// Construction is the outcome of calling a Constructor: either a finished
// instance (Built) or a Pending injection that still has dependencies to
// resolve.
type Construction interface {
	construct(key Key, env *VariableEnvironment) (*VariableEnvironment, error)
}

// Constructor allocates a new instance for a class binding.
type Constructor func() Construction

// Built marks v as fully constructed; it is bound as is.
func Built(v any) Construction {
	return built{value: v}
}

type built struct {
	value any
}

func (b built) construct(key Key, env *VariableEnvironment) (*VariableEnvironment, error) {
	return env.AddObject(key, b.value), nil
}

// Plain returns a constructor for a type without injected dependencies. Each
// construction allocates a new zero *T.
func Plain[T any]() Constructor {
	return func() Construction {
		return Built(new(T))
	}
}

// Target is the environment a Pending runs against: the key its result is
// bound to and the environment to resolve dependencies from.
type Target struct {
	Key Key
	Env *VariableEnvironment
}

// Pending is an injection bound to a receiver but not yet run. Running it
// resolves the declared dependencies and binds a producer for the target key
// that calls the injected function.
type Pending struct {
	run reader.Reader[Target, *VariableEnvironment]
}

// Run resolves dependencies against env and binds the result under key.
func (p Pending) Run(key Key, env *VariableEnvironment) (*VariableEnvironment, error) {
	if p.run == nil {
		return nil, errors.InvalidInput(string(key), "empty pending injection")
	}
	return p.run(Target{Key: key, Env: env})
}

// Reader exposes the pipeline as a reader over Target.
func (p Pending) Reader() reader.Reader[Target, *VariableEnvironment] {
	return p.run
}

func (p Pending) construct(key Key, env *VariableEnvironment) (*VariableEnvironment, error) {
	return p.Run(key, env)
}
