package di

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/kbukum/minject/errors"
	"github.com/kbukum/minject/reader"
)

// Kind identifies the provider variant behind a binding.
type Kind string

const (
	KindCallable  Kind = "callable"
	KindObject    Kind = "object"
	KindClass     Kind = "class"
	KindPending   Kind = "provides"
	KindSingleton Kind = "singleton"
	KindEager     Kind = "eager"
)

// Provider knows how to bind a value for a key. Get returns a reader that,
// run against an environment, yields that environment extended with the key.
type Provider interface {
	Get(key Key) reader.Reader[*VariableEnvironment, *VariableEnvironment]
	Kind() Kind
}

// producerOf reads the producer bound to key from the environment it runs
// against.
func producerOf(key Key) reader.Reader[*VariableEnvironment, Producer] {
	return reader.Ask(func(env *VariableEnvironment) reader.Reader[*VariableEnvironment, Producer] {
		p, ok := env.Lookup(key)
		if !ok {
			return func(*VariableEnvironment) (Producer, error) {
				return nil, errors.Internal(fmt.Errorf("provider for %q did not bind its key", key))
			}
		}
		return reader.Unit[*VariableEnvironment](p)
	})
}

// resolveProducer runs inner for key and returns the producer it bound. The
// environment inner produced is dropped.
func resolveProducer(inner Provider, key Key, env *VariableEnvironment) (Producer, error) {
	return reader.Local[*VariableEnvironment, Producer](inner.Get(key))(producerOf(key)).Run(env)
}

// constructionFailed wraps errors from user code with the key being built.
func constructionFailed(key Key, p Producer) Producer {
	return func() (any, error) {
		v, err := p()
		if err != nil {
			return nil, errors.ConstructionFailed(string(key), err)
		}
		return v, nil
	}
}

// CallableProvider binds a factory. Every run creates a fresh memoized cell,
// so values are never shared between environments.
type CallableProvider struct {
	factory Producer
}

// NewCallableProvider wraps factory.
func NewCallableProvider(factory Producer) *CallableProvider {
	return &CallableProvider{factory: factory}
}

// Get binds a fresh memoized cell over the factory for key.
func (p *CallableProvider) Get(key Key) reader.Reader[*VariableEnvironment, *VariableEnvironment] {
	return func(env *VariableEnvironment) (*VariableEnvironment, error) {
		cell := NewMemoized(constructionFailed(key, p.factory))
		return env.AddCallable(key, cell.Call), nil
	}
}

// Kind returns KindCallable.
func (p *CallableProvider) Kind() Kind { return KindCallable }

// ObjectProvider binds a precomputed value.
type ObjectProvider struct {
	value any
}

// NewObjectProvider wraps v.
func NewObjectProvider(v any) *ObjectProvider {
	return &ObjectProvider{value: v}
}

// Get binds the stored value for key.
func (p *ObjectProvider) Get(key Key) reader.Reader[*VariableEnvironment, *VariableEnvironment] {
	return func(env *VariableEnvironment) (*VariableEnvironment, error) {
		return env.AddObject(key, p.value), nil
	}
}

// Kind returns KindObject.
func (p *ObjectProvider) Kind() Kind { return KindObject }

// ClassProvider builds a new instance on every run. The constructor either
// returns a finished instance or a Pending injection, which then resolves
// its dependencies against the environment and binds its own result.
type ClassProvider struct {
	constructor Constructor
}

// NewClassProvider wraps c.
func NewClassProvider(c Constructor) *ClassProvider {
	return &ClassProvider{constructor: c}
}

// Get calls the constructor and binds the new instance for key.
func (p *ClassProvider) Get(key Key) reader.Reader[*VariableEnvironment, *VariableEnvironment] {
	return func(env *VariableEnvironment) (*VariableEnvironment, error) {
		if p.constructor == nil {
			return nil, errors.InvalidInput(string(key), "class binding has no constructor")
		}
		return p.constructor().construct(key, env)
	}
}

// Kind returns KindClass.
func (p *ClassProvider) Kind() Kind { return KindClass }

// SingletonProvider resolves the wrapped provider the first time it runs and
// keeps the resulting memoized producer for its own lifetime. Every later
// run, in any environment, binds that same producer.
type SingletonProvider struct {
	inner Provider

	mu   sync.Mutex
	cell atomic.Pointer[Memoized]
}

// NewSingletonProvider wraps inner.
func NewSingletonProvider(inner Provider) *SingletonProvider {
	return &SingletonProvider{inner: inner}
}

// Get binds the shared cell for key, resolving the wrapped provider on
// first use.
func (p *SingletonProvider) Get(key Key) reader.Reader[*VariableEnvironment, *VariableEnvironment] {
	return func(env *VariableEnvironment) (*VariableEnvironment, error) {
		cell, err := p.resolve(key, env)
		if err != nil {
			return nil, err
		}
		return env.AddCallable(key, cell.Call), nil
	}
}

func (p *SingletonProvider) resolve(key Key, env *VariableEnvironment) (*Memoized, error) {
	if cell := p.cell.Load(); cell != nil {
		return cell, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if cell := p.cell.Load(); cell != nil {
		return cell, nil
	}
	producer, err := resolveProducer(p.inner, key, env)
	if err != nil {
		return nil, err
	}
	cell := NewMemoized(producer)
	p.cell.Store(cell)
	return cell, nil
}

// Kind returns KindSingleton.
func (p *SingletonProvider) Kind() Kind { return KindSingleton }

// Unwrap returns the wrapped provider.
func (p *SingletonProvider) Unwrap() Provider { return p.inner }

// Initialized reports whether the singleton's value has been computed.
func (p *SingletonProvider) Initialized() bool {
	_, ok := p.Value()
	return ok
}

// Value returns the cached value of the singleton. It never runs the
// constructor; ok is false until some resolve has computed the value.
func (p *SingletonProvider) Value() (any, bool) {
	cell := p.cell.Load()
	if cell == nil {
		return nil, false
	}
	return cell.Peek()
}

// NonLazyProvider resolves the wrapped provider and calls its producer
// straight away, binding the computed value. Dependencies the wrapped
// provider resolved along the way are not kept in the returned environment.
type NonLazyProvider struct {
	inner Provider
}

// NewNonLazyProvider wraps inner.
func NewNonLazyProvider(inner Provider) *NonLazyProvider {
	return &NonLazyProvider{inner: inner}
}

// Get computes the wrapped provider's value and binds it as an object.
func (p *NonLazyProvider) Get(key Key) reader.Reader[*VariableEnvironment, *VariableEnvironment] {
	return func(env *VariableEnvironment) (*VariableEnvironment, error) {
		producer, err := resolveProducer(p.inner, key, env)
		if err != nil {
			return nil, err
		}
		v, err := producer()
		if err != nil {
			return nil, err
		}
		return env.AddObject(key, v), nil
	}
}

// Kind returns KindEager.
func (p *NonLazyProvider) Kind() Kind { return KindEager }

// Unwrap returns the wrapped provider.
func (p *NonLazyProvider) Unwrap() Provider { return p.inner }

// BindingInfo describes a registered binding for introspection.
type BindingInfo struct {
	Key         Key  `json:"key"`
	Kind        Kind `json:"kind"`
	Lazy        bool `json:"lazy"`
	Singleton   bool `json:"singleton"`
	Initialized bool `json:"initialized"`
}

// Describe unwraps the eager and singleton wrappers around p.
func Describe(key Key, p Provider) BindingInfo {
	info := BindingInfo{Key: key, Lazy: true}
	for p != nil {
		switch v := p.(type) {
		case *NonLazyProvider:
			info.Lazy = false
			p = v.inner
		case *SingletonProvider:
			info.Singleton = true
			info.Initialized = v.Initialized()
			p = v.inner
		default:
			info.Kind = p.Kind()
			p = nil
		}
	}
	return info
}

// singletonOf returns the first SingletonProvider in p's wrapper chain.
func singletonOf(p Provider) *SingletonProvider {
	for p != nil {
		switch v := p.(type) {
		case *SingletonProvider:
			return v
		case *NonLazyProvider:
			p = v.inner
		default:
			return nil
		}
	}
	return nil
}
