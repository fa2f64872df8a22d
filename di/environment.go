package di

import (
	"github.com/google/uuid"

	"github.com/kbukum/minject/errors"
	"github.com/kbukum/minject/logger"
)

// ProviderEnvironment is an immutable table of providers. Registration
// returns a new environment; Provide starts a resolution scope over it.
type ProviderEnvironment struct {
	providers ProviderMap
	observer  Observer
	log       *logger.Logger
}

// Option configures a ProviderEnvironment.
type Option func(*ProviderEnvironment)

// WithObserver reports every provider run to o.
func WithObserver(o Observer) Option {
	return func(pe *ProviderEnvironment) {
		pe.observer = o
	}
}

// WithLogger sets the logger used for resolution logs. It defaults to the
// "di" component logger.
func WithLogger(l *logger.Logger) Option {
	return func(pe *ProviderEnvironment) {
		pe.log = l
	}
}

// NewProviderEnvironment returns an environment without providers.
func NewProviderEnvironment(opts ...Option) *ProviderEnvironment {
	pe := &ProviderEnvironment{
		providers: ProviderMap{},
		log:       logger.Get("di"),
	}
	for _, opt := range opts {
		opt(pe)
	}
	return pe
}

// BindOption changes how a registered provider is wrapped.
type BindOption func(*bindConfig)

type bindConfig struct {
	singleton bool
	lazy      bool
}

// AsSingleton shares the first resolution across every environment provided
// from the registration.
func AsSingleton() BindOption {
	return func(c *bindConfig) { c.singleton = true }
}

// AsLazy defers calling the producer until the value is read. Without it the
// value is computed as soon as the key is provided.
func AsLazy() BindOption {
	return func(c *bindConfig) { c.lazy = true }
}

func bindOptions(opts []BindOption) bindConfig {
	var c bindConfig
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// wrap applies the singleton and eager wrappers in that order.
func (c bindConfig) wrap(p Provider) Provider {
	if c.singleton {
		p = NewSingletonProvider(p)
	}
	if !c.lazy {
		p = NewNonLazyProvider(p)
	}
	return p
}

// Wrap applies opts to p the way AddProvider does, for callers building a
// ProviderMap directly inside a module.
func Wrap(p Provider, opts ...BindOption) Provider {
	return bindOptions(opts).wrap(p)
}

// AddProvider registers p under key. A later registration for the same key
// replaces this one.
func (pe *ProviderEnvironment) AddProvider(key Key, p Provider, opts ...BindOption) *ProviderEnvironment {
	return pe.with(pe.providers.With(key, bindOptions(opts).wrap(p)))
}

// AddCallable registers a factory that runs whenever key is provided.
func (pe *ProviderEnvironment) AddCallable(key Key, fn Producer, opts ...BindOption) *ProviderEnvironment {
	return pe.AddProvider(key, NewCallableProvider(fn), opts...)
}

// AddClass registers a constructor. Each provide builds a new instance
// unless AsSingleton() is given.
func (pe *ProviderEnvironment) AddClass(key Key, c Constructor, opts ...BindOption) *ProviderEnvironment {
	return pe.AddProvider(key, NewClassProvider(c), opts...)
}

// AddObject registers a fixed value.
func (pe *ProviderEnvironment) AddObject(key Key, v any, opts ...BindOption) *ProviderEnvironment {
	return pe.AddProvider(key, NewObjectProvider(v), opts...)
}

// AddModule applies m's registrations on top of the current table.
func (pe *ProviderEnvironment) AddModule(m Module) (*ProviderEnvironment, error) {
	if m == nil {
		return nil, errors.InvalidInput("module", "module is nil")
	}
	providers, err := m.Configure().Run(pe.providers.Clone())
	if err != nil {
		return nil, err
	}
	if providers == nil {
		providers = ProviderMap{}
	}
	return pe.with(providers), nil
}

func (pe *ProviderEnvironment) with(providers ProviderMap) *ProviderEnvironment {
	next := *pe
	next.providers = providers
	return &next
}

// Provide returns an empty VariableEnvironment over this table. Every call
// gets its own scope id.
func (pe *ProviderEnvironment) Provide() *VariableEnvironment {
	env := NewVariableEnvironment(pe.providers)
	env.scope = uuid.NewString()
	env.observer = pe.observer
	env.log = pe.log
	return env
}

// Lookup returns the provider registered under key.
func (pe *ProviderEnvironment) Lookup(key Key) (Provider, bool) {
	p, ok := pe.providers[key]
	return p, ok
}

// Keys returns the registered keys in sorted order.
func (pe *ProviderEnvironment) Keys() []Key {
	return pe.providers.Keys()
}

// Providers returns the provider table.
func (pe *ProviderEnvironment) Providers() ProviderMap {
	return pe.providers
}

// Bindings describes every registration, sorted by key.
func (pe *ProviderEnvironment) Bindings() []BindingInfo {
	keys := pe.Keys()
	out := make([]BindingInfo, 0, len(keys))
	for _, k := range keys {
		out = append(out, Describe(k, pe.providers[k]))
	}
	return out
}
