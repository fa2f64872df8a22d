package di

import (
	"github.com/kbukum/minject/errors"
	"github.com/kbukum/minject/reader"
)

// Module groups provider registrations. Configure returns a reader that
// extends a provider table; modules compose with reader.Concat or
// reader.Chain.
type Module interface {
	Configure() reader.Reader[ProviderMap, ProviderMap]
}

// ModuleFunc adapts a reader to Module.
type ModuleFunc reader.Reader[ProviderMap, ProviderMap]

// Configure returns f as a reader.
func (f ModuleFunc) Configure() reader.Reader[ProviderMap, ProviderMap] {
	return reader.Reader[ProviderMap, ProviderMap](f)
}

// Modules runs several modules in order. Later registrations for the same key
// replace earlier ones.
type Modules []Module

// Configure chains every module's reader.
func (ms Modules) Configure() reader.Reader[ProviderMap, ProviderMap] {
	rs := make([]reader.Reader[ProviderMap, ProviderMap], 0, len(ms))
	for _, m := range ms {
		rs = append(rs, m.Configure())
	}
	return reader.Chain(rs...)
}

// Provides registers the pending injection under key. The result is a reader
// over the provider table, meant to be combined inside Module.Configure.
//
// Providers registered this way are lazy: nothing runs until the key is
// provided. AsSingleton() makes every environment share the first result.
func Provides(key Key, p Pending, opts ...BindOption) reader.Reader[ProviderMap, ProviderMap] {
	b := bindOptions(opts)
	register := func(m ProviderMap) (ProviderMap, error) {
		if key == "" {
			return nil, errors.InvalidInput("key", "provides needs a key")
		}
		var prov Provider = &pendingProvider{pending: p}
		if b.singleton {
			prov = NewSingletonProvider(prov)
		}
		return m.With(key, prov), nil
	}
	return reader.Local[ProviderMap, ProviderMap](register)(reader.Ask(func(m ProviderMap) reader.Reader[ProviderMap, ProviderMap] {
		return reader.Unit[ProviderMap](m)
	}))
}

// pendingProvider runs a Pending injection for its key on every provide.
type pendingProvider struct {
	pending Pending
}

// Get runs the pending injection for key.
func (p *pendingProvider) Get(key Key) reader.Reader[*VariableEnvironment, *VariableEnvironment] {
	return func(env *VariableEnvironment) (*VariableEnvironment, error) {
		return p.pending.Run(key, env)
	}
}

// Kind returns KindPending.
func (p *pendingProvider) Kind() Kind { return KindPending }
