package config

import (
	"fmt"
	"os"

	"github.com/kbukum/minject/di"
	"github.com/kbukum/minject/errors"
)

// BindingKind selects how a configured binding produces its value.
type BindingKind string

const (
	// BindingObject binds Value as is.
	BindingObject BindingKind = "object"
	// BindingEnv reads the environment variable Env when resolved, falling
	// back to Value when the variable is unset.
	BindingEnv BindingKind = "env"
)

// Binding declares a provider in configuration.
//
//	bindings:
//	  - key: greeting
//	    value: hello
//	  - key: database_url
//	    kind: env
//	    env: DATABASE_URL
//	    lazy: true
type Binding struct {
	Key       string      `yaml:"key" mapstructure:"key" validate:"required"`
	Kind      BindingKind `yaml:"kind" mapstructure:"kind" validate:"oneof=object env"`
	Value     any         `yaml:"value" mapstructure:"value"`
	Env       string      `yaml:"env" mapstructure:"env" validate:"required_if=Kind env"`
	Singleton bool        `yaml:"singleton" mapstructure:"singleton"`
	Lazy      bool        `yaml:"lazy" mapstructure:"lazy"`
}

// ApplyDefaults sets the kind to object when unset.
func (b *Binding) ApplyDefaults() {
	if b.Kind == "" {
		b.Kind = BindingObject
	}
}

func (b Binding) options() []di.BindOption {
	var opts []di.BindOption
	if b.Singleton {
		opts = append(opts, di.AsSingleton())
	}
	if b.Lazy {
		opts = append(opts, di.AsLazy())
	}
	return opts
}

// Provider builds the provider described by b.
func (b Binding) Provider() (di.Provider, error) {
	var p di.Provider
	switch b.Kind {
	case BindingObject, "":
		p = di.NewObjectProvider(b.Value)
	case BindingEnv:
		p = di.NewCallableProvider(b.lookupEnv)
	default:
		return nil, errors.InvalidInput("kind", fmt.Sprintf("unknown binding kind %q for %q", b.Kind, b.Key))
	}
	return di.Wrap(p, b.options()...), nil
}

func (b Binding) lookupEnv() (any, error) {
	if v, ok := os.LookupEnv(b.Env); ok {
		return v, nil
	}
	if b.Value != nil {
		return b.Value, nil
	}
	return nil, errors.InvalidInput("env", fmt.Sprintf("environment variable %s is not set", b.Env)).
		WithDetail("key", b.Key)
}

// BindingsModule registers every configured binding, in order.
func BindingsModule(bindings []Binding) di.Module {
	return di.ModuleFunc(func(m di.ProviderMap) (di.ProviderMap, error) {
		for _, b := range bindings {
			if b.Key == "" {
				return nil, errors.InvalidInput("key", "binding key must not be empty")
			}
			p, err := b.Provider()
			if err != nil {
				return nil, err
			}
			m = m.With(di.Key(b.Key), p)
		}
		return m, nil
	})
}
