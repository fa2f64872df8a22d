package di

import (
	"fmt"
	"io"
	"reflect"
	"sync"

	"github.com/kbukum/minject/errors"
	"github.com/kbukum/minject/logger"
)

// RegistrationMode determines how a container registration is resolved
type RegistrationMode int

const (
	ModeEager    RegistrationMode = iota // Constructed on registration
	ModeLazy                             // Constructed on first resolve, then shared
	ModeInstance                         // Pre-created instance
	ModeClass                            // Constructor binding
	ModeModule                           // Registered by an installed module
)

func (m RegistrationMode) String() string {
	switch m {
	case ModeEager:
		return "eager"
	case ModeLazy:
		return "lazy"
	case ModeInstance:
		return "instance"
	case ModeClass:
		return "class"
	case ModeModule:
		return "module"
	default:
		return fmt.Sprintf("RegistrationMode(%d)", int(m))
	}
}

// MarshalText encodes the mode by name.
func (m RegistrationMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// RegistrationInfo describes a registered component for introspection.
type RegistrationInfo struct {
	BindingInfo
	Mode RegistrationMode `json:"mode"`
}

// Container is a mutable registry over a ProviderEnvironment, for bootstrap
// code that registers components one at a time. Each Resolve provides the
// key in a fresh VariableEnvironment, so only singleton registrations are
// shared between calls.
type Container struct {
	mu     sync.RWMutex
	env    *ProviderEnvironment
	modes  map[Key]RegistrationMode
	closed bool
	log    *logger.Logger
}

var sourceType = reflect.TypeFor[Source]()

// NewContainer creates an empty container. Options apply to the underlying
// ProviderEnvironment.
func NewContainer(opts ...Option) *Container {
	env := NewProviderEnvironment(opts...)
	log := env.log
	if log == nil {
		log = logger.Nop()
	}
	return &Container{
		env:   env,
		modes: make(map[Key]RegistrationMode),
		log:   log,
	}
}

// Register registers a component with lazy loading (most common case).
func (c *Container) Register(key Key, constructor any) error {
	return c.RegisterLazy(key, constructor)
}

// RegisterLazy registers a constructor that runs on the first Resolve. The
// result is shared by every later Resolve. Constructors may take a Source to
// resolve their own dependencies from the container.
func (c *Container) RegisterLazy(key Key, constructor any) error {
	p, err := c.producer(constructor)
	if err != nil {
		return err.WithDetail("key", string(key))
	}
	return c.update(key, ModeLazy, func(env *ProviderEnvironment) (*ProviderEnvironment, error) {
		return env.AddCallable(key, p, AsLazy(), AsSingleton()), nil
	})
}

// RegisterEager runs the constructor immediately and registers its result.
// Nothing is registered when the constructor fails.
func (c *Container) RegisterEager(key Key, constructor any) error {
	p, perr := c.producer(constructor)
	if perr != nil {
		return perr.WithDetail("key", string(key))
	}
	instance, err := p()
	if err != nil {
		return errors.ConstructionFailed(string(key), err)
	}

	if err := c.update(key, ModeEager, func(env *ProviderEnvironment) (*ProviderEnvironment, error) {
		return env.AddObject(key, instance, AsLazy()), nil
	}); err != nil {
		return err
	}
	c.log.Info("Eager component initialized", logger.Fields(logger.FieldKey, string(key)))
	return nil
}

// RegisterSingleton registers a pre-created instance.
func (c *Container) RegisterSingleton(key Key, instance any) error {
	return c.update(key, ModeInstance, func(env *ProviderEnvironment) (*ProviderEnvironment, error) {
		return env.AddObject(key, instance, AsLazy()), nil
	})
}

// RegisterClass registers a constructor binding. Without options every
// Resolve builds a new instance.
func (c *Container) RegisterClass(key Key, ctor Constructor, opts ...BindOption) error {
	if ctor == nil {
		return errors.InvalidInput("constructor", "class constructor is nil").WithDetail("key", string(key))
	}
	return c.update(key, ModeClass, func(env *ProviderEnvironment) (*ProviderEnvironment, error) {
		return env.AddClass(key, ctor, append([]BindOption{AsLazy()}, opts...)...), nil
	})
}

// Install applies a module's registrations.
func (c *Container) Install(m Module) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errClosed()
	}
	before := c.env.providers
	env, err := c.env.AddModule(m)
	if err != nil {
		return err
	}
	for k, p := range env.providers {
		if prev, ok := before[k]; !ok || prev != p {
			c.modes[k] = ModeModule
		}
	}
	c.env = env
	return nil
}

func (c *Container) update(key Key, mode RegistrationMode, fn func(*ProviderEnvironment) (*ProviderEnvironment, error)) error {
	if key == "" {
		return errors.InvalidInput("key", "registration key is empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errClosed()
	}
	env, err := fn(c.env)
	if err != nil {
		return err
	}
	c.env = env
	c.modes[key] = mode
	return nil
}

// producer adapts constructor, additionally accepting func(Source) T and
// func(Source) (T, error) which resolve dependencies through the container.
func (c *Container) producer(constructor any) (Producer, *errors.AppError) {
	v := reflect.ValueOf(constructor)
	if v.Kind() == reflect.Func && !v.IsNil() && v.Type().NumIn() == 1 && v.Type().In(0) == sourceType {
		t := v.Type()
		ok := (t.NumOut() == 1 && t.Out(0) != errorType) || (t.NumOut() == 2 && t.Out(1) == errorType)
		if !ok {
			return nil, errors.InvalidInput("constructor", fmt.Sprintf("constructor must return (instance) or (instance, error), got %s", t))
		}
		in := []reflect.Value{reflect.ValueOf(Source(c))}
		return func() (any, error) {
			return constructorResults(v.Call(in))
		}, nil
	}

	p, err := Callable(constructor)
	if err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			return nil, appErr
		}
		return nil, errors.Internal(err)
	}
	return p, nil
}

func errClosed() *errors.AppError {
	return errors.Internal(fmt.Errorf("container is closed"))
}

// Environment returns a snapshot of the current provider table.
func (c *Container) Environment() *ProviderEnvironment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.env
}

// Resolve gets a component instance.
func (c *Container) Resolve(key Key) (any, error) {
	c.mu.RLock()
	env, closed := c.env, c.closed
	c.mu.RUnlock()

	if closed {
		return nil, errClosed()
	}
	return env.Provide().GetOnce(key)
}

// GetOnce is Resolve, so the container can be used as a Source.
func (c *Container) GetOnce(key Key) (any, error) {
	return c.Resolve(key)
}

// MustResolve is Resolve that panics on error.
func (c *Container) MustResolve(key Key) any {
	instance, err := c.Resolve(key)
	if err != nil {
		panic(err)
	}
	return instance
}

// Registrations returns info about all registered components for
// introspection, sorted by key.
func (c *Container) Registrations() []RegistrationInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	bindings := c.env.Bindings()
	result := make([]RegistrationInfo, 0, len(bindings))
	for _, b := range bindings {
		mode := c.modes[b.Key]
		if mode == ModeEager || mode == ModeInstance {
			b.Initialized = true
		}
		result = append(result, RegistrationInfo{BindingInfo: b, Mode: mode})
	}
	return result
}

// Instances returns the values already built by the container, keyed by
// binding key. Lazy components that were never resolved are absent.
func (c *Container) Instances() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]any)
	for key, p := range c.env.providers {
		if v, ok := initializedValue(p); ok {
			out[string(key)] = v
		}
	}
	return out
}

// Close closes every initialized component that implements io.Closer, in
// reverse key order, and rejects further use of the container. Errors from
// all closers are joined.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	keys := c.env.Keys()
	var errs []error
	for i := len(keys) - 1; i >= 0; i-- {
		key := keys[i]
		instance, ok := initializedValue(c.env.providers[key])
		if !ok {
			continue
		}
		closer, ok := instance.(io.Closer)
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			c.log.Warn("Failed to close component", logger.MergeWithError(logger.Fields(logger.FieldKey, string(key)), err))
			errs = append(errs, errors.ConstructionFailed(string(key), err).WithDetail("operation", "close"))
		}
	}
	return errors.Join(errs...)
}

// initializedValue returns the value held by an initialized singleton or an
// object binding. It never runs a constructor.
func initializedValue(p Provider) (any, bool) {
	if s := singletonOf(p); s != nil {
		return s.Value()
	}
	for p != nil {
		switch v := p.(type) {
		case *NonLazyProvider:
			p = v.inner
		case *ObjectProvider:
			return v.value, v.value != nil
		default:
			return nil, false
		}
	}
	return nil, false
}
