package di

import (
	"fmt"
	"maps"
	"reflect"
	"runtime"

	"github.com/kbukum/minject/errors"
	"github.com/kbukum/minject/reader"
)

// InjectMode selects how resolved dependencies are handed to the injected
// function.
type InjectMode int

const (
	// InjectEager passes the resolved value; it is computed before the
	// function runs.
	InjectEager InjectMode = iota
	// InjectModeLazy passes a *Lazy[T] that computes the value on first Get.
	InjectModeLazy
	// InjectModeFunc passes an accessor func() T or func() (T, error) that
	// computes the value when called.
	InjectModeFunc
)

func (m InjectMode) String() string {
	switch m {
	case InjectEager:
		return "eager"
	case InjectModeLazy:
		return "lazy"
	case InjectModeFunc:
		return "func"
	default:
		return fmt.Sprintf("InjectMode(%d)", int(m))
	}
}

// Binding maps a field of the dependency struct to the key it is resolved
// from.
type Binding struct {
	Field string
	Key   Key
}

// Bind declares that field is resolved from key.
func Bind(field string, key Key) Binding {
	return Binding{Field: field, Key: key}
}

// Args are explicit values for dependency struct fields. They take
// precedence over injected values.
type Args map[string]any

var (
	errorType      = reflect.TypeFor[error]()
	lazyBinderType = reflect.TypeFor[lazyBinder]()
)

// Injected is a function whose dependencies are resolved from a
// VariableEnvironment. The function has the shape
//
//	func(recv *R[, deps D]) [V][, error]
//
// where D is a struct whose fields are named by the bindings. The value
// bound for the target key is V when the function returns one, otherwise
// the receiver itself.
type Injected struct {
	fn       reflect.Value
	name     string
	recvType reflect.Type
	depsType reflect.Type
	fields   map[string]reflect.StructField
	bindings []Binding
	mode     InjectMode

	returnsValue bool
	returnsError bool
}

// Inject declares fn with eagerly resolved dependencies. It fails with
// INVALID_INJECTION when fn does not fit the expected shape.
func Inject(fn any, bindings ...Binding) (*Injected, error) {
	return newInjected(fn, InjectEager, bindings)
}

// InjectLazy declares fn with dependencies passed as *Lazy[T] fields.
func InjectLazy(fn any, bindings ...Binding) (*Injected, error) {
	return newInjected(fn, InjectModeLazy, bindings)
}

// InjectFunc declares fn with dependencies passed as accessor functions.
func InjectFunc(fn any, bindings ...Binding) (*Injected, error) {
	return newInjected(fn, InjectModeFunc, bindings)
}

// MustInject is Inject that panics on error, for package-level declarations.
func MustInject(fn any, bindings ...Binding) *Injected {
	return must(Inject(fn, bindings...))
}

// MustInjectLazy is InjectLazy that panics on error.
func MustInjectLazy(fn any, bindings ...Binding) *Injected {
	return must(InjectLazy(fn, bindings...))
}

// MustInjectFunc is InjectFunc that panics on error.
func MustInjectFunc(fn any, bindings ...Binding) *Injected {
	return must(InjectFunc(fn, bindings...))
}

func must(i *Injected, err error) *Injected {
	if err != nil {
		panic(err)
	}
	return i
}

func newInjected(fn any, mode InjectMode, bindings []Binding) (*Injected, error) {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return nil, errors.InvalidInjection(fmt.Sprintf("%T is not a function", fn))
	}
	t := v.Type()
	name := runtime.FuncForPC(v.Pointer()).Name()
	invalid := func(format string, args ...any) (*Injected, error) {
		return nil, errors.InvalidInjection(fmt.Sprintf(format, args...)).
			WithDetail("function", name)
	}

	if t.IsVariadic() {
		return invalid("variadic functions cannot be injected")
	}
	if t.NumIn() == 0 || t.In(0).Kind() != reflect.Pointer {
		return invalid("first parameter of %s must be a pointer receiver", t)
	}

	inj := &Injected{
		fn:       v,
		name:     name,
		recvType: t.In(0),
		fields:   make(map[string]reflect.StructField, len(bindings)),
		bindings: append([]Binding(nil), bindings...),
		mode:     mode,
	}

	switch t.NumIn() {
	case 1:
		if len(bindings) > 0 {
			return invalid("%s declares bindings but takes no dependency struct", t)
		}
	case 2:
		if t.In(1).Kind() != reflect.Struct {
			return invalid("second parameter of %s must be a dependency struct", t)
		}
		inj.depsType = t.In(1)
	default:
		return invalid("%s must take a receiver and at most one dependency struct", t)
	}

	switch t.NumOut() {
	case 0:
	case 1:
		if t.Out(0) == errorType {
			inj.returnsError = true
		} else {
			inj.returnsValue = true
		}
	case 2:
		if t.Out(1) != errorType {
			return invalid("second result of %s must be error", t)
		}
		inj.returnsValue = true
		inj.returnsError = true
	default:
		return invalid("%s returns too many values", t)
	}

	for _, b := range bindings {
		if b.Field == "" || b.Key == "" {
			return invalid("binding %q -> %q must name a field and a key", b.Field, b.Key)
		}
		if _, dup := inj.fields[b.Field]; dup {
			return invalid("field %s is bound twice", b.Field)
		}
		f, err := inj.field(b.Field)
		if err != nil {
			return nil, err.WithDetail("function", name)
		}
		if err := checkFieldMode(f, mode); err != nil {
			return nil, err.WithDetail("function", name)
		}
		inj.fields[b.Field] = f
	}

	return inj, nil
}

func (i *Injected) field(name string) (reflect.StructField, *errors.AppError) {
	f, ok := i.depsType.FieldByName(name)
	if !ok {
		return f, errors.InvalidInjection(fmt.Sprintf("%s has no field %s", i.depsType, name))
	}
	if !f.IsExported() || len(f.Index) != 1 {
		return f, errors.InvalidInjection(fmt.Sprintf("%s.%s must be an exported direct field", i.depsType, name))
	}
	return f, nil
}

func checkFieldMode(f reflect.StructField, mode InjectMode) *errors.AppError {
	switch mode {
	case InjectModeLazy:
		if f.Type.Kind() != reflect.Pointer || !f.Type.Implements(lazyBinderType) {
			return errors.InvalidInjection(fmt.Sprintf("lazy field %s must be a *di.Lazy[T], got %s", f.Name, f.Type))
		}
	case InjectModeFunc:
		ft := f.Type
		ok := ft.Kind() == reflect.Func && ft.NumIn() == 0 &&
			(ft.NumOut() == 1 || (ft.NumOut() == 2 && ft.Out(1) == errorType))
		if !ok {
			return errors.InvalidInjection(fmt.Sprintf("func field %s must be func() T or func() (T, error), got %s", f.Name, f.Type))
		}
	}
	return nil
}

// Mode returns how dependencies are passed.
func (i *Injected) Mode() InjectMode { return i.mode }

// Bindings returns the declared bindings in resolution order.
func (i *Injected) Bindings() []Binding {
	return append([]Binding(nil), i.bindings...)
}

// Pending binds the injection to recv. recv must have the type of the
// function's first parameter; optional Args override injected fields.
func (i *Injected) Pending(recv any, args ...Args) Pending {
	rv := reflect.ValueOf(recv)
	if !rv.IsValid() || rv.Type() != i.recvType || rv.IsNil() {
		err := errors.InvalidInput("receiver", fmt.Sprintf("%s needs a non-nil %s, got %T", i.name, i.recvType, recv))
		return Pending{run: func(Target) (*VariableEnvironment, error) { return nil, err }}
	}

	overrides := Args{}
	for _, a := range args {
		maps.Copy(overrides, a)
	}
	return Pending{run: i.pipeline(rv, overrides)}
}

// PendingWith is Pending with a single set of overrides.
func (i *Injected) PendingWith(recv any, args Args) Pending {
	return i.Pending(recv, args)
}

// Constructor returns a class constructor that allocates a fresh receiver
// for every construction and injects into it.
func (i *Injected) Constructor() Constructor {
	return func() Construction {
		return i.Pending(reflect.New(i.recvType.Elem()).Interface())
	}
}

// injection is the environment threaded through the binding steps: the
// target being built and the dependency values collected so far.
type injection struct {
	target Target
	deps   map[string]reflect.Value
}

// pipeline folds one reader.Local step per binding around the final step
// that binds the producer. Bindings resolve in declaration order, each one
// against the environment left by the previous.
func (i *Injected) pipeline(recv reflect.Value, overrides Args) reader.Reader[Target, *VariableEnvironment] {
	r := reader.Ask(func(st injection) reader.Reader[injection, *VariableEnvironment] {
		produce := i.producer(st.target.Key, recv, st.deps, overrides)
		return reader.Unit[injection](st.target.Env.AddCallable(st.target.Key, produce))
	})

	for idx := len(i.bindings) - 1; idx >= 0; idx-- {
		r = reader.Local[injection, *VariableEnvironment](i.step(i.bindings[idx]))(r)
	}

	return reader.WithEnv(func(t Target) (injection, error) {
		return injection{target: t, deps: map[string]reflect.Value{}}, nil
	}, r)
}

func (i *Injected) step(b Binding) func(injection) (injection, error) {
	field := i.fields[b.Field]
	return func(st injection) (injection, error) {
		env, err := st.target.Env.Provide(b.Key)
		if err != nil {
			return st, err
		}

		var val reflect.Value
		switch i.mode {
		case InjectModeLazy:
			lz := reflect.New(field.Type.Elem())
			lz.Interface().(lazyBinder).bind(b.Key, env.selector(b.Key))
			val = lz
		case InjectModeFunc:
			val = accessor(b.Key, field.Type, env.selector(b.Key))
		default:
			v, err := env.value(b.Key)
			if err != nil {
				return st, err
			}
			if val, err = assign(b.Key, v, field.Type); err != nil {
				return st, err
			}
		}

		deps := make(map[string]reflect.Value, len(st.deps)+1)
		maps.Copy(deps, st.deps)
		deps[b.Field] = val
		return injection{target: Target{Key: st.target.Key, Env: env}, deps: deps}, nil
	}
}

func (i *Injected) producer(key Key, recv reflect.Value, deps map[string]reflect.Value, overrides Args) Producer {
	return func() (any, error) {
		in := []reflect.Value{recv}
		if i.depsType != nil {
			d := reflect.New(i.depsType).Elem()
			for name, v := range deps {
				d.Field(i.fields[name].Index[0]).Set(v)
			}
			for name, v := range overrides {
				f, ferr := i.field(name)
				if ferr != nil {
					return nil, ferr
				}
				fv, err := assign(Key(name), v, f.Type)
				if err != nil {
					return nil, err
				}
				d.Field(f.Index[0]).Set(fv)
			}
			in = append(in, d)
		} else if len(overrides) > 0 {
			return nil, errors.InvalidInput("args", fmt.Sprintf("%s takes no dependency struct", i.name))
		}

		out := i.fn.Call(in)
		if i.returnsError {
			if errV := out[len(out)-1]; !errV.IsNil() {
				return nil, errors.ConstructionFailed(string(key), errV.Interface().(error))
			}
		}
		if i.returnsValue {
			return out[0].Interface(), nil
		}
		return recv.Interface(), nil
	}
}

// assign converts v into a value of type t, failing with TYPE_MISMATCH when
// v is not assignable. nil becomes the zero value.
func assign(key Key, v any, t reflect.Type) (reflect.Value, error) {
	dst := reflect.New(t).Elem()
	if v == nil {
		return dst, nil
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(t) {
		return dst, errors.TypeMismatch(string(key), t.String(), rv.Type().String())
	}
	dst.Set(rv)
	return dst, nil
}

// accessor builds a func() T or func() (T, error) reading from sel. The
// single-result form panics on failure.
func accessor(key Key, ft reflect.Type, sel Producer) reflect.Value {
	return reflect.MakeFunc(ft, func([]reflect.Value) []reflect.Value {
		v, err := sel()
		out := reflect.New(ft.Out(0)).Elem()
		if err == nil {
			out, err = assign(key, v, ft.Out(0))
		}
		if ft.NumOut() == 1 {
			if err != nil {
				panic(fmt.Sprintf("di: accessor for %s: %v", key, err))
			}
			return []reflect.Value{out}
		}
		errV := reflect.New(errorType).Elem()
		if err != nil {
			errV.Set(reflect.ValueOf(err))
			out = reflect.New(ft.Out(0)).Elem()
		}
		return []reflect.Value{out, errV}
	})
}
