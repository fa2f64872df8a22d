package di

import (
	"fmt"
	"reflect"

	"github.com/kbukum/minject/errors"
)

// Lazy is a dependency injected with InjectLazy. Nothing is computed until
// the first Get; the result is then cached with the same rules as Memoized.
//
// Declare lazy fields as *di.Lazy[T] in the dependency struct.
type Lazy[T any] struct {
	key  Key
	cell *Memoized
}

// NewLazy returns a lazy value backed by p.
func NewLazy[T any](key Key, p Producer) *Lazy[T] {
	l := &Lazy[T]{}
	l.bind(key, p)
	return l
}

// lazyBinder lets the injector fill a *Lazy[T] of any T through reflection.
type lazyBinder interface {
	bind(key Key, p Producer)
}

func (l *Lazy[T]) bind(key Key, p Producer) {
	l.key = key
	l.cell = NewMemoized(p)
}

// Get computes the value on first use and returns it.
func (l *Lazy[T]) Get() (T, error) {
	var zero T
	if l == nil || l.cell == nil {
		return zero, errors.Internal(fmt.Errorf("lazy dependency used before injection"))
	}
	v, err := l.cell.Call()
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	out, ok := v.(T)
	if !ok {
		return zero, errors.TypeMismatch(string(l.key), reflect.TypeFor[T]().String(), fmt.Sprintf("%T", v))
	}
	return out, nil
}

// MustGet is Get that panics on error.
func (l *Lazy[T]) MustGet() T {
	v, err := l.Get()
	if err != nil {
		panic(fmt.Sprintf("di: lazy %s: %v", l.key, err))
	}
	return v
}

// Resolved reports whether the value has been computed.
func (l *Lazy[T]) Resolved() bool {
	return l != nil && l.cell != nil && l.cell.Computed()
}

// Key returns the binding key the value is resolved from.
func (l *Lazy[T]) Key() Key {
	return l.key
}
