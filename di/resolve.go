package di

import (
	"fmt"
	"reflect"

	"github.com/kbukum/minject/errors"
)

// Source is anything a value can be read from by key: a VariableEnvironment
// or a Container.
type Source interface {
	GetOnce(key Key) (any, error)
}

// MustResolve resolves key with type safety, panics on error.
// Use this in bootstrap code where a missing dependency is fatal.
//
// Example:
//
//	db := di.MustResolve[*sql.DB](env, "database")
func MustResolve[T any](s Source, key Key) T {
	v, err := Resolve[T](s, key)
	if err != nil {
		panic(fmt.Sprintf("di: failed to resolve %s: %v", key, err))
	}
	return v
}

// Resolve resolves key and asserts the value to T. A nil value yields the
// zero T; a value of another type fails with TYPE_MISMATCH.
//
// Example:
//
//	cfg, err := di.Resolve[*Config](env, "config")
//	if err != nil {
//	    return fmt.Errorf("load config: %w", err)
//	}
func Resolve[T any](s Source, key Key) (T, error) {
	var zero T
	v, err := s.GetOnce(key)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	out, ok := v.(T)
	if !ok {
		return zero, errors.TypeMismatch(string(key), reflect.TypeFor[T]().String(), fmt.Sprintf("%T", v))
	}
	return out, nil
}

// TryResolve resolves an optional dependency. It returns false when the key
// cannot be resolved or holds another type.
//
// Example:
//
//	if m, ok := di.TryResolve[Metrics](env, "metrics"); ok {
//	    m.Inc("started")
//	}
func TryResolve[T any](s Source, key Key) (T, bool) {
	v, err := Resolve[T](s, key)
	if err != nil {
		return v, false
	}
	return v, true
}
