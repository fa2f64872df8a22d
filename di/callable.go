package di

import (
	"context"
	"fmt"
	"reflect"

	"github.com/kbukum/minject/errors"
)

var contextType = reflect.TypeFor[context.Context]()

// Callable adapts a constructor function to a Producer. Supported shapes:
//
//	func() T
//	func() (T, error)
//	func(context.Context) T
//	func(context.Context) (T, error)
//
// Context-aware constructors receive context.Background().
func Callable(fn any) (Producer, error) {
	return CallableContext(context.Background(), fn)
}

// CallableContext is Callable with the context passed to context-aware
// constructors.
func CallableContext(ctx context.Context, fn any) (Producer, error) {
	if p, ok := fn.(Producer); ok {
		return p, nil
	}
	if p, ok := fn.(func() (any, error)); ok {
		return p, nil
	}

	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return nil, errors.InvalidInput("constructor", fmt.Sprintf("constructor must be a function, got %T", fn))
	}
	t := v.Type()

	var in []reflect.Value
	switch {
	case t.NumIn() == 0:
	case t.NumIn() == 1 && t.In(0) == contextType:
		in = []reflect.Value{reflect.ValueOf(&ctx).Elem()}
	default:
		return nil, errors.InvalidInput("constructor", fmt.Sprintf("unsupported constructor parameters %s", t))
	}

	switch {
	case t.NumOut() == 1 && t.Out(0) != errorType:
	case t.NumOut() == 2 && t.Out(1) == errorType:
	default:
		return nil, errors.InvalidInput("constructor", fmt.Sprintf("constructor must return (instance) or (instance, error), got %s", t))
	}

	return func() (any, error) {
		return constructorResults(v.Call(in))
	}, nil
}

func constructorResults(results []reflect.Value) (any, error) {
	if len(results) == 2 && !results[1].IsNil() {
		return nil, results[1].Interface().(error)
	}
	return results[0].Interface(), nil
}
