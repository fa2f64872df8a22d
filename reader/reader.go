package reader

// Reader is a computation that produces a V from an environment E.
type Reader[E, V any] func(env E) (V, error)

// Run applies the reader to env.
func (r Reader[E, V]) Run(env E) (V, error) {
	return r(env)
}

// Transformer maps a reader to another reader over the same environment.
type Transformer[E, V any] func(Reader[E, V]) Reader[E, V]

// Unit returns a reader that ignores its environment and yields v.
func Unit[E, V any](v V) Reader[E, V] {
	return func(E) (V, error) {
		return v, nil
	}
}

// Ask builds the next reader from the current environment and runs it
// against that same environment.
func Ask[E, V any](mf func(env E) Reader[E, V]) Reader[E, V] {
	return func(env E) (V, error) {
		return mf(env)(env)
	}
}

// Asks extracts a value from the environment, builds a reader from it and
// runs that reader against the environment.
func Asks[E, A, V any](mv func(env E) A, mf func(a A) Reader[E, V]) Reader[E, V] {
	return func(env E) (V, error) {
		return mf(mv(env))(env)
	}
}

// Local returns a transformer that rewrites the environment with ef before
// running the wrapped reader. An error from ef stops the pipeline.
func Local[E, V any](ef func(env E) (E, error)) Transformer[E, V] {
	return func(r Reader[E, V]) Reader[E, V] {
		return func(env E) (V, error) {
			next, err := ef(env)
			if err != nil {
				var zero V
				return zero, err
			}
			return r(next)
		}
	}
}

// Concat sequences two environment transformers, feeding the output of f1
// into f2.
func Concat[E any](f1, f2 func(env E) (E, error)) Reader[E, E] {
	return func(env E) (E, error) {
		next, err := f1(env)
		if err != nil {
			return next, err
		}
		return f2(next)
	}
}

// Chain concatenates any number of environment transformers. An empty chain
// is the identity.
func Chain[E any](fs ...Reader[E, E]) Reader[E, E] {
	out := Identity[E]()
	for _, f := range fs {
		out = Concat(out, f)
	}
	return out
}

// Identity returns the environment unchanged.
func Identity[E any]() Reader[E, E] {
	return func(env E) (E, error) {
		return env, nil
	}
}

// WithEnv runs r against an environment derived from the outer one. It is
// Local for the case where the inner environment has a different type.
func WithEnv[E1, E2, V any](f func(env E1) (E2, error), r Reader[E2, V]) Reader[E1, V] {
	return func(env E1) (V, error) {
		inner, err := f(env)
		if err != nil {
			var zero V
			return zero, err
		}
		return r(inner)
	}
}

// Map applies f to the value produced by r.
func Map[E, A, B any](r Reader[E, A], f func(A) B) Reader[E, B] {
	return func(env E) (B, error) {
		a, err := r(env)
		if err != nil {
			var zero B
			return zero, err
		}
		return f(a), nil
	}
}

// Bind feeds the value produced by r into f and runs the resulting reader
// against the same environment.
func Bind[E, A, B any](r Reader[E, A], f func(A) Reader[E, B]) Reader[E, B] {
	return func(env E) (B, error) {
		a, err := r(env)
		if err != nil {
			var zero B
			return zero, err
		}
		return f(a)(env)
	}
}
