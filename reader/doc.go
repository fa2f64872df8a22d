// Package reader provides a value-level reader monad: a computation that
// depends on an immutable environment.
//
// Readers are plain functions from an environment to a value (or an error)
// and compose through Unit, Ask, Asks, Local, Concat and WithEnv. They carry
// no hidden state, so the same Reader may be run any number of times against
// different environments.
//
// # Usage
//
//	r := reader.Asks(
//	    func(env Config) string { return env.Name },
//	    func(name string) reader.Reader[Config, string] { return reader.Unit[Config]("hello " + name) },
//	)
//	greeting, err := r.Run(cfg)
package reader
