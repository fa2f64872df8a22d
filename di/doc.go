// Package di resolves dependencies by threading an immutable environment
// through reader pipelines.
//
// Providers are registered on a ProviderEnvironment. Provide starts a scope
// as an empty VariableEnvironment; resolving a key runs its provider, which
// may resolve further keys, and returns a new environment holding the
// result. Environments are never modified in place.
//
// # Registration
//
//	env := di.NewProviderEnvironment().
//	    AddObject("dsn", "postgres://localhost/app").
//	    AddCallable("clock", func() (any, error) { return time.Now(), nil }, di.AsLazy()).
//	    AddClass("repo", newRepo.Constructor(), di.AsSingleton())
//
// By default the value is computed as soon as its key is provided.
// AsLazy defers it until it is read, AsSingleton shares it across scopes.
//
// # Injection
//
//	type Repo struct{ dsn string }
//	type repoDeps struct{ DSN string }
//
//	var newRepo = di.MustInject(func(r *Repo, d repoDeps) {
//	    r.dsn = d.DSN
//	}, di.Bind("DSN", "dsn"))
//
// InjectLazy passes *Lazy[T] fields and InjectFunc passes accessor
// functions instead of resolved values.
//
// # Resolution
//
//	repo := di.MustResolve[*Repo](env.Provide(), "repo")
package di
