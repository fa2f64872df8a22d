package di

import (
	"fmt"
	"slices"
	"sync/atomic"
	"testing"

	"github.com/kbukum/minject/errors"
)

type plain struct{}

type decoDeps struct {
	Name   string
	hidden string
	L      *Lazy[string]
	F      func() string
}

func errOf(_ *Injected, err error) error { return err }

func TestInjectValidation(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"not a function", errOf(Inject(42))},
		{"nil function", errOf(Inject((func(*plain))(nil)))},
		{"no receiver", errOf(Inject(func() {}))},
		{"value receiver", errOf(Inject(func(p plain) {}))},
		{"variadic", errOf(Inject(func(p *plain, xs ...int) {}))},
		{"deps not a struct", errOf(Inject(func(p *plain, n int) {}))},
		{"too many params", errOf(Inject(func(p *plain, d decoDeps, n int) {}))},
		{"bindings without deps", errOf(Inject(func(p *plain) {}, Bind("Name", "name")))},
		{"unknown field", errOf(Inject(func(p *plain, d decoDeps) {}, Bind("Missing", "name")))},
		{"unexported field", errOf(Inject(func(p *plain, d decoDeps) {}, Bind("hidden", "name")))},
		{"duplicate field", errOf(Inject(func(p *plain, d decoDeps) {}, Bind("Name", "a"), Bind("Name", "b")))},
		{"empty key", errOf(Inject(func(p *plain, d decoDeps) {}, Bind("Name", "")))},
		{"lazy field not Lazy", errOf(InjectLazy(func(p *plain, d decoDeps) {}, Bind("Name", "name")))},
		{"func field not func", errOf(InjectFunc(func(p *plain, d decoDeps) {}, Bind("L", "name")))},
		{"second result not error", errOf(Inject(func(p *plain) (int, int) { return 0, 0 }))},
		{"three results", errOf(Inject(func(p *plain) (int, int, error) { return 0, 0, nil }))},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if !errors.IsCode(tc.err, errors.ErrCodeInvalidInjection) {
				t.Errorf("expected INVALID_INJECTION, got %v", tc.err)
			}
		})
	}
}

func TestInjectValidShapes(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"receiver only", errOf(Inject(func(p *plain) {}))},
		{"returns value", errOf(Inject(func(p *plain) string { return "" }))},
		{"returns error", errOf(Inject(func(p *plain) error { return nil }))},
		{"returns value and error", errOf(Inject(func(p *plain, d decoDeps) (string, error) { return "", nil }, Bind("Name", "name")))},
		{"lazy field", errOf(InjectLazy(func(p *plain, d decoDeps) {}, Bind("L", "name")))},
		{"func field", errOf(InjectFunc(func(p *plain, d decoDeps) {}, Bind("F", "name")))},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err != nil {
				t.Errorf("unexpected error: %v", tc.err)
			}
		})
	}
}

func TestMustInjectPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected MustInject to panic")
		}
	}()
	MustInject("not a function")
}

type Report struct {
	Seen int32
	DB   *Database
}

func TestInjectEagerComputesBeforeBody(t *testing.T) {
	var calls atomic.Int32
	type deps struct{ DB *Database }
	inj := MustInject(func(r *Report, d deps) {
		r.Seen = calls.Load()
		r.DB = d.DB
	}, Bind("DB", "database"))

	pe := NewProviderEnvironment().
		AddCallable("database", databaseFactory(&calls), AsLazy()).
		AddClass("report", inj.Constructor(), AsLazy())

	env, err := pe.Provide().Provide("report")
	if err != nil {
		t.Fatalf("Provide failed: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected dependency computed during provide, got %d calls", calls.Load())
	}

	r := MustResolve[*Report](env, "report")
	if r.Seen != 1 {
		t.Errorf("expected dependency ready when body ran, saw %d calls", r.Seen)
	}
	if r.DB == nil || r.DB.ID != 1 {
		t.Errorf("unexpected injected database %+v", r.DB)
	}
}

func TestInjectLazyDefersUntilGet(t *testing.T) {
	var calls atomic.Int32
	type deps struct{ DB *Lazy[*Database] }
	inj := MustInjectLazy(func(r *Report, d deps) (*Report, error) {
		r.Seen = calls.Load()
		db, err := d.DB.Get()
		r.DB = db
		return r, err
	}, Bind("DB", "database"))

	pe := NewProviderEnvironment().
		AddCallable("database", databaseFactory(&calls), AsLazy()).
		AddClass("report", inj.Constructor(), AsLazy())

	env, err := pe.Provide().Provide("report")
	if err != nil {
		t.Fatalf("Provide failed: %v", err)
	}
	if calls.Load() != 0 {
		t.Errorf("expected nothing computed during provide, got %d calls", calls.Load())
	}

	r := MustResolve[*Report](env, "report")
	if r.Seen != 0 {
		t.Errorf("expected dependency not computed before body, saw %d calls", r.Seen)
	}
	if calls.Load() != 1 || r.DB == nil {
		t.Errorf("expected Get to compute the dependency once, got %d calls", calls.Load())
	}
}

func TestInjectLazyUnusedNeverComputed(t *testing.T) {
	var calls atomic.Int32
	type deps struct{ DB *Lazy[*Database] }
	inj := MustInjectLazy(func(r *Report, d deps) {}, Bind("DB", "database"))

	pe := NewProviderEnvironment().
		AddCallable("database", databaseFactory(&calls), AsLazy()).
		AddClass("report", inj.Constructor())

	MustResolve[*Report](pe.Provide(), "report")
	if calls.Load() != 0 {
		t.Errorf("expected unused lazy dependency never computed, got %d calls", calls.Load())
	}
}

func TestInjectFuncComputesOnCall(t *testing.T) {
	var calls atomic.Int32
	type deps struct {
		DB    func() *Database
		TryDB func() (*Database, error)
	}
	inj := MustInjectFunc(func(r *Report, d deps) error {
		r.Seen = calls.Load()
		r.DB = d.DB()
		other, err := d.TryDB()
		if err != nil {
			return err
		}
		if other != r.DB {
			return fmt.Errorf("accessors disagree")
		}
		return nil
	}, Bind("DB", "database"), Bind("TryDB", "database"))

	pe := NewProviderEnvironment().
		AddCallable("database", databaseFactory(&calls), AsLazy()).
		AddClass("report", inj.Constructor())

	r := MustResolve[*Report](pe.Provide(), "report")
	if r.Seen != 0 {
		t.Errorf("expected dependency not computed before accessor call, saw %d", r.Seen)
	}
	if calls.Load() != 1 {
		t.Errorf("expected a single computation, got %d", calls.Load())
	}
}

func TestInjectFuncAccessorError(t *testing.T) {
	type deps struct{ DB func() (*Database, error) }
	inj := MustInjectFunc(func(r *Report, d deps) error {
		_, err := d.DB()
		return err
	}, Bind("DB", "database"))

	_, err := NewProviderEnvironment().
		AddCallable("database", func() (any, error) { return nil, fmt.Errorf("down") }, AsLazy()).
		AddClass("report", inj.Constructor()).
		Provide().
		GetOnce("report")
	if !errors.IsCode(err, errors.ErrCodeConstructionFailed) {
		t.Fatalf("expected CONSTRUCTION_FAILED, got %v", err)
	}
}

func TestInjectReturnsValueOrReceiver(t *testing.T) {
	type deps struct{ Name string }
	withValue := MustInject(func(p *plain, d deps) string { return "hi " + d.Name }, Bind("Name", "name"))
	withoutValue := MustInject(func(r *Report) {})

	pe := NewProviderEnvironment().
		AddObject("name", "gopher").
		AddClass("greeting", withValue.Constructor()).
		AddClass("report", withoutValue.Constructor())
	env := pe.Provide()

	if v, _ := env.GetOnce("greeting"); v != "hi gopher" {
		t.Errorf("expected function result, got %v", v)
	}
	if _, err := Resolve[*Report](env, "report"); err != nil {
		t.Errorf("expected receiver as result, got %v", err)
	}
}

func TestInjectErrorWrapped(t *testing.T) {
	cause := fmt.Errorf("bad config")
	inj := MustInject(func(r *Report) error { return cause })

	_, err := NewProviderEnvironment().
		AddClass("report", inj.Constructor()).
		Provide().
		GetOnce("report")
	if !errors.IsCode(err, errors.ErrCodeConstructionFailed) {
		t.Fatalf("expected CONSTRUCTION_FAILED, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Error("expected the function error in the chain")
	}
}

func TestInjectTypeMismatch(t *testing.T) {
	type deps struct{ Name string }
	inj := MustInject(func(p *plain, d deps) {}, Bind("Name", "name"))

	_, err := NewProviderEnvironment().
		AddObject("name", 42).
		AddClass("p", inj.Constructor()).
		Provide().
		GetOnce("p")
	if !errors.IsCode(err, errors.ErrCodeTypeMismatch) {
		t.Fatalf("expected TYPE_MISMATCH, got %v", err)
	}
}

func TestInjectNilDependencyIsZero(t *testing.T) {
	type deps struct{ DB *Database }
	inj := MustInject(func(r *Report, d deps) {
		r.DB = d.DB
	}, Bind("DB", "database"))

	r := MustResolve[*Report](NewProviderEnvironment().
		AddObject("database", nil).
		AddClass("report", inj.Constructor()).
		Provide(), "report")
	if r.DB != nil {
		t.Errorf("expected nil database, got %+v", r.DB)
	}
}

func TestInjectBindingOrder(t *testing.T) {
	rec := &recorder{}
	type deps struct{ A, B, C string }
	inj := MustInject(func(p *plain, d deps) string {
		return d.A + d.B + d.C
	}, Bind("C", "c"), Bind("A", "a"), Bind("B", "b"))

	env := NewProviderEnvironment(WithObserver(rec)).
		AddObject("a", "1").
		AddObject("b", "2").
		AddObject("c", "3").
		AddClass("abc", inj.Constructor()).
		Provide()

	v, err := env.GetOnce("abc")
	if err != nil {
		t.Fatalf("GetOnce failed: %v", err)
	}
	if v != "123" {
		t.Errorf("expected '123', got %v", v)
	}
	if got := rec.keys(2); !slices.Equal(got, []Key{"c", "a", "b"}) {
		t.Errorf("expected declaration order c, a, b, got %v", got)
	}
	if !slices.Equal(inj.Bindings(), []Binding{{"C", "c"}, {"A", "a"}, {"B", "b"}}) {
		t.Errorf("unexpected bindings %v", inj.Bindings())
	}
	if inj.Mode() != InjectEager {
		t.Errorf("expected eager mode, got %s", inj.Mode())
	}
}

func TestPendingRun(t *testing.T) {
	type deps struct{ Name string }
	inj := MustInject(func(p *plain, d deps) string { return "hi " + d.Name }, Bind("Name", "name"))

	base := NewProviderEnvironment().AddObject("name", "gopher").Provide()
	env, err := inj.Pending(&plain{}).Run("greeting", base)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !env.Contains("name") {
		t.Error("expected resolved dependency kept in the returned environment")
	}
	if v, _ := env.GetOnce("greeting"); v != "hi gopher" {
		t.Errorf("expected 'hi gopher', got %v", v)
	}
	if base.Contains("greeting") {
		t.Error("expected the base environment untouched")
	}
}

func TestPendingArgsOverride(t *testing.T) {
	type deps struct{ Greeting, Name string }
	inj := MustInject(func(p *plain, d deps) string {
		return d.Greeting + ", " + d.Name
	}, Bind("Greeting", "greeting"), Bind("Name", "name"))

	base := NewProviderEnvironment().
		AddObject("greeting", "hello").
		AddObject("name", "world").
		Provide()

	env, err := inj.PendingWith(&plain{}, Args{"Name": "gopher"}).Run("message", base)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if v, _ := env.GetOnce("message"); v != "hello, gopher" {
		t.Errorf("expected override to win, got %v", v)
	}

	env, _ = inj.Pending(&plain{}, Args{"Missing": 1}).Run("bad", base)
	if _, err := env.GetOnce("bad"); !errors.IsCode(err, errors.ErrCodeInvalidInjection) {
		t.Errorf("expected INVALID_INJECTION for unknown override, got %v", err)
	}
}

func TestPendingReceiverMismatch(t *testing.T) {
	p := newService.Pending(&Database{})
	_, err := p.Run("service", NewProviderEnvironment().Provide())
	if !errors.IsCode(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}

	var empty Pending
	if _, err := empty.Run("x", NewProviderEnvironment().Provide()); err == nil {
		t.Error("expected error from zero Pending")
	}
}

func TestInjectModeString(t *testing.T) {
	for mode, want := range map[InjectMode]string{
		InjectEager:    "eager",
		InjectModeLazy: "lazy",
		InjectModeFunc: "func",
		7:              "InjectMode(7)",
	} {
		if got := mode.String(); got != want {
			t.Errorf("%d: expected %q, got %q", int(mode), want, got)
		}
	}
}
