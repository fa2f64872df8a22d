package di

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/kbukum/minject/errors"
)

func TestMemoizedCachesFirstResult(t *testing.T) {
	calls := 0
	m := NewMemoized(func() (any, error) {
		calls++
		return calls, nil
	})

	for i := 0; i < 3; i++ {
		v, err := m.Call()
		if err != nil {
			t.Fatalf("Call failed: %v", err)
		}
		if v != 1 {
			t.Errorf("call %d: expected cached 1, got %v", i, v)
		}
	}
	if calls != 1 {
		t.Errorf("expected producer to run once, ran %d times", calls)
	}
	if !m.Computed() {
		t.Error("expected Computed() after a successful call")
	}
}

func TestMemoizedRecomputesNil(t *testing.T) {
	calls := 0
	m := NewMemoized(func() (any, error) {
		calls++
		return nil, nil
	})

	m.Call()
	m.Call()
	if calls != 2 {
		t.Errorf("expected nil result to be recomputed, producer ran %d times", calls)
	}
	if m.Computed() {
		t.Error("expected nil result not to count as computed")
	}
}

func TestMemoizedDoesNotCacheErrors(t *testing.T) {
	calls := 0
	m := NewMemoized(func() (any, error) {
		calls++
		if calls == 1 {
			return nil, fmt.Errorf("transient")
		}
		return "ok", nil
	})

	if _, err := m.Call(); err == nil {
		t.Fatal("expected first call to fail")
	}
	v, err := m.Call()
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if v != "ok" {
		t.Errorf("expected 'ok', got %v", v)
	}
}

func TestMemoizedConcurrentFirstAccess(t *testing.T) {
	var calls atomic.Int32
	m := NewMemoized(func() (any, error) {
		return calls.Add(1), nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Call()
		}()
	}
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("expected producer to run once, ran %d times", calls.Load())
	}
}

func TestConstant(t *testing.T) {
	v, err := Constant("x")()
	if err != nil || v != "x" {
		t.Errorf("expected ('x', nil), got (%v, %v)", v, err)
	}
}

func TestLazyGet(t *testing.T) {
	calls := 0
	l := NewLazy[string]("name", func() (any, error) {
		calls++
		return "gopher", nil
	})

	if l.Resolved() {
		t.Error("expected lazy value to start unresolved")
	}
	if calls != 0 {
		t.Fatal("expected nothing computed before Get")
	}
	if got := l.MustGet(); got != "gopher" {
		t.Errorf("expected 'gopher', got %q", got)
	}
	l.MustGet()
	if calls != 1 {
		t.Errorf("expected one computation, got %d", calls)
	}
	if !l.Resolved() {
		t.Error("expected lazy value to be resolved after Get")
	}
	if l.Key() != "name" {
		t.Errorf("expected key 'name', got %q", l.Key())
	}
}

func TestLazyTypeMismatch(t *testing.T) {
	l := NewLazy[int]("port", Constant("8080"))
	_, err := l.Get()
	if !errors.IsCode(err, errors.ErrCodeTypeMismatch) {
		t.Fatalf("expected TYPE_MISMATCH, got %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("expected MustGet to panic")
		}
	}()
	l.MustGet()
}

func TestLazyUninjected(t *testing.T) {
	var l *Lazy[string]
	if _, err := l.Get(); err == nil {
		t.Error("expected error from nil lazy")
	}
	if l.Resolved() {
		t.Error("expected nil lazy to report unresolved")
	}
}

func TestMemoizedPeek(t *testing.T) {
	calls := 0
	m := NewMemoized(func() (any, error) {
		calls++
		return "v", nil
	})

	if _, ok := m.Peek(); ok {
		t.Error("expected Peek before Call to report nothing cached")
	}
	if calls != 0 {
		t.Errorf("expected Peek not to run the producer, ran %d times", calls)
	}
	m.Call()
	if v, ok := m.Peek(); !ok || v != "v" {
		t.Errorf("expected cached v, got %v %v", v, ok)
	}
	if calls != 1 {
		t.Errorf("expected producer to run once, ran %d times", calls)
	}
}
