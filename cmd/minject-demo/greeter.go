package main

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/kbukum/minject/di"
	"github.com/kbukum/minject/observability"
	"github.com/kbukum/minject/reader"
)

// visitStore counts greetings. It stands in for a real backing store.
type visitStore struct {
	visits atomic.Int64
	closed atomic.Bool
}

func newVisitStore() *visitStore { return &visitStore{} }

func (s *visitStore) Record() int64 { return s.visits.Add(1) }

func (s *visitStore) CheckHealth(context.Context) observability.Health {
	if s.closed.Load() {
		return observability.Health{Name: "visits", Status: observability.HealthStatusDown, Message: "closed"}
	}
	return observability.Health{
		Name:    "visits",
		Status:  observability.HealthStatusUp,
		Details: map[string]string{"visits": fmt.Sprint(s.visits.Load())},
	}
}

func (s *visitStore) Close() error {
	s.closed.Store(true)
	return nil
}

// Greeter builds greetings from configured values. Its dependencies are
// read through accessors when Greet runs, not when the greeter is built.
type Greeter struct {
	greeting func() string
	audience func() (string, error)
	store    func() *visitStore
}

type greeterDeps struct {
	Greeting func() string
	Audience func() (string, error)
	Store    func() *visitStore
}

var newGreeter = di.MustInjectFunc(func(g *Greeter, d greeterDeps) {
	g.greeting = d.Greeting
	g.audience = d.Audience
	g.store = d.Store
},
	di.Bind("Greeting", "greeting"),
	di.Bind("Audience", "audience"),
	di.Bind("Store", "visits"),
)

// Greet renders one greeting and records the visit.
func (g *Greeter) Greet() (string, error) {
	who, err := g.audience()
	if err != nil {
		return "", err
	}
	n := g.store().Record()
	return fmt.Sprintf("%s, %s! (#%d)", g.greeting(), who, n), nil
}

// greeterModule registers the greeter as a shared component.
type greeterModule struct{}

func (greeterModule) Configure() reader.Reader[di.ProviderMap, di.ProviderMap] {
	return di.Provides("greeter", newGreeter.Pending(&Greeter{}), di.AsSingleton())
}
