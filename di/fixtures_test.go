package di

import (
	"sync"
	"sync/atomic"
)

type Database struct {
	ID int
}

// databaseFactory counts every database it builds.
func databaseFactory(calls *atomic.Int32) Producer {
	return func() (any, error) {
		return &Database{ID: int(calls.Add(1))}, nil
	}
}

type Service struct {
	DB *Database
}

type serviceDeps struct {
	DB *Database
}

var newService = MustInject(func(s *Service, d serviceDeps) {
	s.DB = d.DB
}, Bind("DB", "database"))

type Shared struct {
	N int
}

type Left struct{ S *Shared }

type Right struct{ S *Shared }

type sharedDeps struct {
	S *Shared
}

var (
	newLeft = MustInject(func(l *Left, d sharedDeps) {
		l.S = d.S
	}, Bind("S", "shared"))

	newRight = MustInject(func(r *Right, d sharedDeps) {
		r.S = d.S
	}, Bind("S", "shared"))
)

type Root struct {
	L *Left
	R *Right
}

type rootDeps struct {
	L *Left
	R *Right
}

var newRoot = MustInject(func(r *Root, d rootDeps) {
	r.L, r.R = d.L, d.R
}, Bind("L", "left"), Bind("R", "right"))

// recorder collects resolve events.
type recorder struct {
	mu     sync.Mutex
	events []ResolveEvent
}

func (r *recorder) OnResolve(ev ResolveEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) keys(depth int) []Key {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Key
	for _, ev := range r.events {
		if depth == 0 || ev.Depth == depth {
			out = append(out, ev.Key)
		}
	}
	return out
}
