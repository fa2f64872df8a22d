package di

import "time"

// ResolveEvent describes one provider run triggered by Provide.
type ResolveEvent struct {
	Scope    string
	Key      Key
	Kind     Kind
	Depth    int
	Start    time.Time
	Duration time.Duration
	Err      error
}

// Observer is notified after every provider run. Cached keys do not produce
// events. Implementations must be safe for concurrent use when environments
// are shared between goroutines.
type Observer interface {
	OnResolve(ev ResolveEvent)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ev ResolveEvent)

// OnResolve calls f(ev).
func (f ObserverFunc) OnResolve(ev ResolveEvent) { f(ev) }

// Observers fans events out to several observers in order.
type Observers []Observer

// OnResolve forwards ev to every observer.
func (obs Observers) OnResolve(ev ResolveEvent) {
	for _, o := range obs {
		o.OnResolve(ev)
	}
}
