package di

import (
	"maps"
	"slices"
)

// Key names a dependency slot.
type Key string

// String returns the key as a plain string.
func (k Key) String() string { return string(k) }

// ProviderMap is the provider table shared by a ProviderEnvironment and every
// VariableEnvironment derived from it. Treat it as immutable: With returns a
// copy.
type ProviderMap map[Key]Provider

// With returns a copy of m with key bound to p. A later binding for the same
// key replaces the earlier one.
func (m ProviderMap) With(key Key, p Provider) ProviderMap {
	out := make(ProviderMap, len(m)+1)
	maps.Copy(out, m)
	out[key] = p
	return out
}

// Clone returns a shallow copy of m.
func (m ProviderMap) Clone() ProviderMap {
	return maps.Clone(m)
}

// Keys returns the bound keys in sorted order.
func (m ProviderMap) Keys() []Key {
	return slices.Sorted(maps.Keys(m))
}
