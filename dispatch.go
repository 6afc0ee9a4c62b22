// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package negotiate

import (
	"maps"
	"slices"
)

// NoMatch is the key of the fallback producer in a map passed to [DispatchMap].
const NoMatch = "no_match"

// Table maps negotiated values to producers and always carries a fallback
// for the "no match" case. Build it with [NewTable] and [Table.On]; once
// built it is read-only and safe for concurrent use.
type Table[T any] struct {
	fallback  func() T
	keys      []string
	producers map[string]func() T
}

// NewTable creates a dispatch table with the producer run when no key is
// acceptable. A nil fallback is a [ConfigurationError] wrapping
// [ErrMissingFallback].
func NewTable[T any](fallback func() T) (*Table[T], error) {
	if fallback == nil {
		return nil, configError("new table", NoMatch, ErrMissingFallback)
	}

	return &Table[T]{
		fallback:  fallback,
		producers: make(map[string]func() T),
	}, nil
}

// MustNewTable is like [NewTable] but panics on error.
func MustNewTable[T any](fallback func() T) *Table[T] {
	t, err := NewTable(fallback)
	if err != nil {
		panic(err)
	}
	return t
}

// On registers the producer for value and returns t for chaining. Values are
// offered to the negotiator in registration order, so the first registered
// value wins ties. Registering a value again replaces its producer and keeps
// its position. A nil producer is ignored.
func (t *Table[T]) On(value string, producer func() T) *Table[T] {
	if producer == nil {
		return t
	}

	if _, exists := t.producers[value]; !exists {
		t.keys = append(t.keys, value)
	}
	t.producers[value] = producer

	return t
}

// Keys returns the registered values in registration order.
func (t *Table[T]) Keys() []string {
	return slices.Clone(t.keys)
}

// Dispatch negotiates over the table's values and returns the result of the
// winning producer, or of the fallback when nothing is acceptable. Exactly
// one producer runs.
//
// Example:
//
//	table := negotiate.MustNewTable(notAcceptable).
//		On("application/json", renderJSON).
//		On("text/html", renderHTML)
//	resp := negotiate.Dispatch(negotiate.MediaTypes, h, table)
func Dispatch[T any](n *Negotiator, h Header, t *Table[T]) T {
	if best, ok := n.Best(h, t.keys...); ok {
		return t.producers[best]()
	}
	return t.fallback()
}

// DispatchMap is the map-based form of [Dispatch]. The fallback lives under
// the [NoMatch] key. Keys are offered in lexical order, so ties go to the
// lexically smallest value. When no key is acceptable and no fallback is
// registered, DispatchMap returns a [ConfigurationError] wrapping
// [ErrMissingFallback] without running any producer.
func DispatchMap[T any](n *Negotiator, h Header, handlers map[string]func() T) (T, error) {
	var zero T

	keys := make([]string, 0, len(handlers))
	for _, k := range slices.Sorted(maps.Keys(handlers)) {
		if k != NoMatch && handlers[k] != nil {
			keys = append(keys, k)
		}
	}

	if best, ok := n.Best(h, keys...); ok {
		return handlers[best](), nil
	}

	fallback := handlers[NoMatch]
	if fallback == nil {
		return zero, configError("dispatch", NoMatch, ErrMissingFallback)
	}

	return fallback(), nil
}
