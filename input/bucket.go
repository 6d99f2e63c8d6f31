package input

import "strings"

// Value holds what a bucket stores under one key: either a single value or,
// when the key was added more than once, every value in argument order.
type Value[T any] struct {
	values   []T
	multiple bool
}

func Single[T any](v T) Value[T] {
	return Value[T]{values: []T{v}}
}

func Multiple[T any](vs ...T) Value[T] {
	return Value[T]{values: vs, multiple: true}
}

func (v Value[T]) IsMultiple() bool {
	return v.multiple
}

// First returns the single value, or the first of multiple values.
func (v Value[T]) First() T {
	var zero T
	if len(v.values) == 0 {
		return zero
	}
	return v.values[0]
}

// All returns the values in argument order. A single value yields one element.
func (v Value[T]) All() []T {
	return v.values
}

// Bucket is an insertion-ordered mapping from item keys to values.
// A key keeps the position of its first appearance.
type Bucket[T any] struct {
	keys       []string
	values     map[string]Value[T]
	foldCase   bool
	multiValue bool
}

// NewBucket returns a bucket where a repeated key replaces the previous value.
func NewBucket[T any]() *Bucket[T] {
	return &Bucket[T]{values: map[string]Value[T]{}}
}

// NewMultiBucket returns a bucket where a repeated key collects every value.
func NewMultiBucket[T any]() *Bucket[T] {
	return &Bucket[T]{values: map[string]Value[T]{}, multiValue: true}
}

// NewHeaderBucket returns a case-insensitive bucket where the last value wins.
// The key keeps the spelling it was last given.
func NewHeaderBucket() *Bucket[string] {
	return &Bucket[string]{values: map[string]Value[string]{}, foldCase: true}
}

func (b *Bucket[T]) lookupKey(key string) string {
	if b.foldCase {
		return strings.ToLower(key)
	}
	return key
}

func (b *Bucket[T]) indexOf(key string) int {
	k := b.lookupKey(key)
	for i, existing := range b.keys {
		if b.lookupKey(existing) == k {
			return i
		}
	}
	return -1
}

// Put stores v under key according to the bucket's repeat policy.
func (b *Bucket[T]) Put(key string, v T) {
	k := b.lookupKey(key)
	i := b.indexOf(key)
	if i == -1 {
		b.keys = append(b.keys, key)
		b.values[k] = Single(v)
		return
	}
	b.keys[i] = key
	if !b.multiValue {
		b.values[k] = Single(v)
		return
	}
	prev := b.values[k].values
	all := make([]T, 0, len(prev)+1)
	all = append(all, prev...)
	b.values[k] = Multiple(append(all, v)...)
}

func (b *Bucket[T]) Get(key string) (Value[T], bool) {
	v, ok := b.values[b.lookupKey(key)]
	return v, ok
}

func (b *Bucket[T]) Has(key string) bool {
	_, ok := b.Get(key)
	return ok
}

func (b *Bucket[T]) Delete(key string) {
	i := b.indexOf(key)
	if i == -1 {
		return
	}
	b.keys = append(b.keys[:i], b.keys[i+1:]...)
	delete(b.values, b.lookupKey(key))
}

// Keys returns the keys in order of first appearance.
func (b *Bucket[T]) Keys() []string {
	keys := make([]string, len(b.keys))
	copy(keys, b.keys)
	return keys
}

func (b *Bucket[T]) Len() int {
	if b == nil {
		return 0
	}
	return len(b.keys)
}

// Each calls fn for every key in order.
func (b *Bucket[T]) Each(fn func(key string, v Value[T])) {
	if b == nil {
		return
	}
	for _, key := range b.keys {
		fn(key, b.values[b.lookupKey(key)])
	}
}

// Pairs flattens the bucket into key/value pairs, expanding multiple values
// in order.
func (b *Bucket[T]) Pairs() []Pair[T] {
	var pairs []Pair[T]
	b.Each(func(key string, v Value[T]) {
		for _, x := range v.All() {
			pairs = append(pairs, Pair[T]{Key: key, Value: x})
		}
	})
	return pairs
}

type Pair[T any] struct {
	Key   string
	Value T
}
