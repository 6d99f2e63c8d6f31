package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBucket(t *testing.T) {
	t.Run("Overwrite", func(t *testing.T) {
		b := NewBucket[string]()
		b.Put("a", "1")
		b.Put("b", "2")
		b.Put("a", "3")

		assert.Equal(t, []string{"a", "b"}, b.Keys())
		v, ok := b.Get("a")
		assert.True(t, ok)
		assert.False(t, v.IsMultiple())
		assert.Equal(t, "3", v.First())
	})

	t.Run("Multiple values keep argument order", func(t *testing.T) {
		b := NewMultiBucket[string]()
		b.Put("q", "1")
		b.Put("x", "y")
		b.Put("q", "2")

		v, _ := b.Get("q")
		assert.True(t, v.IsMultiple())
		assert.Equal(t, []string{"1", "2"}, v.All())
		assert.Equal(t, []Pair[string]{
			{Key: "q", Value: "1"},
			{Key: "q", Value: "2"},
			{Key: "x", Value: "y"},
		}, b.Pairs())
	})

	t.Run("Single value in a multi bucket", func(t *testing.T) {
		b := NewMultiBucket[string]()
		b.Put("q", "1")

		v, _ := b.Get("q")
		assert.False(t, v.IsMultiple())
		assert.Equal(t, []string{"1"}, v.All())
	})

	t.Run("Header bucket folds case", func(t *testing.T) {
		b := NewHeaderBucket()
		b.Put("content-type", "text/plain")
		b.Put("Content-Type", "application/xml")

		assert.True(t, b.Has("CONTENT-TYPE"))
		assert.Equal(t, []string{"Content-Type"}, b.Keys())
		v, _ := b.Get("content-type")
		assert.Equal(t, "application/xml", v.First())
	})

	t.Run("Delete", func(t *testing.T) {
		b := NewBucket[int]()
		b.Put("a", 1)
		b.Put("b", 2)
		b.Delete("a")
		b.Delete("missing")

		assert.Equal(t, []string{"b"}, b.Keys())
		assert.False(t, b.Has("a"))
		assert.Equal(t, 1, b.Len())
	})

	t.Run("Nil bucket is empty", func(t *testing.T) {
		var b *Bucket[string]
		assert.Equal(t, 0, b.Len())
		assert.Empty(t, b.Pairs())
	})
}
