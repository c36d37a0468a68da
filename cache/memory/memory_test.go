package memory_test

import (
	"context"
	"testing"

	"github.com/picfetch/picfetch/cache"
	"github.com/picfetch/picfetch/cache/memory"
)

func TestMemory(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	provider := memory.New()

	t.Run("get item", func(t *testing.T) {
		// Add item to the cache
		provider.Set(ctx, "foo", []byte("bar"))

		// Get item from the cache
		data, err := provider.Get(ctx, "foo")
		if err != nil {
			t.Fatal(err)
		}

		if string(data) != "bar" {
			t.Fatal("wrong data")
		}
	})

	t.Run("get item twice", func(t *testing.T) {
		first, err := provider.Get(ctx, "foo")
		if err != nil {
			t.Fatal(err)
		}

		second, err := provider.Get(ctx, "foo")
		if err != nil {
			t.Fatal(err)
		}

		if string(first) != string(second) {
			t.Fatal("lookups without an intervening set returned different data")
		}
	})

	t.Run("replace item", func(t *testing.T) {
		provider.Set(ctx, "foo", []byte("baz"))

		data, err := provider.Get(ctx, "foo")
		if err != nil {
			t.Fatal(err)
		}

		if string(data) != "baz" {
			t.Fatal("wrong data")
		}
	})

	t.Run("delete item", func(t *testing.T) {
		provider.Set(ctx, "todelete", []byte("bar"))

		if err := provider.Delete(ctx, "todelete"); err != nil {
			t.Fatal(err)
		}

		if _, err := provider.Get(ctx, "todelete"); err != cache.ErrNotFound {
			t.Fatalf("wrong error %s", err)
		}
	})

	t.Run("get nonexistant item", func(t *testing.T) {
		_, err := provider.Get(ctx, "notfound")
		if err == nil {
			t.Fatal("no error")
		}

		if err != cache.ErrNotFound {
			t.Fatalf("wrong error %s", err)
		}
	})
}
