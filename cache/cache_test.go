package cache_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/picfetch/picfetch/cache"
	"github.com/picfetch/picfetch/cache/memory"
)

func TestEntry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	provider := memory.New()

	header := make(http.Header)
	header.Set("Content-Type", "image/png")

	entry := cache.NewEntry(http.StatusOK, header, []byte("pngbytes"))

	if err := cache.SetEntry(ctx, provider, "key", entry); err != nil {
		t.Fatal(err)
	}

	t.Run("round trip", func(t *testing.T) {
		stored, err := cache.GetEntry(ctx, provider, "key")
		if err != nil {
			t.Fatal(err)
		}

		if stored.Status != http.StatusOK {
			t.Fatalf("wrong status %d", stored.Status)
		}

		if stored.Header.Get("Content-Type") != "image/png" {
			t.Fatal("wrong content type")
		}

		if string(stored.Body) != "pngbytes" {
			t.Fatal("wrong body")
		}

		if stored.StoredAt.IsZero() {
			t.Fatal("missing timestamp")
		}
	})

	t.Run("lookup is idempotent", func(t *testing.T) {
		first, err := cache.GetEntry(ctx, provider, "key")
		if err != nil {
			t.Fatal(err)
		}

		second, err := cache.GetEntry(ctx, provider, "key")
		if err != nil {
			t.Fatal(err)
		}

		if string(first.Body) != string(second.Body) || first.Status != second.Status {
			t.Fatal("lookups without an intervening store returned different entries")
		}
	})

	t.Run("missing entry", func(t *testing.T) {
		if _, err := cache.GetEntry(ctx, provider, "missing"); err != cache.ErrNotFound {
			t.Fatalf("wrong error %s", err)
		}
	})
}
