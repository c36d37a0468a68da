package resource_test

import (
	"testing"

	"github.com/picfetch/picfetch/resource"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		Name     string
		Ref      *resource.Reference
		Expected resource.Kind
	}{
		{"nil reference", nil, resource.Absent},
		{"empty reference", resource.New(""), resource.Absent},
		{"file", resource.New("file:///tmp/icon.png"), resource.LocalFile},
		{"data uri", resource.New("data:image/png;base64,aGVsbG8="), resource.InlineEncoded},
		{"http", resource.New("http://example.com/icon.png"), resource.Remote},
		{"https", resource.New("https://example.com/icon.png"), resource.Remote},
		{"unrecognized scheme", resource.New("ftp://example.com/icon.png"), resource.Remote},
		{"scheme case", resource.New("FILE:///tmp/icon.png"), resource.LocalFile},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			if kind := resource.Classify(test.Ref); kind != test.Expected {
				t.Fatalf("wrong kind %s, expected %s", kind, test.Expected)
			}
		})
	}
}

func TestKey(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		a := resource.Key(resource.New("https://example.com/icon.png?a=1&b=2"))
		b := resource.Key(resource.New("https://example.com/icon.png?a=1&b=2"))

		if a != b {
			t.Fatal("keys differ for identical references")
		}
	})

	t.Run("query order", func(t *testing.T) {
		a := resource.Key(resource.New("https://example.com/icon.png?a=1&b=2"))
		b := resource.Key(resource.New("https://example.com/icon.png?b=2&a=1"))

		if a != b {
			t.Fatal("keys differ for equivalent query strings")
		}
	})

	t.Run("host case", func(t *testing.T) {
		a := resource.Key(resource.New("https://EXAMPLE.com/icon.png"))
		b := resource.Key(resource.New("https://example.com/icon.png"))

		if a != b {
			t.Fatal("keys differ for equivalent hosts")
		}
	})

	t.Run("distinct paths", func(t *testing.T) {
		a := resource.Key(resource.New("https://example.com/a.png"))
		b := resource.Key(resource.New("https://example.com/b.png"))

		if a == b {
			t.Fatal("keys collide for distinct paths")
		}
	})

	t.Run("distinct methods", func(t *testing.T) {
		a := resource.Key(resource.New("https://example.com/icon.png"))
		b := resource.Key(resource.NewRequest("https://example.com/icon.png", "HEAD", nil))

		if a == b {
			t.Fatal("keys collide for distinct methods")
		}
	})
}
