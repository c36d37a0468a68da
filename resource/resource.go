package resource

import (
	"net/http"
	"net/url"
	"strings"
)

// Kind is the source kind of a reference
type Kind int

const (
	// Absent represents a missing reference
	Absent Kind = iota
	// LocalFile represents a file on the local filesystem
	LocalFile
	// InlineEncoded represents a payload embedded in the reference itself
	InlineEncoded
	// Remote represents a resource fetched over the network
	Remote
)

func (k Kind) String() string {
	switch k {
	case Absent:
		return "absent"
	case LocalFile:
		return "local-file"
	case InlineEncoded:
		return "inline-encoded"
	case Remote:
		return "remote"
	}

	return "unknown"
}

// Reference describes what image to load.
// It is immutable once constructed.
type Reference struct {
	URI    string
	Method string
	Header http.Header

	url *url.URL
}

// New creates a new reference for the given URI
func New(uri string) *Reference {
	ref := &Reference{
		URI:    uri,
		Method: http.MethodGet,
	}

	if u, err := url.Parse(uri); err == nil {
		ref.url = u
	}

	return ref
}

// NewRequest creates a new reference with request-level metadata
func NewRequest(uri, method string, header http.Header) *Reference {
	ref := New(uri)
	if method != "" {
		ref.Method = method
	}
	ref.Header = header
	return ref
}

// URL returns the parsed form of the reference, or nil if it did not parse
func (r *Reference) URL() *url.URL {
	if r == nil {
		return nil
	}

	return r.url
}

// Classify determines the source kind of a reference.
// It is a pure function of the reference's scheme: unrecognized schemes
// are treated as remote so that the fetch fails downstream with a
// descriptive error instead of silently doing nothing.
func Classify(ref *Reference) Kind {
	if ref == nil || ref.URI == "" {
		return Absent
	}

	u := ref.url
	if u == nil {
		return Remote
	}

	switch strings.ToLower(u.Scheme) {
	case "file":
		return LocalFile
	case "data":
		return InlineEncoded
	default:
		return Remote
	}
}
