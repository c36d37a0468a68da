package loader

import (
	"errors"

	"github.com/picfetch/picfetch/decode"
)

// Result is the outcome of a single load attempt
type Result struct {
	Artifact *decode.Artifact

	// FromCache reports whether a remote load was satisfied from a
	// local cache rather than a network round trip
	FromCache bool

	Err error
}

// Failure returns a failed result wrapping err
func Failure(err error) *Result {
	return &Result{Err: err}
}

// Errors
var (
	ErrFilesystem = errors.New("unable to read local file")
	ErrDecode     = errors.New("unable to decode image")
	ErrTransport  = errors.New("unable to fetch image")
)
