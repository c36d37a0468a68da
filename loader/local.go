package loader

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/picfetch/picfetch/decode"
	"github.com/picfetch/picfetch/resource"
)

// Local resolves file and inline references directly into a decoded
// artifact. It never touches the network or the cache store.
type Local struct {
	FS      billy.Filesystem
	Decoder decode.Decoder
	Scale   float64
}

// NewLocal returns a local loader reading from the host filesystem
func NewLocal(decoder decode.Decoder, scale float64) *Local {
	return &Local{
		FS:      osfs.New("/"),
		Decoder: decoder,
		Scale:   scale,
	}
}

// Load synchronously resolves a LocalFile or InlineEncoded reference
func (l *Local) Load(ref *resource.Reference) *Result {
	switch resource.Classify(ref) {
	case resource.LocalFile:
		return l.loadFile(ref)
	case resource.InlineEncoded:
		return l.loadInline(ref)
	default:
		return Failure(fmt.Errorf("%w: not a local reference: %s", ErrFilesystem, ref.URI))
	}
}

func (l *Local) loadFile(ref *resource.Reference) *Result {
	path := ref.URL().Path

	data, err := util.ReadFile(l.FS, path)
	if err != nil {
		return Failure(fmt.Errorf("%w: %s", ErrFilesystem, err))
	}

	return l.decode(data)
}

func (l *Local) loadInline(ref *resource.Reference) *Result {
	data, err := inlinePayload(ref.URI)
	if err != nil {
		return Failure(fmt.Errorf("%w: %s", ErrDecode, err))
	}

	return l.decode(data)
}

func (l *Local) decode(data []byte) *Result {
	artifact, err := l.Decoder.Decode(data, l.Scale)
	if err != nil {
		return Failure(fmt.Errorf("%w: %s", ErrDecode, err))
	}

	return &Result{Artifact: artifact}
}

// inlinePayload extracts the encoded payload of a data URI
// (data:[<mediatype>][;base64],<payload>)
func inlinePayload(uri string) ([]byte, error) {
	rest := strings.TrimPrefix(uri, "data:")

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("malformed data uri")
	}

	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 payload: %s", err)
		}

		return data, nil
	}

	decoded, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid payload encoding: %s", err)
	}

	return []byte(decoded), nil
}
