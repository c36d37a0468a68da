package cache

import (
	"bufio"
	"bytes"
	"io"
	"net/http"
	"net/http/httputil"
	"time"
)

// Entry is a stored response: body bytes plus response metadata.
// Entries are replaced, never mutated in place.
type Entry struct {
	Status   int
	Header   http.Header
	Body     []byte
	StoredAt time.Time
}

// NewEntry creates an entry from response metadata, stamped with the
// current time
func NewEntry(status int, header http.Header, body []byte) *Entry {
	h := make(http.Header, len(header))
	for k, v := range header {
		h[k] = v
	}

	return &Entry{
		Status:   status,
		Header:   h,
		Body:     body,
		StoredAt: time.Now().UTC(),
	}
}

// Encode serializes the entry in HTTP/1.1 wire format, so that entries
// written by the HTTP caching transport and entries written here are
// interchangeable
func (e *Entry) Encode() ([]byte, error) {
	header := e.Header
	if header == nil {
		header = make(http.Header)
	}
	if header.Get("Date") == "" && !e.StoredAt.IsZero() {
		header = header.Clone()
		header.Set("Date", e.StoredAt.Format(http.TimeFormat))
	}

	res := &http.Response{
		StatusCode:    e.Status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(e.Body)),
		ContentLength: int64(len(e.Body)),
	}

	return httputil.DumpResponse(res, true)
}

// DecodeEntry parses an entry from HTTP/1.1 wire format
func DecodeEntry(data []byte) (*Entry, error) {
	res, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(data)), nil)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	entry := &Entry{
		Status: res.StatusCode,
		Header: res.Header,
		Body:   body,
	}

	if date := res.Header.Get("Date"); date != "" {
		if t, err := http.ParseTime(date); err == nil {
			entry.StoredAt = t
		}
	}

	return entry, nil
}
