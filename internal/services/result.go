package services

import (
	"bytes"
	"io"
	"strings"
)

// Result is the output of one operation: a payload and the name it should be
// downloaded under.
type Result struct {
	Payload       []byte
	SuggestedName string
	ContentType   string
}

// Extension returns the extension of SuggestedName without the dot.
func (r *Result) Extension() string {
	if i := strings.LastIndexByte(r.SuggestedName, '.'); i >= 0 {
		return r.SuggestedName[i+1:]
	}
	return ""
}

// Reader returns a reader over the payload.
func (r *Result) Reader() *bytes.Reader {
	return bytes.NewReader(r.Payload)
}

// WriteTo writes the payload to w. It implements [io.WriterTo].
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.Payload)
	return int64(n), err
}

// Len returns the payload size in bytes.
func (r *Result) Len() int {
	return len(r.Payload)
}
