package app

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/bft-labs/certship/internal/domain"
)

// RequestBuilder turns records into POST descriptors for the endpoint path.
type RequestBuilder struct {
	path string
}

// NewRequestBuilder creates a builder targeting the endpoint's path.
func NewRequestBuilder(endpoint domain.Endpoint) *RequestBuilder {
	return &RequestBuilder{path: endpoint.Path}
}

// Build serializes the record as JSON. HTML characters are left unescaped and
// the encoder's trailing newline is dropped so the body is the bare object.
func (b *RequestBuilder) Build(rec domain.Record) (domain.RequestDescriptor, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rec); err != nil {
		return domain.RequestDescriptor{}, fmt.Errorf("%w: %v", domain.ErrSerialization, err)
	}
	return domain.NewPostRequest(b.path, bytes.TrimRight(buf.Bytes(), "\n")), nil
}
