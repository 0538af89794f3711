package domain

import "net/http"

// RequestDescriptor is a serialized record paired with its target path.
// A descriptor is built per record and consumed by exactly one dispatch.
type RequestDescriptor struct {
	Method string
	Path   string
	Body   []byte
}

// NewPostRequest creates a POST descriptor for the given path and body.
func NewPostRequest(path string, body []byte) RequestDescriptor {
	return RequestDescriptor{
		Method: http.MethodPost,
		Path:   path,
		Body:   body,
	}
}
