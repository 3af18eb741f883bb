package datacite

import (
	"encoding/json"
	"net/http"
)

// Response captures what came back over the wire for one API call. The
// body is fully read and the connection released before the Response is
// returned, so it can be inspected at leisure.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

// OK reports whether the response carries a 2xx status.
func (r *Response) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

// APIError is a single error object from a JSONAPI error document.
type APIError struct {
	Status string `json:"status,omitempty"`
	Code   string `json:"code,omitempty"`
	Title  string `json:"title,omitempty"`
	Detail string `json:"detail,omitempty"`
}

func (e APIError) String() string {
	if e.Detail != "" {
		return e.Title + ": " + e.Detail
	}
	return e.Title
}

// Errors decodes the JSONAPI errors array from the body. It returns nil
// when the body is empty or is not a JSONAPI error document, so it is safe
// to call on successful responses too.
func (r *Response) Errors() []APIError {
	if r == nil || len(r.Body) == 0 {
		return nil
	}
	var doc struct {
		Errors []APIError `json:"errors"`
	}
	if err := json.Unmarshal(r.Body, &doc); err != nil {
		return nil
	}
	return doc.Errors
}
