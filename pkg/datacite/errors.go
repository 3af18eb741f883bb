package datacite

import (
	"errors"
	"fmt"
)

// ErrMissingCredentials is returned by NewClient when the repository
// account username or password is empty.
var ErrMissingCredentials = errors.New("datacite: missing repository credentials")

// RequestError is a transport-level failure: the request never completed
// and no HTTP response is available. Rejections the API expressed as a
// status code are not RequestErrors; those come back as non-2xx Responses.
type RequestError struct {
	// Op is the operation that failed, e.g. "create" or "retrieve".
	Op string

	// Err is the underlying error.
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("datacite: %s: %v", e.Op, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}
