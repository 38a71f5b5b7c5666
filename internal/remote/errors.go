package remote

import (
	"errors"
	"fmt"
)

// Error kinds are kept distinct so callers can react differently: a decode
// failure may be retried with a newer client build, a transport failure may
// be retried later, a status error usually means the request was wrong.
var (
	// ErrNoData: the server answered 200 with an empty body
	ErrNoData = errors.New("response carried no data")

	// ErrBadDecode: a body was present but did not match the expected shape
	ErrBadDecode = errors.New("failed to decode response")

	// ErrMalformedRequestBody: the request body could not be built from the
	// caller's values; reported before any network call
	ErrMalformedRequestBody = errors.New("failed to encode request body")
)

// StatusError is a well-formed response with any status other than 200,
// including other 2xx variants.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d", e.Code)
}

// TransportError is a failure to obtain any response at all
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("server error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
