package srcom

import "errors"

var (
	// ErrRequestFailed indicates the request never produced a usable response.
	ErrRequestFailed = errors.New("request failed")

	// ErrUnexpectedStatus indicates a non-2xx response that was not retried
	// away.
	ErrUnexpectedStatus = errors.New("unexpected status")

	// ErrDecodeFailed indicates a response body that did not match the
	// expected shape.
	ErrDecodeFailed = errors.New("response decode failed")

	// ErrNoVerifyDate indicates a run whose verification timestamp is absent
	// or malformed.
	ErrNoVerifyDate = errors.New("no verification date")
)
