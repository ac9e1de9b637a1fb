package leadstore

import "fmt"

// Messages stored in State.Error after a failed load.
const (
	MsgHTTPFailure      = "Failed to fetch employees"
	MsgTransportFailure = "Network error while fetching employees"
	MsgUnknown          = "Unknown error"
)

// FailureKind tells the two load-time failures apart.
type FailureKind int

const (
	// KindHTTP means the server answered with a non-2xx status.
	KindHTTP FailureKind = iota + 1
	// KindTransport means the request never completed, or its body
	// could not be read or decoded.
	KindTransport
)

func (k FailureKind) String() string {
	switch k {
	case KindHTTP:
		return "http"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// FetchError is what a Fetcher returns when the leads could not be fetched.
type FetchError struct {
	Kind       FailureKind
	StatusCode int   // set for KindHTTP
	Err        error // underlying cause (optional)
}

// HTTPFailure builds the error for a non-2xx response.
func HTTPFailure(status int) *FetchError {
	return &FetchError{Kind: KindHTTP, StatusCode: status}
}

// TransportFailure builds the error for a request that did not complete.
func TransportFailure(err error) *FetchError {
	return &FetchError{Kind: KindTransport, Err: err}
}

// Error returns the user-facing message for the failure kind.
func (e *FetchError) Error() string {
	switch e.Kind {
	case KindHTTP:
		return MsgHTTPFailure
	case KindTransport:
		return MsgTransportFailure
	default:
		return MsgUnknown
	}
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *FetchError) Unwrap() error { return e.Err }

// Detail is Error plus the status or cause, for logs.
func (e *FetchError) Detail() string {
	switch {
	case e.Kind == KindHTTP:
		return fmt.Sprintf("%s (status %d)", e.Error(), e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Error(), e.Err)
	default:
		return e.Error()
	}
}
