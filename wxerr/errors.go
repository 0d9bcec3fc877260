// Package wxerr classifies errors by the kind of failure they represent,
// generalizing the GRIB2 decoder's ad hoc error types into the seven kinds
// every serving-path component reports at its boundary.
package wxerr

import "fmt"

// Kind identifies the category of an error for boundary recovery.
type Kind int

const (
	// Internal is a programming error; logged with full context.
	Internal Kind = iota
	// NotFound is a missing layer, collection, instance, parameter, or dataset.
	NotFound
	// InvalidRequest is a malformed bbox, unsupported CRS, unparseable
	// coordinate, or unsupported format.
	InvalidRequest
	// ResponseTooLarge means the response-size estimator rejected the request.
	ResponseTooLarge
	// UpstreamIO is an object-store or L2 cache transport failure.
	UpstreamIO
	// CorruptSource is a GRIB2 framing violation, length mismatch, bitmap
	// mismatch, or checksum failure.
	CorruptSource
	// UnsupportedTemplate is a GRIB2 grid/product/packing template that is
	// not implemented.
	UnsupportedTemplate
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "NotFound"
	case InvalidRequest:
		return "InvalidRequest"
	case ResponseTooLarge:
		return "ResponseTooLarge"
	case UpstreamIO:
		return "UpstreamIO"
	case CorruptSource:
		return "CorruptSource"
	case UnsupportedTemplate:
		return "UnsupportedTemplate"
	default:
		return "Internal"
	}
}

// Error wraps an underlying error with a classification kind and a
// human-readable one-line message.
type Error struct {
	K       Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.K, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.K, e.Message)
}

// Unwrap returns the underlying error, if any, so errors.Is/errors.As work.
func (e *Error) Unwrap() error {
	return e.Err
}

// Kind returns the error's classification.
func (e *Error) Kind() Kind {
	return e.K
}

// New constructs a classified error with no wrapped cause.
func New(k Kind, message string) *Error {
	return &Error{K: k, Message: message}
}

// Wrap constructs a classified error wrapping an underlying cause.
func Wrap(k Kind, message string, err error) *Error {
	return &Error{K: k, Message: message, Err: err}
}

// KindOf returns the Kind of err if it (or something it wraps) is a *Error,
// and Internal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if as(err, &e) {
		return e.K
	}
	return Internal
}

// as walks err's Unwrap chain by hand and stores the first *Error it finds
// in target. Only single-error Unwrap is followed; errors joined with
// Unwrap() []error are not searched.
func as(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
