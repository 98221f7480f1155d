package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorKind classifies every failure that crosses the protocol boundary.
type ErrorKind uint8

const (
	KindUnknown ErrorKind = iota
	KindTransport
	KindURL
	KindSyntax
	KindSchema
	KindValidation
	KindUnknownType
	KindHTTP
	KindPeer
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindURL:
		return "url"
	case KindSyntax:
		return "syntax"
	case KindSchema:
		return "schema"
	case KindValidation:
		return "validation"
	case KindUnknownType:
		return "unknown_type"
	case KindHTTP:
		return "http"
	case KindPeer:
		return "peer"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. A *Error matches the sentinel of its kind.
var (
	ErrTransport   = errors.New("transport error")
	ErrURL         = errors.New("invalid endpoint url")
	ErrSyntax      = errors.New("malformed json")
	ErrSchema      = errors.New("payload does not match schema")
	ErrValidation  = errors.New("invalid subscription parameter")
	ErrUnknownType = errors.New("unknown message type")
	ErrHTTP        = errors.New("http request failed")
	ErrPeer        = errors.New("peer reported error")
)

var kindSentinels = map[ErrorKind]error{
	KindTransport:   ErrTransport,
	KindURL:         ErrURL,
	KindSyntax:      ErrSyntax,
	KindSchema:      ErrSchema,
	KindValidation:  ErrValidation,
	KindUnknownType: ErrUnknownType,
	KindHTTP:        ErrHTTP,
	KindPeer:        ErrPeer,
}

// Error is the single error type returned by the protocol layer and its
// transport collaborators.
type Error struct {
	Kind ErrorKind
	// Op is the operation that failed, e.g. "decode" or "large_trade_options".
	Op string
	// Field names the violated bound or the offending wire field, if any.
	Field string
	// Payload carries the peer's error body for KindPeer. It is never parsed.
	Payload json.RawMessage
	Err     error
}

func (e *Error) Error() string {
	msg := e.Op + ": " + e.Kind.String()
	if e.Field != "" {
		msg += " (" + e.Field + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	} else if len(e.Payload) > 0 {
		msg += ": " + string(e.Payload)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	if s, ok := kindSentinels[e.Kind]; ok && s == target {
		return true
	}
	if t, ok := target.(*Error); ok {
		return t.Kind == e.Kind && (t.Op == "" || t.Op == e.Op) && (t.Field == "" || t.Field == e.Field)
	}
	return false
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func newError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func validationError(op, field, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Op: op, Field: field, Err: fmt.Errorf(format, args...)}
}

// TransportError wraps a failure reported by the connection collaborator.
func TransportError(op string, err error) error {
	if err == nil {
		return nil
	}
	return newError(KindTransport, op, err)
}

// URLError wraps a malformed connection target.
func URLError(op string, err error) error {
	return newError(KindURL, op, err)
}

// HTTPError wraps a failed REST call.
func HTTPError(op string, err error) error {
	return newError(KindHTTP, op, err)
}

// ValidationError reports a parameter outside its documented bounds.
func ValidationError(op, field, format string, args ...any) error {
	return validationError(op, field, format, args...)
}
