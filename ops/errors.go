package ops

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why an operation failed. Callers branch on
// Response.Success only; the kind exists for logs, metrics and retry
// policies.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	// KindTransport is a network or timeout failure reaching the store.
	KindTransport
	// KindRemote means the store answered but reported a logical failure.
	KindRemote
	// KindNormalization means the response matched no tolerated shape.
	KindNormalization
	// KindInvalidTransition means a lifecycle rule rejected the write
	// before any network call.
	KindInvalidTransition
	// KindUsage covers programming mistakes such as issuing a write
	// operation through the read path.
	KindUsage
)

var kindNames = map[ErrorKind]string{
	KindNone:              "none",
	KindTransport:         "transport",
	KindRemote:            "remote",
	KindNormalization:     "normalization",
	KindInvalidTransition: "invalid_transition",
	KindUsage:             "usage",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is the single error type produced below the orchestrator boundary.
type Error struct {
	Kind ErrorKind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = e.Kind.String() + " error"
	}
	if e.Op == "" {
		return msg
	}
	return e.Op + ": " + msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinel kind errors such as ErrTransport.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is checks on the kind alone.
var (
	ErrTransport         = &Error{Kind: KindTransport}
	ErrRemote            = &Error{Kind: KindRemote}
	ErrNormalization     = &Error{Kind: KindNormalization}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition}
	ErrUsage             = &Error{Kind: KindUsage}
)

// KindOf extracts the ErrorKind of err. Errors that are not *Error are
// reported as transport failures, since they can only come from below the
// normalization boundary.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindTransport
}

// InvalidTransition builds a KindInvalidTransition error for op.
func InvalidTransition(op Operation, format string, args ...any) *Error {
	return &Error{Kind: KindInvalidTransition, Op: op.String(), Msg: fmt.Sprintf(format, args...)}
}
