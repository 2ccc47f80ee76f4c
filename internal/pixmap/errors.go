package pixmap

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindTransport Kind = iota + 1
	KindPathTooLong
	KindInvalidPath
	KindInvalidHandle
	KindProtocolShortRead
	KindProtocolShortWrite
	KindClosed
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindPathTooLong:
		return "path too long"
	case KindInvalidPath:
		return "invalid path"
	case KindInvalidHandle:
		return "invalid handle"
	case KindProtocolShortRead:
		return "short read"
	case KindProtocolShortWrite:
		return "short write"
	case KindClosed:
		return "client closed"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Sentinels for errors.Is. An *Error matches the sentinel of its Kind.
var (
	ErrTransport          = errors.New("transport")
	ErrPathTooLong        = errors.New("path too long")
	ErrInvalidPath        = errors.New("invalid path")
	ErrInvalidHandle      = errors.New("invalid handle")
	ErrProtocolShortRead  = errors.New("short read")
	ErrProtocolShortWrite = errors.New("short write")
	ErrClosed             = errors.New("client closed")
)

var kindErrors = map[Kind]error{
	KindTransport:          ErrTransport,
	KindPathTooLong:        ErrPathTooLong,
	KindInvalidPath:        ErrInvalidPath,
	KindInvalidHandle:      ErrInvalidHandle,
	KindProtocolShortRead:  ErrProtocolShortRead,
	KindProtocolShortWrite: ErrProtocolShortWrite,
	KindClosed:             ErrClosed,
}

type Error struct {
	Kind Kind
	// Op is what was being done, e.g. "open button.png" or "pixmap[0][2]".
	Op  string
	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.String()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return kindErrors[e.Kind] == target
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
