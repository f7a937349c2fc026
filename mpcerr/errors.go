// Package mpcerr classifies the failures of the party two client so callers
// can tell a broken connection from a counterparty that cheated.
package mpcerr

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// SystemErrorCode is the base of every code reported across the boundary.
const SystemErrorCode = 10104000

type Kind int

const (
	KindUnknown Kind = iota
	KindInputDecode
	KindTransport
	KindProtocol
	KindDecode
	KindVerification
)

func (k Kind) String() string {
	switch k {
	case KindInputDecode:
		return "INPUT_DECODE"
	case KindTransport:
		return "TRANSPORT"
	case KindProtocol:
		return "PROTOCOL"
	case KindDecode:
		return "DECODE"
	case KindVerification:
		return "VERIFICATION"
	default:
		return "UNKNOWN"
	}
}

// Code is the boundary ret_code for the kind.
func (k Kind) Code() int {
	return SystemErrorCode + int(k)
}

// Error is a classified failure. Code and Message are only set for
// KindProtocol and carry the counterparty's status verbatim.
type Error struct {
	Kind    Kind
	Op      string
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	var sb strings.Builder
	if e.Op != "" {
		sb.WriteString(e.Op)
		sb.WriteString(": ")
	}

	switch {
	case e.Kind == KindProtocol:
		sb.WriteString(fmt.Sprintf("%d:%s", e.Code, e.Message))
	case e.Err != nil:
		sb.WriteString(e.Err.Error())
	default:
		sb.WriteString(strings.ToLower(e.Kind.String()))
		sb.WriteString(" error")
	}
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Cause() error {
	return e.Err
}

func InputDecode(op string, err error) error {
	return &Error{Kind: KindInputDecode, Op: op, Err: err}
}

func Transport(op string, err error) error {
	return &Error{Kind: KindTransport, Op: op, Err: err}
}

// Protocol reports a reply envelope carrying a non-success status.
func Protocol(op string, code int, msg string) error {
	return &Error{Kind: KindProtocol, Op: op, Code: code, Message: msg}
}

func Decode(op string, err error) error {
	return &Error{Kind: KindDecode, Op: op, Err: err}
}

func Verification(op string, err error) error {
	return &Error{Kind: KindVerification, Op: op, Err: err}
}

// KindOf returns the kind of the outermost classified error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err was classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
