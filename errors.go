package gifenc

import (
	"errors"
	"fmt"
)

// Result mirrors the sticky status carried by an Encoder handle. It is
// returned from AddFrame/Close alongside the error value: once the handle
// records anything other than OK or pending, every later AddFrame returns
// that same Result without doing any work.
type Result int

const (
	// OK indicates the handle is healthy and has accepted at least one frame.
	OK Result = iota
	// pending is the handle's state before the first successful AddFrame.
	// It never escapes the package: Close converts it to Error.
	pending
	// Error is a validation or logic failure (bad flag combination, bad
	// canvas/frame invariant).
	Error
	// IndexError is returned when a pixel index is out of range for the
	// palette driving the current frame's LZW encode.
	IndexError
	// AllocError is returned when a canvas is too large for the scratch
	// buffers this encoder needs to build.
	AllocError
	// WriteError is returned when the caller's sink rejects a write.
	WriteError
	// CloseError is returned when closing the caller-opened output file
	// fails.
	CloseError
	// EncodeError wraps any other LZW encoding failure.
	EncodeError
)

func (r Result) String() string {
	switch r {
	case OK:
		return "ok"
	case pending:
		return "pending"
	case Error:
		return "error"
	case IndexError:
		return "index error"
	case AllocError:
		return "alloc error"
	case WriteError:
		return "write error"
	case CloseError:
		return "close error"
	case EncodeError:
		return "encode error"
	default:
		return "unknown result"
	}
}

// Sentinel errors, wrapped with context via fmt.Errorf("...: %w", ...) at
// the call site. Callers can match them with errors.Is.
var (
	ErrValidation = errors.New("gifenc: invalid configuration")
	ErrIndex      = errors.New("gifenc: pixel index out of range for palette")
	ErrAlloc      = errors.New("gifenc: canvas too large to allocate scratch buffers")
	ErrWrite      = errors.New("gifenc: write sink failed")
	ErrClose      = errors.New("gifenc: failed to close output")
	ErrEncode     = errors.New("gifenc: lzw encoding failed")
)

// allocErrorf wraps a recovered panic value (make's only failure signal)
// as an ErrAlloc-flavored error.
func allocErrorf(r any) error {
	return fmt.Errorf("%w: %v", ErrAlloc, r)
}

// classifyErr maps an error produced somewhere in the encode pipeline to
// the sticky Result code it should poison the handle with.
func classifyErr(err error) Result {
	switch {
	case errors.Is(err, ErrIndex):
		return IndexError
	case errors.Is(err, ErrAlloc):
		return AllocError
	case errors.Is(err, ErrWrite):
		return WriteError
	case errors.Is(err, ErrEncode):
		return EncodeError
	default:
		return Error
	}
}
