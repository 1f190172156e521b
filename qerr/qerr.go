// Package qerr defines the error vocabulary shared by sysmem, memblock and
// reserver. It follows the same two-tier shape the teacher kernel used: a
// small set of sentinel values for the hot allocate/release path (matching
// the teacher's allocation-free errors.KernelError), plus a wrapping Error
// type for cases that carry a causal error (matching the teacher's
// kernel.Error{Module, Message}, generalized with Unwrap support).
package qerr

import "fmt"

// Sentinel errors returned by sysmem, memblock and reserver. Callers should
// compare against these with errors.Is rather than string matching.
var (
	// ErrOutOfMemory is returned when the OS refused to hand back a
	// requested virtual memory region.
	ErrOutOfMemory = sentinel("out of memory")

	// ErrForeignPointer is returned by the generic-allocator fallback of
	// sysmem.Release when the pointer was not obtained from Reserve.
	// ReserverCore.Release reports a foreign pointer by returning false.
	ErrForeignPointer = sentinel("pointer not owned by this allocator")

	// ErrInvalidAlignment is returned by reserver.Reserve when the
	// requested alignment is not a power of two. An alignment too large
	// to satisfy within a block is not reported with this error; that
	// reservation fails with ErrOutOfMemory.
	ErrInvalidAlignment = sentinel("invalid alignment")

	// ErrZeroValue is returned by BigInt bit-scan operations when called
	// on a zero value; spec.md §4.8 leaves this undefined at the
	// platform-primitive level, so BigInt guards it explicitly here.
	ErrZeroValue = sentinel("bit-scan on zero value")

	// ErrMalformedRange is returned by cpuset.ParseRange on syntactically
	// invalid range-list text.
	ErrMalformedRange = sentinel("malformed cpu range list")

	// ErrUnknownCPU is returned by cpuset.ParseRange when an id in the
	// range list is not present in the system's online set.
	ErrUnknownCPU = sentinel("cpu id not present in online set")
)

type sentinel string

func (e sentinel) Error() string { return string(e) }

// Error wraps a causal error with the module and operation where it
// occurred. It mirrors the teacher's kernel.Error{Module, Message}, with
// Unwrap added so callers can use errors.Is/errors.As against the wrapped
// cause.
type Error struct {
	// Op is the operation that failed, e.g. "sysmem.Reserve".
	Op string
	// Err is the underlying cause. May be one of the sentinels above,
	// another *Error, or an error returned by a golang.org/x/sys/unix call.
	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap returns an *Error attributing err to op, or nil if err is nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}
