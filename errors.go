package turbo

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the conditions a caller can match with errors.Is.
var (
	// ErrCapacityExceeded is returned by Alloc when the requested element
	// count cannot be represented in a texture dimension every supported
	// device guarantees (2048x2048 texels, 2^24 floats).
	ErrCapacityExceeded = errors.New("turbo: requested length exceeds texture capacity")

	// ErrResourceAllocation is returned when the device refuses to create
	// a buffer, texture, layout, or other GPU object. Non-retryable.
	ErrResourceAllocation = errors.New("turbo: GPU resource allocation failed")

	// ErrKernelCompile is the sentinel wrapped by CompileError.
	ErrKernelCompile = errors.New("turbo: kernel compilation failed")

	// ErrKernelLink is the sentinel wrapped by LinkError.
	ErrKernelLink = errors.New("turbo: kernel link failed")

	// ErrFramebuffer is the sentinel wrapped by FramebufferError.
	ErrFramebuffer = errors.New("turbo: render target incomplete")

	// ErrEnvironmentUnsupported indicates the process has no usable GPU
	// environment: no registered engine, no backend, no adapters, or a
	// device without float texture support. Raised at bootstrap, never
	// per call.
	ErrEnvironmentUnsupported = errors.New("turbo: GPU environment unsupported")
)

// CompileError describes a kernel body that failed to compile.
//
// Line numbers in Log and Line refer to the caller's own body text: the
// prelude lines the assembler adds are subtracted before the error is
// built, so line 1 is the first line the caller wrote.
type CompileError struct {
	// Line is the first offending line in the caller's body, 1-based.
	// Zero when the diagnostic carried no usable position.
	Line int

	// Log is the diagnostic text from the shader front end or device.
	Log string

	// Body is the caller's kernel body annotated with its own line numbers.
	Body string
}

func (e *CompileError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("turbo: kernel compilation failed at line %d: %s", e.Line, e.Log)
	}
	return fmt.Sprintf("turbo: kernel compilation failed: %s", e.Log)
}

func (e *CompileError) Unwrap() error { return ErrKernelCompile }

// AnnotateBody numbers each line of a kernel body the way CompileError
// reports positions, starting at 1.
func AnnotateBody(body string) string {
	lines := strings.Split(body, "\n")
	var b strings.Builder
	for i, line := range lines {
		fmt.Fprintf(&b, "%4d | %s\n", i+1, line)
	}
	return b.String()
}

// LinkError describes stages that compiled individually but failed to
// link into a render pipeline.
type LinkError struct {
	Log string
}

func (e *LinkError) Error() string {
	return "turbo: kernel link failed: " + e.Log
}

func (e *LinkError) Unwrap() error { return ErrKernelLink }

// FramebufferKind classifies render target completeness failures.
type FramebufferKind int

const (
	// FramebufferUnknown is an inconsistency with no recognized cause.
	FramebufferUnknown FramebufferKind = iota

	// FramebufferMissingAttachment means the color attachment view is
	// absent or was not created.
	FramebufferMissingAttachment

	// FramebufferDimensionMismatch means the attachment dimensions do not
	// match the requested render size.
	FramebufferDimensionMismatch

	// FramebufferUnsupportedFormat means the attachment texture cannot be
	// rendered to or read back in the required float format.
	FramebufferUnsupportedFormat
)

func (k FramebufferKind) String() string {
	switch k {
	case FramebufferMissingAttachment:
		return "missing attachment"
	case FramebufferDimensionMismatch:
		return "dimension mismatch"
	case FramebufferUnsupportedFormat:
		return "unsupported format"
	default:
		return "unknown status"
	}
}

// FramebufferError describes an unusable offscreen render target. These
// are device or environment faults, never caused by caller input.
type FramebufferError struct {
	Kind   FramebufferKind
	Detail string
}

func (e *FramebufferError) Error() string {
	if e.Detail == "" {
		return "turbo: render target incomplete: " + e.Kind.String()
	}
	return fmt.Sprintf("turbo: render target incomplete: %s: %s", e.Kind, e.Detail)
}

func (e *FramebufferError) Unwrap() error { return ErrFramebuffer }
