// Package stackalloc provides a deterministic, fixed-capacity stack
// allocator that carves aligned regions out of a caller supplied buffer
// and reclaims them in LIFO order through markers.
package stackalloc

import (
	"fmt"
)

// Alignment is the power-of-two boundary that every allocated region and
// every cursor position satisfies. It is fixed at build time.
const Alignment = 8

// Error type used by the library to declare error constants.
type Error string

// Error method that implements error interface.
func (e Error) Error() string {
	return string(e)
}

// ErrInvalidParameter typically returned if
// you passed an absent stack, an absent buffer or a zero size.
const ErrInvalidParameter = Error("invalid parameter")

// ErrOutOfMemory typically returned if
// the stack can't afford the requested allocation.
const ErrOutOfMemory = Error("out of memory")

// ErrCorruptedState returned by Validate if
// the internal state of the stack is inconsistent.
const ErrCorruptedState = Error("corrupted state")

// ErrInvalidMarker returned if a rewind target is outside the live
// region, misaligned, or was issued by a different stack.
const ErrInvalidMarker = Error("invalid marker")

// ErrNotLifo is reserved for rewinds that violate LIFO order.
// The current rewind contract is range + alignment + stack identity,
// so this value is declared for taxonomy stability but never returned.
const ErrNotLifo = Error("not lifo free order")

// Code returns the stable numeric representation of the error,
// suitable for logs and persisted diagnostics. Success is 0.
func (e Error) Code() uint8 {
	switch e {
	case ErrInvalidParameter:
		return 1
	case ErrOutOfMemory:
		return 2
	case ErrCorruptedState:
		return 3
	case ErrInvalidMarker:
		return 4
	case ErrNotLifo:
		return 5
	}
	return 0
}

// Ptr is a struct, which is basically represents an offset of the allocated region
// inside the stack buffer.
//
// stackalloc.Ptr is a simple struct that should be passed by value and
// is not considered by Go runtime as a legit pointer type.
// So the GC can skip it during the concurrent mark phase.
//
// stackalloc.Ptr can be converted to unsafe.Pointer by using the Stack.ToRef method,
// but we'd suggest to do it right before use to eliminate its visibility scope
// and potentially prevent it's escaping to the heap.
type Ptr struct {
	offset    uint32
	stackMask uint16
}

// String provides a string snapshot of the current stackalloc.Ptr.
func (p Ptr) String() string {
	return fmt.Sprintf("{mask: %v offset: %v}", p.stackMask, p.offset)
}

// Marker is an opaque capture of the stack cursor that can't be converted
// to unsafe.Pointer or used as any kind of reference.
//
// It is only valid for the Stack instance that produced it and can be
// passed to Stack.FreeToMarker to reclaim every allocation made after
// the capture. The zero Marker is absent and never valid.
type Marker struct {
	offset    uint32
	stackMask uint16
}

// String provides a string snapshot of the current stackalloc.Marker.
func (m Marker) String() string {
	return fmt.Sprintf("{mask: %v offset: %v}", m.stackMask, m.offset)
}

// Metrics is a struct that represents a snapshot of current allocation statistics,
// that can be used by end-users or other allocators for introspection.
type Metrics struct {
	UsedBytes      int // count of bytes actually allocated and used inside the stack
	AvailableBytes int // count of bytes between the cursor and the end of the buffer
	Capacity       int // total byte size of the bound buffer
}

// String provides a string snapshot of the Metrics state.
func (m Metrics) String() string {
	return fmt.Sprintf(
		"{UsedBytes: %v AvailableBytes: %v Capacity: %v}",
		m.UsedBytes, m.AvailableBytes, m.Capacity,
	)
}

func isPowerOfTwo(x uintptr) bool {
	return x != 0 && (x&(x-1)) == 0
}

func calculatePadding(offset uintptr, targetAlignment uintptr) uintptr {
	mask := targetAlignment - 1
	return (targetAlignment - (offset & mask)) & mask
}

func clearBytes(buf []byte) {
	if len(buf) == 0 {
		return
	}
	// this pattern will be recognized by compiler and optimized
	for i := range buf {
		buf[i] = 0
	}
}
