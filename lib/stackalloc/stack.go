package stackalloc

import (
	"fmt"
	"math"
	"math/rand"
	"unsafe"
)

// Stack is a fixed-capacity bump allocator with LIFO reclamation.
//
// It is bound to a caller-supplied buffer for its whole life and never
// allocates or frees that buffer itself. Allocations advance a single
// cursor; FreeToMarker and Reset rewind it. There is no per-allocation
// bookkeeping, so every operation except the Calloc zero-fill completes
// in constant time.
//
// Stack is not thread-safe. If several goroutines must share one Stack,
// the caller has to serialize every call.
type Stack struct {
	buffer       []byte
	alignedStart uint32
	offset       uint32
	capacity     uint32

	stackMask uint16
}

// NewStack creates a Stack bound to the provided buffer.
// See Init for the binding contract.
func NewStack(buf []byte) (*Stack, error) {
	s := &Stack{}
	if initErr := s.Init(buf); initErr != nil {
		return nil, initErr
	}
	return s, nil
}

// Init binds the stack to a caller-supplied buffer.
//
// It returns ErrInvalidParameter if the stack or the buffer is absent or
// the buffer is smaller than Alignment, and ErrOutOfMemory if rounding
// the buffer start up to Alignment leaves no usable space.
//
// Init fully overwrites any prior state, so re-initialization with a new
// buffer is allowed. Every re-initialization rotates the stack identity,
// which invalidates all previously issued Ptr and Marker values.
func (s *Stack) Init(buf []byte) error {
	if s == nil || buf == nil || len(buf) < Alignment {
		return ErrInvalidParameter
	}
	if uint64(len(buf)) > math.MaxUint32 {
		return ErrInvalidParameter
	}
	if !isPowerOfTwo(Alignment) {
		panic(fmt.Errorf("alignment should be power of 2. actual value: %d", Alignment))
	}

	base := uintptr(unsafe.Pointer(&buf[0]))
	padding := calculatePadding(base, Alignment)
	if padding >= uintptr(len(buf)) {
		return ErrOutOfMemory
	}

	s.buffer = buf
	s.capacity = uint32(len(buf))
	s.alignedStart = uint32(padding)
	s.offset = s.alignedStart
	if s.stackMask == 0 {
		s.stackMask = uint16(rand.Uint32()) | 1
	} else {
		s.stackMask = (s.stackMask + 1) | 1
	}
	return nil
}

// Alloc reserves size bytes and returns a stackalloc.Ptr to the region.
//
// The region start is aligned to Alignment and the cursor advances by the
// size rounded up to Alignment, so the cursor itself always stays aligned.
// The region content is whatever the buffer held, nothing is zeroed.
//
// It returns ErrInvalidParameter for an absent or unbound stack and for a
// zero size, and ErrOutOfMemory if the request doesn't fit or the size
// arithmetic would wrap.
func (s *Stack) Alloc(size uintptr) (Ptr, error) {
	if s == nil || s.buffer == nil || size == 0 {
		return Ptr{}, ErrInvalidParameter
	}

	paddedSize := size + calculatePadding(size, Alignment)
	if paddedSize < size {
		return Ptr{}, ErrOutOfMemory
	}
	if uint64(paddedSize) > uint64(s.capacity-s.offset) {
		return Ptr{}, ErrOutOfMemory
	}

	allocationOffset := s.offset
	s.offset += uint32(paddedSize)
	return Ptr{offset: allocationOffset, stackMask: s.stackMask}, nil
}

// Calloc reserves num*size bytes, zero-fills them and returns a
// stackalloc.Ptr to the region.
//
// It returns ErrInvalidParameter if either argument is zero or their
// product would overflow, otherwise it reports whatever Alloc reports.
func (s *Stack) Calloc(num uintptr, size uintptr) (Ptr, error) {
	if num == 0 || size == 0 {
		return Ptr{}, ErrInvalidParameter
	}
	if num > ^uintptr(0)/size {
		return Ptr{}, ErrInvalidParameter
	}

	total := num * size
	result, allocErr := s.Alloc(total)
	if allocErr != nil {
		return Ptr{}, allocErr
	}
	clearBytes(s.buffer[result.offset : uintptr(result.offset)+total])
	return result, nil
}

// Marker captures the current cursor as an opaque rewind target.
// The second result is false if the stack is absent or unbound.
// Marker is a pure query and never mutates the stack.
func (s *Stack) Marker() (Marker, bool) {
	if s == nil || s.buffer == nil {
		return Marker{}, false
	}
	return Marker{offset: s.offset, stackMask: s.stackMask}, true
}

// FreeToMarker rewinds the cursor to a previously captured position,
// reclaiming every allocation made since that capture.
//
// It returns ErrInvalidParameter if the stack or the marker is absent,
// and ErrInvalidMarker if the marker was issued by a different stack
// (or before a re-initialization), lies outside the half-open live range,
// or is not aligned to Alignment.
func (s *Stack) FreeToMarker(m Marker) error {
	if s == nil || m == (Marker{}) {
		return ErrInvalidParameter
	}
	if s.buffer == nil || m.stackMask != s.stackMask {
		return ErrInvalidMarker
	}
	if m.offset < s.alignedStart || m.offset >= s.offset {
		return ErrInvalidMarker
	}
	base := uintptr(unsafe.Pointer(&s.buffer[0]))
	if (base+uintptr(m.offset))&(Alignment-1) != 0 {
		return ErrInvalidMarker
	}

	s.offset = m.offset
	return nil
}

// Reset reclaims all allocations by rewinding the cursor to the aligned
// buffer start. It is safe to call on an absent or unbound stack.
func (s *Stack) Reset() {
	if s == nil || s.buffer == nil {
		return
	}
	s.offset = s.alignedStart
}

// Capacity returns the total byte size of the bound buffer,
// or 0 if the stack is absent.
func (s *Stack) Capacity() int {
	if s == nil {
		return 0
	}
	return int(s.capacity)
}

// Used returns the count of bytes between the aligned buffer start and the
// cursor, or 0 if the stack is absent. The value includes alignment padding.
func (s *Stack) Used() int {
	if s == nil {
		return 0
	}
	return int(s.offset - s.alignedStart)
}

// Available returns the count of bytes between the cursor and the end of
// the buffer, or 0 if the stack is absent.
func (s *Stack) Available() int {
	if s == nil {
		return 0
	}
	return int(s.capacity - s.offset)
}

// Validate checks the internal consistency of the stack without mutating it.
//
// It returns ErrCorruptedState if the stack or its buffer is absent, if the
// recorded capacity disagrees with the buffer, or if the cursor lies outside
// the valid range. Intended for defensive use after operations that could
// corrupt state through misuse of raw references.
func (s *Stack) Validate() error {
	if s == nil || s.buffer == nil {
		return ErrCorruptedState
	}
	if s.capacity != uint32(len(s.buffer)) {
		return ErrCorruptedState
	}
	base := uintptr(unsafe.Pointer(&s.buffer[0]))
	if uintptr(s.alignedStart) != calculatePadding(base, Alignment) {
		return ErrCorruptedState
	}
	if s.offset < s.alignedStart || s.offset > s.capacity {
		return ErrCorruptedState
	}
	return nil
}

// ToRef converts stackalloc.Ptr to unsafe.Pointer.
//
// This method panics if you pass a stackalloc.Ptr that was issued by a
// different stack or before a re-initialization, this is done by
// comparison of stackalloc.Ptr.stackMask fields.
//
// We'd suggest calling this method right before using the result pointer
// to eliminate its visibility scope and potentially prevent it's escaping
// to the heap.
func (s *Stack) ToRef(p Ptr) unsafe.Pointer {
	if p.stackMask != s.stackMask {
		panic("pointer isn't part of this stack")
	}
	return unsafe.Pointer(&s.buffer[p.offset])
}

// Metrics provides a snapshot of current allocation statistics,
// that can be used by end-users or other allocators for introspection.
func (s *Stack) Metrics() Metrics {
	if s == nil {
		return Metrics{}
	}
	return Metrics{
		UsedBytes:      s.Used(),
		AvailableBytes: s.Available(),
		Capacity:       s.Capacity(),
	}
}

// String provides a string snapshot of the current stack state.
func (s *Stack) String() string {
	if s == nil {
		return "stack{nil}"
	}
	return fmt.Sprintf("stack{mask: %v offset: %v metrics: %v}", s.stackMask, s.offset, s.Metrics())
}
