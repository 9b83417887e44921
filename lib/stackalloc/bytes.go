package stackalloc

import (
	"fmt"
	"unsafe"
)

// Bytes is an analog to []byte, but it represents a byte slice allocated
// inside the stack buffer.
//
// stackalloc.Bytes is a simple struct that should be passed by value and
// is not considered by Go runtime as a legit pointer type.
// So the GC can skip it during the concurrent mark phase.
//
// stackalloc.Bytes can be converted to []byte by using the
// BytesView.BytesToRef method, but we'd suggest to do it right before use
// to eliminate its visibility scope. If you want to move a certain
// stackalloc.Bytes out of the stack to the general heap you can use
// the BytesView.CopyBytesToHeap method.
type Bytes struct {
	data Ptr
	len  uintptr
	cap  uintptr
}

// String provides a string snapshot of the current stackalloc.Bytes header.
func (b Bytes) String() string {
	return fmt.Sprintf("{data: %v len: %v cap: %v}", b.data, b.len, b.cap)
}

// Len returns the length of the stackalloc.Bytes. Direct analog of len([]byte)
func (b Bytes) Len() int {
	return int(b.len)
}

// Cap returns the capacity of the stackalloc.Bytes. Direct analog of cap([]byte)
func (b Bytes) Cap() int {
	return int(b.cap)
}

// SubSlice is an analog to []byte[low:high]
// Returns sub-slice of the stackalloc.Bytes and panics in case of bounds out of range.
func (b Bytes) SubSlice(low int, high int) Bytes {
	inBounds := low >= 0 && low <= high && high <= int(b.len)
	if !inBounds {
		panic(fmt.Errorf(
			"runtime error: slice bounds out of range [%d:%d] with length %d",
			low, high, b.len,
		))
	}
	return Bytes{
		data: Ptr{
			offset:    b.data.offset + uint32(low),
			stackMask: b.data.stackMask,
		},
		len: uintptr(high - low),
		cap: b.cap - uintptr(low),
	}
}

// BytesView is an allocation view constructed on top of a Stack
// and used to allocate byte slices and strings inside that stack.
//
// It operates with the stackalloc.Bytes type, which is an analog to
// []byte backed by stack memory. For trivial cases, it can work directly
// with []byte or string.
type BytesView struct {
	stack *Stack
}

// NewBytesView creates an allocation view on top of the target stack.
func NewBytesView(stack *Stack) *BytesView {
	return &BytesView{stack: stack}
}

// MakeBytes is a direct analog of make([]byte, len)
// It allocates a slice with the specified length inside the stack.
// The slice capacity includes the alignment padding of the allocation.
func (v *BytesView) MakeBytes(length int) (Bytes, error) {
	if length < 0 {
		return Bytes{}, ErrInvalidParameter
	}
	if length == 0 {
		return Bytes{}, nil
	}
	slicePtr, allocErr := v.stack.Alloc(uintptr(length))
	if allocErr != nil {
		return Bytes{}, allocErr
	}
	paddedCap := uintptr(length) + calculatePadding(uintptr(length), Alignment)
	return Bytes{
		data: slicePtr,
		len:  uintptr(length),
		cap:  paddedCap,
	}, nil
}

// MakeBytesWithCapacity is a direct analog of make([]byte, len, cap)
// It allocates a slice with the specified length and capacity inside the stack.
func (v *BytesView) MakeBytesWithCapacity(length int, capacity int) (Bytes, error) {
	if capacity < length {
		return Bytes{}, ErrInvalidParameter
	}
	bytes, allocErr := v.MakeBytes(capacity)
	if allocErr != nil {
		return Bytes{}, allocErr
	}
	bytes.len = uintptr(length)
	return bytes, nil
}

// Append is a direct analog of append([]byte, ...byte).
// If necessary, it will allocate an additional region inside the stack.
func (v *BytesView) Append(bytesSlice Bytes, bytesToAppend ...byte) (Bytes, error) {
	target, allocErr := v.growIfNecessary(bytesSlice, len(bytesToAppend))
	if allocErr != nil {
		return Bytes{}, allocErr
	}
	target.len = bytesSlice.len + uintptr(len(bytesToAppend))
	copy(v.BytesToRef(target)[bytesSlice.len:], bytesToAppend)
	return target, nil
}

// AppendString appends bytes from the target string to the end of the target buffer.
// If necessary, it will allocate an additional region inside the stack.
func (v *BytesView) AppendString(bytesSlice Bytes, str string) (Bytes, error) {
	target, allocErr := v.growIfNecessary(bytesSlice, len(str))
	if allocErr != nil {
		return Bytes{}, allocErr
	}
	target.len = bytesSlice.len + uintptr(len(str))
	copy(v.BytesToRef(target)[bytesSlice.len:], str)
	return target, nil
}

// AppendByte appends one byte to the end of the target buffer.
// If necessary, it will allocate an additional region inside the stack.
func (v *BytesView) AppendByte(bytesSlice Bytes, byteToAppend byte) (Bytes, error) {
	target, allocErr := v.growIfNecessary(bytesSlice, 1)
	if allocErr != nil {
		return Bytes{}, allocErr
	}
	target.len = bytesSlice.len + 1
	v.BytesToRef(target)[bytesSlice.len] = byteToAppend
	return target, nil
}

// Embed copies the specified bytes into the stack.
//
// It can be used if you need a full copy for future use,
// but you want to eliminate excessive allocations
// or just to hide this byte slice from GC.
func (v *BytesView) Embed(src []byte) (Bytes, error) {
	result, allocErr := v.MakeBytes(len(src))
	if allocErr != nil {
		return Bytes{}, allocErr
	}
	resultAsSlice := v.BytesToRef(result)
	copy(resultAsSlice, src)
	return result, nil
}

// EmbedAsBytes copies the specified bytes into the stack and returns
// a []byte that points to the copy.
func (v *BytesView) EmbedAsBytes(src []byte) ([]byte, error) {
	bytes, allocErr := v.Embed(src)
	if allocErr != nil {
		return nil, allocErr
	}
	return v.BytesToRef(bytes), nil
}

// EmbedAsString copies the specified bytes into the stack and casts the copy to string.
func (v *BytesView) EmbedAsString(src []byte) (string, error) {
	bytes, allocErr := v.Embed(src)
	if allocErr != nil {
		return "", allocErr
	}
	return v.BytesToStringRef(bytes), nil
}

// BytesToRef converts stackalloc.Bytes to []byte,
// but we'd suggest to do it right before use to eliminate its visibility scope
// and potentially prevent it's escaping to the heap.
func (v *BytesView) BytesToRef(bytes Bytes) []byte {
	if bytes.cap == 0 {
		return nil
	}
	ref := (*byte)(v.stack.ToRef(bytes.data))
	return unsafe.Slice(ref, int(bytes.cap))[:bytes.len]
}

// BytesToStringRef converts stackalloc.Bytes to string,
// but we'd suggest to do it right before use to eliminate its visibility scope.
// If you want to move a certain stackalloc.Bytes as a string out of the stack
// to the general heap you can use the BytesView.CopyBytesToStringOnHeap method.
func (v *BytesView) BytesToStringRef(bytes Bytes) string {
	if bytes.len == 0 {
		return ""
	}
	ref := (*byte)(v.stack.ToRef(bytes.data))
	return unsafe.String(ref, int(bytes.len))
}

// CopyBytesToHeap copies Bytes to the general heap. Can be used if you want
// to rewind or reset the underlying stack and leave this data accessible.
func (v *BytesView) CopyBytesToHeap(bytes Bytes) []byte {
	sliceFromStack := v.BytesToRef(bytes)
	copyOnHeap := make([]byte, bytes.len)
	copy(copyOnHeap, sliceFromStack)
	return copyOnHeap
}

// CopyBytesToStringOnHeap copies Bytes to the general heap as string.
// Can be used if you want to rewind or reset the underlying stack
// and leave this data accessible.
func (v *BytesView) CopyBytesToStringOnHeap(bytes Bytes) string {
	sliceFromStack := v.BytesToRef(bytes)
	copyOnHeap := make([]byte, bytes.len)
	copy(copyOnHeap, sliceFromStack)
	return string(copyOnHeap)
}

// growIfNecessary extends the target slice in place when it is the topmost
// allocation and the stack has room right after it. Otherwise it allocates
// a fresh region and copies the payload, trying twice the required size
// first and falling back to an exact fit.
func (v *BytesView) growIfNecessary(bytesSlice Bytes, requiredSize int) (Bytes, error) {
	target := bytesSlice
	availableSize := int(target.cap - target.len)
	if availableSize >= requiredSize {
		return target, nil
	}

	sliceIsOnTop := false
	if marker, ok := v.stack.Marker(); ok {
		sliceIsOnTop = target.cap > 0 &&
			marker.stackMask == target.data.stackMask &&
			marker.offset == target.data.offset+uint32(target.cap)
	}
	extensionSize := uintptr(requiredSize - availableSize)
	paddedExtension := extensionSize + calculatePadding(extensionSize, Alignment)
	if sliceIsOnTop && uintptr(v.stack.Available()) >= paddedExtension {
		_, enhancingErr := v.stack.Alloc(extensionSize)
		if enhancingErr != nil {
			return Bytes{}, enhancingErr
		}
		target.cap += paddedExtension
		return target, nil
	}

	requiredLen := int(target.len) + requiredSize
	newTarget, allocErr := v.MakeBytes(2 * requiredLen)
	if allocErr == ErrOutOfMemory {
		newTarget, allocErr = v.MakeBytes(requiredLen)
	}
	if allocErr != nil {
		return Bytes{}, allocErr
	}
	if target.len > 0 {
		copy(v.BytesToRef(newTarget), v.BytesToRef(target))
	}
	newTarget.len = target.len
	return newTarget, nil
}
