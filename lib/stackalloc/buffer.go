package stackalloc

// Buffer is an analog of bytes.Buffer that accumulates its payload inside
// the target stack. It implements io.Writer, io.StringWriter and io.ByteWriter.
//
// A Buffer has to be created by NewBuffer; the zero value is unusable
// because it has no stack to allocate from.
type Buffer struct {
	view          *BytesView
	currentBuffer Bytes
}

// NewBuffer creates a Buffer on top of the target stack.
func NewBuffer(stack *Stack) *Buffer {
	return &Buffer{view: NewBytesView(stack)}
}

func (b *Buffer) init(initSize int) error {
	if b.view == nil {
		return ErrInvalidParameter
	}
	if b.currentBuffer.Cap() == 0 {
		newBuffer, allocErr := b.view.MakeBytesWithCapacity(0, initSize)
		if allocErr != nil {
			return allocErr
		}
		b.currentBuffer = newBuffer
	}
	return nil
}

// WriteString appends the contents of s to the buffer.
func (b *Buffer) WriteString(s string) (n int, err error) {
	initErr := b.init(len(s))
	if initErr != nil {
		return 0, initErr
	}
	changedBuffer, allocErr := b.view.AppendString(b.currentBuffer, s)
	if allocErr != nil {
		return 0, allocErr
	}
	b.currentBuffer = changedBuffer
	return len(s), nil
}

// Write appends the contents of p to the buffer.
func (b *Buffer) Write(p []byte) (n int, err error) {
	initErr := b.init(len(p))
	if initErr != nil {
		return 0, initErr
	}
	changedBuffer, allocErr := b.view.Append(b.currentBuffer, p...)
	if allocErr != nil {
		return 0, allocErr
	}
	b.currentBuffer = changedBuffer
	return len(p), nil
}

// WriteByte appends one byte to the buffer.
func (b *Buffer) WriteByte(c byte) error {
	initErr := b.init(1)
	if initErr != nil {
		return initErr
	}
	changedBuffer, allocErr := b.view.AppendByte(b.currentBuffer, c)
	if allocErr != nil {
		return allocErr
	}
	b.currentBuffer = changedBuffer
	return nil
}

// Bytes returns the accumulated payload as a []byte that points into the stack.
func (b *Buffer) Bytes() []byte {
	if b.view == nil || b.currentBuffer.Len() == 0 {
		return nil
	}
	return b.view.BytesToRef(b.currentBuffer)
}

// String returns the accumulated payload as a string that points into the stack.
func (b *Buffer) String() string {
	if b.view == nil || b.currentBuffer.Len() == 0 {
		return ""
	}
	return b.view.BytesToStringRef(b.currentBuffer)
}

// CopyBytesToStringOnHeap copies the accumulated payload to the general heap as string.
func (b *Buffer) CopyBytesToStringOnHeap() string {
	if b.view == nil || b.currentBuffer.Len() == 0 {
		return ""
	}
	return b.view.CopyBytesToStringOnHeap(b.currentBuffer)
}

// CopyBytesToHeap copies the accumulated payload to the general heap.
func (b *Buffer) CopyBytesToHeap() []byte {
	if b.view == nil || b.currentBuffer.Len() == 0 {
		return nil
	}
	return b.view.CopyBytesToHeap(b.currentBuffer)
}

// StackBytes returns the accumulated payload as stackalloc.Bytes.
func (b *Buffer) StackBytes() Bytes {
	if b.view == nil || b.currentBuffer.Len() == 0 {
		return Bytes{}
	}
	return b.currentBuffer
}

// Len returns the count of bytes accumulated in the buffer.
func (b *Buffer) Len() int {
	return b.currentBuffer.Len()
}

// Cap returns the capacity currently reserved for the buffer payload.
func (b *Buffer) Cap() int {
	return b.currentBuffer.Cap()
}
