package main

import (
	"fmt"
	"reflect"
	"time"

	"github.com/gradinarovo/StackAllocator/lib/stackalloc"
)

func main() {
	backingBuffer := make([]byte, 1024)
	stack, initErr := stackalloc.NewStack(backingBuffer)
	if initErr != nil {
		panic(initErr)
	}
	fmt.Printf("bound: %v\n", stack.Metrics())

	tPtr := AllocTimePtr(stack, time.Now())
	fmt.Printf("%+v\n", tPtr)
	fmt.Printf("%+v\n", tPtr.DeRef(stack))

	tPtr.Set(stack, tPtr.DeRef(stack).Add(time.Hour))
	fmt.Printf("%+v\n", tPtr.DeRef(stack))

	marker, _ := stack.Marker()
	scratch, allocErr := stack.Calloc(16, 8)
	if allocErr != nil {
		panic(allocErr)
	}
	fmt.Printf("scratch: %v; after calloc: %v\n", scratch, stack.Metrics())

	if rewindErr := stack.FreeToMarker(marker); rewindErr != nil {
		panic(rewindErr)
	}
	fmt.Printf("after rewind: %v\n", stack.Metrics())

	view := stackalloc.NewBytesView(stack)
	greeting, embedErr := view.EmbedAsString([]byte("allocated on the stack"))
	if embedErr != nil {
		panic(embedErr)
	}
	fmt.Printf("%s\n", greeting)

	stack.Reset()
	fmt.Printf("after reset: %v\n", stack.Metrics())
	if validateErr := stack.Validate(); validateErr != nil {
		panic(validateErr)
	}
}

type TimePtr stackalloc.Ptr

func AllocTimePtr(stack *stackalloc.Stack, target time.Time) TimePtr {
	timeSize := reflect.TypeOf(time.Time{}).Size()
	ptr, allocErr := stack.Alloc(timeSize)
	if allocErr != nil {
		panic(allocErr)
	}
	tmpPtr := (*time.Time)(stack.ToRef(ptr))
	*tmpPtr = target
	return TimePtr(ptr)
}

func (t TimePtr) DeRef(stack *stackalloc.Stack) time.Time {
	return *(*time.Time)(stack.ToRef(stackalloc.Ptr(t)))
}

func (t TimePtr) Set(stack *stackalloc.Stack, target time.Time) {
	tmpPtr := (*time.Time)(stack.ToRef(stackalloc.Ptr(t)))
	*tmpPtr = target
}
