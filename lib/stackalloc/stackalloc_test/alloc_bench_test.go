package stackalloc_test

import (
	"testing"

	"github.com/gradinarovo/StackAllocator/lib/stackalloc"
)

const benchStackSize = 1 << 20

func BenchmarkAlloc(b *testing.B) {
	s, initErr := stackalloc.NewStack(make([]byte, benchStackSize))
	if initErr != nil {
		b.Fatal(initErr)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, allocErr := s.Alloc(48)
		if allocErr != nil {
			s.Reset()
		}
	}
}

func BenchmarkMarkerRewind(b *testing.B) {
	s, initErr := stackalloc.NewStack(make([]byte, benchStackSize))
	if initErr != nil {
		b.Fatal(initErr)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m, _ := s.Marker()
		_, allocErr := s.Alloc(512)
		if allocErr != nil {
			s.Reset()
			continue
		}
		rewindErr := s.FreeToMarker(m)
		if rewindErr != nil {
			b.Fatal(rewindErr)
		}
	}
}

func BenchmarkCalloc(b *testing.B) {
	s, initErr := stackalloc.NewStack(make([]byte, benchStackSize))
	if initErr != nil {
		b.Fatal(initErr)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, callocErr := s.Calloc(16, 8)
		if callocErr != nil {
			s.Reset()
		}
	}
}
