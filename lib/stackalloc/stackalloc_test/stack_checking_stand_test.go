package stackalloc_test

import (
	"testing"

	"github.com/gradinarovo/StackAllocator/lib/stackalloc"
)

const requiredBytesForBasicTest = 128

type basicStackCheckingStand struct {
	ptrStringsSet     stringsSetWithOrder
	markerStringsSet  stringsSetWithOrder
	metricsStringsSet stringsSetWithOrder
	stackStringsSet   stringsSetWithOrder
}

func (s *basicStackCheckingStand) checkPointerIsUnique(t *testing.T, ptr stackalloc.Ptr) {
	assert(ptr.String() != "", "can't be empty")
	ptrIsUnique := s.ptrStringsSet.addIfUnique(ptr.String())
	assert(ptrIsUnique, "ptr should be unique. target: %v", ptr.String())
}

func (s *basicStackCheckingStand) checkMarkerIsUnique(t *testing.T, m stackalloc.Marker) {
	assert(m.String() != "", "can't be empty")
	markerIsUnique := s.markerStringsSet.addIfUnique(m.String())
	assert(markerIsUnique, "marker should be unique. target: %v", m.String())
}

func (s *basicStackCheckingStand) checkMetricsAreUnique(t *testing.T, metrics stackalloc.Metrics) {
	assert(metrics.String() != "", "can't be empty")
	metricsAreUnique := s.metricsStringsSet.addIfUnique(metrics.String())
	assert(metricsAreUnique, "metrics should be unique. target: %v", metrics.String())
}

func (s *basicStackCheckingStand) checkStackStrIsUnique(t *testing.T, target *stackalloc.Stack) {
	stackStr := target.String()
	assert(stackStr != "", "can't be empty")
	strIsUnique := s.stackStringsSet.addIfUnique(stackStr)
	assert(strIsUnique, "stack str should be unique. target: %v", stackStr)
}

func (s *basicStackCheckingStand) check(t *testing.T, target *stackalloc.Stack) {
	failOnError(t, target.Validate())
	assert(target.Used() == 0, "expect used bytes should be 0. instead: %v", target.Used())
	assert(target.Capacity() >= requiredBytesForBasicTest, "stand needs %v bytes", requiredBytesForBasicTest)

	{
		ptr, allocErr := target.Alloc(1)
		failOnError(t, allocErr)
		s.checkPointerIsUnique(t, ptr)
		s.checkMetricsAreUnique(t, target.Metrics())
		s.checkStackStrIsUnique(t, target)
		// here we expect 8 as:
		// current_alloc_size | padding | result_size |
		//                 +1 |      +7 |           8 |
		assert(target.Used() == 8, "expect used bytes should be 8. instead: %v", target.Metrics())
	}
	{
		ptr, allocErr := target.Alloc(3)
		failOnError(t, allocErr)
		s.checkPointerIsUnique(t, ptr)
		s.checkMetricsAreUnique(t, target.Metrics())
		s.checkStackStrIsUnique(t, target)
		// here we expect 16 as:
		// current_alloc_size | padding | result_size |
		//                 +1 |      +7 |           8 |
		//                 +3 |      +5 |          16 |
		assert(target.Used() == 16, "expect used bytes should be 16. instead: %v", target.Metrics())
	}
	{
		ptr, allocErr := target.Alloc(8)
		failOnError(t, allocErr)
		s.checkPointerIsUnique(t, ptr)
		s.checkMetricsAreUnique(t, target.Metrics())
		s.checkStackStrIsUnique(t, target)
		// here we expect 24 as:
		// current_alloc_size | padding | result_size |
		//                 +1 |      +7 |           8 |
		//                 +3 |      +5 |          16 |
		//                 +8 |      +0 |          24 |
		assert(target.Used() == 24, "expect used bytes should be 24. instead: %v", target.Metrics())
	}

	marker, markerOk := target.Marker()
	assert(markerOk, "marker should be available on a bound stack")
	s.checkMarkerIsUnique(t, marker)

	{
		ptr, allocErr := target.Alloc(24)
		failOnError(t, allocErr)
		s.checkPointerIsUnique(t, ptr)
		s.checkMetricsAreUnique(t, target.Metrics())
		s.checkStackStrIsUnique(t, target)
		assert(target.Used() == 48, "expect used bytes should be 48. instead: %v", target.Metrics())
	}
	{
		rewindErr := target.FreeToMarker(marker)
		failOnError(t, rewindErr)
		failOnError(t, target.Validate())
		assert(target.Used() == 24, "rewind should restore used bytes to 24. instead: %v", target.Metrics())
	}
	{
		startPadding := target.Capacity() - target.Used() - target.Available()
		assert(startPadding >= 0 && startPadding < stackalloc.Alignment,
			"only start padding can be unaccounted. metrics: %v", target.Metrics())
		target.Reset()
		failOnError(t, target.Validate())
		assert(target.Used() == 0, "reset should reclaim everything. instead: %v", target.Metrics())
		target.Reset()
		assert(target.Used() == 0, "reset should be idempotent. instead: %v", target.Metrics())
	}
}
