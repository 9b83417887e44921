package stackalloc_test

import (
	"fmt"
	"testing"
)

func assert(condition bool, msg string, args ...interface{}) {
	if !condition {
		fmt.Printf(msg, args...)
		fmt.Printf("\n")
		panic("assertion failed")
	}
}

func failOnError(t *testing.T, e error) {
	if e != nil {
		t.Error(e)
		t.FailNow()
	}
}

type stringsSetWithOrder struct {
	set   map[string]struct{}
	order []string
}

func (s *stringsSetWithOrder) addIfUnique(target string) bool {
	if s.set == nil {
		s.set = map[string]struct{}{}
	}
	_, notUnique := s.set[target]
	if notUnique {
		return false
	}
	s.set[target] = struct{}{}
	s.order = append(s.order, target)
	return true
}
