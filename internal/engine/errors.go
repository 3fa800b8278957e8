package engine

import (
	"fmt"

	"jstyle/internal/diag"
	"jstyle/internal/source"
	"jstyle/internal/tree"
)

// PredicateError is a rule that failed on one node. The rule's output for
// that node is dropped; the scan goes on.
type PredicateError struct {
	Rule  string
	Node  tree.Ref
	Kind  tree.Kind
	Span  source.Span
	Err   error
	Panic any
}

func (e *PredicateError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("%s: rule %s panicked on %s at %s: %v", diag.EngPredicateFailed.ID(), e.Rule, e.Kind, e.Span, e.Panic)
	}
	return fmt.Sprintf("%s: rule %s failed on %s at %s: %v", diag.EngPredicateFailed.ID(), e.Rule, e.Kind, e.Span, e.Err)
}

func (e *PredicateError) Unwrap() error { return e.Err }
