package diag

import (
	"fmt"

	"jstyle/internal/tree"
)

// FixKind classifies the nature of a fix.
type FixKind uint8

const (
	FixKindQuickFix FixKind = iota
	FixKindRefactor
	FixKindRewrite
)

func (k FixKind) String() string {
	switch k {
	case FixKindQuickFix:
		return "quickfix"
	case FixKindRefactor:
		return "refactor"
	case FixKindRewrite:
		return "rewrite"
	}
	return "unknown"
}

// FixApplicability describes how safe a fix is to apply without review.
type FixApplicability uint8

const (
	FixApplicabilityAlwaysSafe FixApplicability = iota
	FixApplicabilitySafeWithHeuristics
	FixApplicabilityManualReview
)

func (a FixApplicability) String() string {
	switch a {
	case FixApplicabilityAlwaysSafe:
		return "always-safe"
	case FixApplicabilitySafeWithHeuristics:
		return "safe-with-heuristics"
	case FixApplicabilityManualReview:
		return "manual-review"
	}
	return "unknown"
}

// ParseApplicability is the inverse of FixApplicability.String.
func ParseApplicability(s string) (FixApplicability, error) {
	for a := FixApplicabilityAlwaysSafe; a <= FixApplicabilityManualReview; a++ {
		if a.String() == s {
			return a, nil
		}
	}
	return FixApplicabilityAlwaysSafe, fmt.Errorf("unknown applicability %q", s)
}

// Placement tells where a step's text goes relative to its target node.
type Placement uint8

const (
	PlaceReplace Placement = iota
	PlaceBefore
	PlaceAfter
	PlaceDelete
)

func (p Placement) String() string {
	switch p {
	case PlaceReplace:
		return "replace"
	case PlaceBefore:
		return "before"
	case PlaceAfter:
		return "after"
	case PlaceDelete:
		return "delete"
	}
	return "unknown"
}

// Synthesizer produces replacement text for the resolved target node.
type Synthesizer func(target tree.Node) (string, error)

// FixStep is one text change anchored at a node of the snapshot.
// Category is what the synthesized text must parse as.
type FixStep struct {
	Target     tree.Ref
	Placement  Placement
	Category   tree.Category
	Synthesize Synthesizer
}

// Fix groups steps that are applied atomically.
type Fix struct {
	ID            string
	Title         string
	Kind          FixKind
	Applicability FixApplicability
	IsPreferred   bool
	Steps         []FixStep
}

// Literal returns a synthesizer that ignores the target and yields text.
func Literal(text string) Synthesizer {
	return func(tree.Node) (string, error) { return text, nil }
}

// ReplaceNode builds a single-step replace fix for target.
func ReplaceNode(title string, target tree.Node, cat tree.Category, synth Synthesizer) *Fix {
	return &Fix{
		Title: title,
		Kind:  FixKindQuickFix,
		Steps: []FixStep{{
			Target:     target.Ref(),
			Placement:  PlaceReplace,
			Category:   cat,
			Synthesize: synth,
		}},
	}
}

// RenameIdentifier builds a fix replacing an identifier with newName.
func RenameIdentifier(title string, ident tree.Node, newName string) *Fix {
	return ReplaceNode(title, ident, tree.CategoryIdentifier, Literal(newName))
}

// DeleteNode builds a single-step deletion fix.
func DeleteNode(title string, target tree.Node) *Fix {
	return &Fix{
		Title: title,
		Kind:  FixKindRefactor,
		Steps: []FixStep{{
			Target:    target.Ref(),
			Placement: PlaceDelete,
		}},
	}
}

// WithApplicability sets the applicability and returns the fix.
func (f *Fix) WithApplicability(a FixApplicability) *Fix {
	f.Applicability = a
	return f
}

// Preferred marks the fix as the preferred one.
func (f *Fix) Preferred() *Fix {
	f.IsPreferred = true
	return f
}

// Then appends another step to the fix.
func (f *Fix) Then(step FixStep) *Fix {
	f.Steps = append(f.Steps, step)
	return f
}
