package fix

import (
	"errors"
	"fmt"

	"jstyle/internal/tree"
)

var (
	// ErrNoFixes is returned when no fixes were applied.
	ErrNoFixes = errors.New("no applicable fixes found")
	// ErrEmptyFix is returned for a fix without steps.
	ErrEmptyFix = errors.New("fix has no steps")
	// ErrOverlap is returned when two steps of one fix touch the same text.
	ErrOverlap = errors.New("fix steps overlap")
	// ErrSyntax is returned when the edited file parses worse than before.
	ErrSyntax = errors.New("fix introduces syntax errors")
	// ErrCategory is returned when a replacement changes the syntactic category.
	ErrCategory = errors.New("replacement changes the syntactic category")
)

// Error wraps every fix-time failure other than fragment parsing and stale snapshots.
type Error struct {
	FixID string
	Op    string
	Err   error
}

func (e *Error) Error() string {
	if e.FixID == "" {
		return fmt.Sprintf("fix: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("fix %s: %s: %v", e.FixID, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ParseFragmentError reports synthesized text that does not parse as the
// category its step requires. The snapshot is left untouched.
type ParseFragmentError struct {
	Step     int
	Category tree.Category
	Text     string
	Err      error
}

func (e *ParseFragmentError) Error() string {
	return fmt.Sprintf("fix step %d: %q is not a valid %s: %v", e.Step, e.Text, e.Category, e.Err)
}

func (e *ParseFragmentError) Unwrap() error { return e.Err }
