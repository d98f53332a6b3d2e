package structure

import (
	"fmt"

	"github.com/chewxy/math32"
)

// ValidationSeverity indicates whether a validation finding blocks
// structure construction or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks construction
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Atom     int                // offending atom index, -1 if model-level
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.Atom < 0 {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] atom %d: %s", e.Severity, e.Atom, e.Message)
}

// Validate runs all checks on the model and returns the findings. An empty
// slice means the model is valid. Validate never mutates the model.
func Validate(m *Model) []ValidationError {
	if m == nil {
		return []ValidationError{{Atom: -1, Message: "model is nil", Severity: SeverityError}}
	}
	var errs []ValidationError
	errs = append(errs, validatePositions(m)...)
	errs = append(errs, validateElements(m)...)
	errs = append(errs, validateBonds(m)...)
	return errs
}

// validatePositions rejects non-finite coordinates.
func validatePositions(m *Model) []ValidationError {
	var errs []ValidationError
	for i, a := range m.Atoms {
		for _, c := range a.Position {
			if math32.IsNaN(c) || math32.IsInf(c, 0) {
				errs = append(errs, ValidationError{
					Atom:     i,
					Message:  fmt.Sprintf("non-finite position %v", a.Position),
					Severity: SeverityError,
				})
				break
			}
		}
	}
	return errs
}

// validateElements flags empty and unknown element symbols. Unknown symbols
// still render with default radii.
func validateElements(m *Model) []ValidationError {
	var errs []ValidationError
	for i, a := range m.Atoms {
		switch {
		case a.Element == "":
			errs = append(errs, ValidationError{
				Atom:     i,
				Message:  "missing element symbol",
				Severity: SeverityWarning,
			})
		case !IsKnownElement(a.Element):
			errs = append(errs, ValidationError{
				Atom:     i,
				Message:  fmt.Sprintf("unknown element %q", a.Element),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

// validateBonds checks that explicit bonds reference existing, distinct
// atoms.
func validateBonds(m *Model) []ValidationError {
	var errs []ValidationError
	n := len(m.Atoms)
	for k, b := range m.Bonds {
		switch {
		case b.A < 0 || b.A >= n || b.B < 0 || b.B >= n:
			errs = append(errs, ValidationError{
				Atom:     -1,
				Message:  fmt.Sprintf("bond %d references atom out of range (%d-%d, %d atoms)", k, b.A, b.B, n),
				Severity: SeverityError,
			})
		case b.A == b.B:
			errs = append(errs, ValidationError{
				Atom:     b.A,
				Message:  fmt.Sprintf("bond %d connects the atom to itself", k),
				Severity: SeverityWarning,
			})
		case b.Order < 0 || b.Order > 3:
			errs = append(errs, ValidationError{
				Atom:     b.A,
				Message:  fmt.Sprintf("bond %d has unsupported order %d", k, b.Order),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}
