package train

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNegativeLimit is returned when a context cap is below zero.
var ErrNegativeLimit = errors.New("limit must not be negative")

// ValidationKind identifies which precondition failed.
type ValidationKind string

const (
	// KindSource means the plan's source branch does not resolve.
	KindSource ValidationKind = "source"

	// KindTargets means one or more plan targets do not resolve.
	KindTargets ValidationKind = "targets"

	// KindPair means at least one branch of a context request does not resolve.
	KindPair ValidationKind = "pair"
)

// ValidationError reports branch names that do not resolve.
//
// For KindSource, Branches holds the source. For KindTargets, it holds every
// missing target in input order. For KindPair it holds both requested names,
// since the check does not say which of them is missing.
type ValidationError struct {
	Kind     ValidationKind
	Branches []string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case KindSource:
		return fmt.Sprintf("Source branch '%s' does not exist", first(e.Branches))
	case KindTargets:
		return "Target branches do not exist: " + strings.Join(e.Branches, ", ")
	default:
		return "One or both branches do not exist"
	}
}

func first(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
