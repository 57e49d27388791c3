package model

import "fmt"

// NotFoundError reports a missing portfolio or profile on a path where the
// caller asked for it by name. The message doubles as the display text handed
// to presentation layers, hence the sentence form.
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s '%s' does not exist.", e.Kind, e.Name)
}

// DuplicateNameError reports an attempt to create a portfolio whose name is
// already taken within the profile.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("portfolio '%s' already exists", e.Name)
}

// InsufficientHoldingError is the one enforced domain invariant: a sell may
// not exceed the quantity currently held.
type InsufficientHoldingError struct {
	Symbol    string
	Available int64
	Requested int64
}

func (e *InsufficientHoldingError) Error() string {
	if e.Available == 0 {
		return fmt.Sprintf("no shares of %s in portfolio", e.Symbol)
	}
	return fmt.Sprintf("not enough shares of %s to sell. Available: %d, Requested: %d",
		e.Symbol, e.Available, e.Requested)
}

// QuoteLookupError wraps a failed external price fetch. Quick-add must fail
// visibly rather than substitute a sentinel price.
type QuoteLookupError struct {
	Symbol string
	Err    error
}

func (e *QuoteLookupError) Error() string {
	return fmt.Sprintf("quote lookup for %s failed: %v", e.Symbol, e.Err)
}

func (e *QuoteLookupError) Unwrap() error { return e.Err }
