package library

import (
	"errors"
	"strings"
)

// ErrUnknownReturnPolicy is returned when a return policy name cannot be parsed.
var ErrUnknownReturnPolicy = errors.New("unknown return policy")

// ReturnPolicy decides what returning an already returned loan does.
type ReturnPolicy int

const (
	// RejectReReturn fails with ErrLoanAlreadyReturned and leaves the loan untouched.
	RejectReReturn ReturnPolicy = iota

	// IgnoreReReturn treats the second return as an idempotent no-op.
	IgnoreReReturn
)

// String returns the configuration name of the policy.
func (p ReturnPolicy) String() string {
	switch p {
	case IgnoreReReturn:
		return "ignore"
	default:
		return "reject"
	}
}

// ParseReturnPolicy parses "reject" or "ignore" (case-insensitive). An empty name selects RejectReReturn.
func ParseReturnPolicy(name string) (ReturnPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "reject":
		return RejectReReturn, nil
	case "ignore":
		return IgnoreReReturn, nil
	default:
		return RejectReReturn, errors.Join(ErrUnknownReturnPolicy, errors.New(name))
	}
}
