package jetdata

import "errors"

// Sentinel errors returned by the assembly pipeline. All of them indicate
// caller misconfiguration except ErrRetrieval, which wraps failures from the
// raw-source collaborator (network or filesystem). Use errors.Is to test.
var (
	// ErrUnknownFeature means a requested feature name is not part of the
	// canonical feature order for its kind.
	ErrUnknownFeature = errors.New("unknown feature")

	// ErrInvalidJetType means a jet type name is outside the closed set.
	ErrInvalidJetType = errors.New("invalid jet type")

	// ErrInvalidSplit means the split name is not train, valid, test or all.
	ErrInvalidSplit = errors.New("invalid split")

	// ErrInvalidFraction means the split fractions are negative or sum to
	// more than one.
	ErrInvalidFraction = errors.New("invalid split fraction")

	// ErrInvalidCap means the requested particles-per-jet cap is outside
	// [1, MaxParticles].
	ErrInvalidCap = errors.New("invalid particle cap")

	// ErrEmptyRequest means neither particle nor jet features were requested,
	// so there is nothing to assemble.
	ErrEmptyRequest = errors.New("no features requested")

	// ErrRetrieval wraps failures while fetching or opening a raw source file.
	ErrRetrieval = errors.New("raw source retrieval failed")
)
