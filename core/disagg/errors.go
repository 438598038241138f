package disagg

import "errors"

var (
	// Configuration errors.
	ErrNoRuptures        = errors.New("disagg: no ruptures survived filtering")
	ErrInvalidBinWidth   = errors.New("disagg: bin width must be a positive finite number")
	ErrInvalidEpsilons   = errors.New("disagg: number of epsilon bands must be >= 1")
	ErrInvalidTruncation = errors.New("disagg: truncation level must be a positive finite number")
	ErrInvalidRequest    = errors.New("disagg: invalid request")
	ErrMissingGSIM       = errors.New("disagg: no ground motion model for tectonic region type")

	// Contract violations by collaborators or callers.
	ErrContractViolation = errors.New("disagg: collaborator contract violation")
	ErrOutOfRange        = errors.New("disagg: value outside bin edges")
	ErrShapeMismatch     = errors.New("disagg: shape mismatch")

	// ErrNoContribution accompanies a valid, all-zero matrix.
	ErrNoContribution = errors.New("disagg: no contribution to any bin")
)
