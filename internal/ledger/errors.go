package ledger

import "errors"

// Rejection taxonomy shared by the ledger and the lifecycle engine. Every
// mutating operation is all-or-nothing: a returned error means no state moved.
var (
	ErrContestMissing            = errors.New("contest missing")
	ErrContestLocked             = errors.New("contest locked")
	ErrAlreadyEntered            = errors.New("already entered")
	ErrInvalidFee                = errors.New("invalid entry fee")
	ErrInvalidConfiguration      = errors.New("invalid range configuration")
	ErrDirectionsAlreadyRevealed = errors.New("directions already revealed")
	ErrNothingToClaim            = errors.New("nothing to claim")
	ErrInvalidProof              = errors.New("invalid proof")
	ErrNotWinner                 = errors.New("not a winner")
	ErrAlreadyClaimed            = errors.New("already claimed")

	// ErrDependencyUnavailable wraps oracle / confidential-service failures
	// surfaced by the engine. The ledger itself never returns it.
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
