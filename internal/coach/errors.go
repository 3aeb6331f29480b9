package coach

import "errors"

var (
	// ErrOracleUnavailable means the calculation engine could not be reached
	// even after the single bounded retry. Fatal for the call.
	ErrOracleUnavailable = errors.New("calculation engine unavailable")

	// ErrNoLegalMoves marks a terminal position (checkmate or stalemate).
	// Callers present it as a game-over outcome, not a failure.
	ErrNoLegalMoves = errors.New("no legal moves in position")

	// ErrScoring means every candidate was dropped during feature building.
	ErrScoring = errors.New("no candidate could be scored")

	// ErrEncoding marks a malformed position, rejected before any engine call.
	ErrEncoding = errors.New("malformed position")
)
