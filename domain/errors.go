package domain

import "errors"

// Storage errors
var (
	ErrDuplicateUsername    = errors.New("duplicate-username")
	ErrUserNotFound         = errors.New("user-not-found")
	UnexpectedDatabaseError = errors.New("unexpected-database-error")
)

// Crypto errors
var (
	UnexpectedPasswordHashingError        = errors.New("unexpected-password-hashing-error")
	UnexpectedPasswordHashComparisonError = errors.New("unexpected-password-hash-comparison-error")
	UnexpectedTokenGenerationError        = errors.New("unexpected-token-generation-error")
	UnexpectedTokenVerificationError      = errors.New("unexpected-token-verification-error")
	ErrInvalidSigningAlg                  = errors.New("invalid-signing-alg")
	ErrExpiredToken                       = errors.New("expired-token")
	ErrInvalidTokenSignature              = errors.New("invalid-token-signature")
	ErrCorruptedToken                     = errors.New("corrupted-token")
)

// Session errors
var (
	ErrEmptyCatalog        = errors.New("empty-catalog")
	ErrNotEnoughStations   = errors.New("not-enough-stations")
	ErrSessionRunning      = errors.New("session-already-running")
	ErrSessionNotRunning   = errors.New("session-not-running")
	ErrUnknownStation      = errors.New("unknown-station")
	ErrSubmissionInFlight  = errors.New("submission-in-flight")
	ErrStaleEvaluation     = errors.New("stale-evaluation")
	ErrInvalidGameType     = errors.New("invalid-game-type")
	ErrInvalidGameSettings = errors.New("invalid-game-settings")
)
