package ddmhash

import "errors"

// Sentinel errors surfaced by the handle constructors and the DAG
// persistence state machine. Compute paths never return an error —
// per spec they report failure through Result.Success instead.
var (
	// ErrInvalidSize is returned when a cache or dataset size fails its
	// alignment precondition (a multiple of 64, resp. 128 and 64 bytes).
	ErrInvalidSize = errors.New("ddmhash: invalid cache or dataset size")

	// ErrDAGBuildCancelled is returned when the progress callback passed
	// to NewFull returns true, aborting DAG generation.
	ErrDAGBuildCancelled = errors.New("ddmhash: dag build cancelled by callback")

	// ErrDAGMismatch is returned when a forced recreation of a mismatched
	// DAG file still fails to produce a fresh, correctly sized file.
	ErrDAGMismatch = errors.New("ddmhash: could not recreate mismatched dag file")

	errBadMagic = errors.New("ddmhash: dag file magic mismatch")
	errBadSize  = errors.New("ddmhash: dag file size mismatch")
)
