package contracts

import "errors"

// Fatal, whole-run error conditions. Recoverable per-record problems are
// carried as QualityReport values instead, never as errors.
var (
	// ErrNoData means the input panel was empty.
	ErrNoData = errors.New("no input data available")

	// ErrNoRankedData means a latest-month view was requested but no
	// ranked months exist.
	ErrNoRankedData = errors.New("no ranked data available at requested point")
)
