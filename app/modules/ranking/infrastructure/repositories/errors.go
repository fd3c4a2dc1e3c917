package rankingdb

import "errors"

// Sentinel errors for the repository layer.
// These represent infrastructure-level conditions callers may want
// to handle specially (not business-domain errors).
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrRankingNotFound indicates the ranking does not exist.
	ErrRankingNotFound = errors.New("ranking not found")

	// ErrNoSnapshot indicates no position snapshot exists for the ranking.
	ErrNoSnapshot = errors.New("no snapshot for ranking")
)
