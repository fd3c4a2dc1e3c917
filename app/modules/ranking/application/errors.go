package rankingservice

import "errors"

// Validation errors rejected before any persistence call.
var (
	ErrNotAuthenticated = errors.New("vote requires an authenticated member")
	ErrMissingRanking   = errors.New("vote requires a ranking id")
	ErrMissingRapper    = errors.New("vote requires a rapper id")
)
