package artistdb

import "errors"

var (
	// ErrRapperNotFound indicates the rapper does not exist.
	ErrRapperNotFound = errors.New("rapper not found")
)
