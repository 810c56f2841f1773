package cmn

import "fmt"

// AbortedError is returned by engine.Run when the engine's running flag has
// moved to Stopping between two phases (spec §5), mirroring the teacher's
// cmn.AbortedError used by fs/walk.go and lru.go's yieldTerm.
type AbortedError struct {
	what string
}

func NewAbortedError(what string) *AbortedError {
	return &AbortedError{what: what}
}

func (e *AbortedError) Error() string {
	return fmt.Sprintf("%s: aborted", e.what)
}
