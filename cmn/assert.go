package cmn

// Assert panics with a generic message when cond is false. Reserved for
// invariants that would otherwise corrupt engine state (§3 data-model
// invariants) -- never used for ordinary, recoverable error paths.
func Assert(cond bool) {
	if !cond {
		panic("assertion failed")
	}
}

// AssertMsg is like Assert but with a caller-supplied message.
func AssertMsg(cond bool, msg string) {
	if !cond {
		panic(msg)
	}
}
