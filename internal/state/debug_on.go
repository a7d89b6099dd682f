//go:build toptrackerdebug

package state

// debugChecks enables invariant assertions that panic on violation.
const debugChecks = true
