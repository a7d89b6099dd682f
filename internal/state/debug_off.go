//go:build !toptrackerdebug

package state

const debugChecks = false
