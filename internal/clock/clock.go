// Package clock indirects time.Now so tests can pin timestamps on claim
// history, claim numbers and payment dates.
package clock

import "time"

// NowFunc returns the current time. Override in tests for determinism.
var NowFunc = time.Now

// Now is a thin wrapper around NowFunc.
func Now() time.Time { return NowFunc() }

// Stub pins the clock to a fixed instant and returns a restore function.
func Stub(fixed time.Time) func() {
	previous := NowFunc
	NowFunc = func() time.Time { return fixed }
	return func() { NowFunc = previous }
}
