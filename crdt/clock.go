package crdt

import "time"

// WallClockMS is the source of "now" for CRDT timestamps, in milliseconds.
// Declared as a var so tests can substitute a deterministic clock.
var WallClockMS = func() int64 {
	return time.Now().UnixMilli()
}

// nextTimestamp implements the update rule shared by LWWRegister and
// LWWMap: max(currentTS+1, wallClockMS()). This guarantees a strictly
// monotone advance on a single node even if the wall clock has not
// moved since the previous update.
func nextTimestamp(currentTS int64) int64 {
	now := WallClockMS()
	if currentTS+1 > now {
		return currentTS + 1
	}
	return now
}
