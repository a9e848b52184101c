package search

import "time"

// TimeManager tracks the wall-clock budget of one search call.
type TimeManager struct {
	startTime time.Time
	limit     time.Duration // 0 means unbounded
}

// Start begins a new budget clock.
func (tm *TimeManager) Start(limit time.Duration) {
	tm.startTime = time.Now()
	tm.limit = limit
}

// Elapsed returns the time since the search started.
func (tm *TimeManager) Elapsed() time.Duration {
	return time.Since(tm.startTime)
}

// Exceeded reports whether the budget has run out.
func (tm *TimeManager) Exceeded() bool {
	return tm.limit > 0 && tm.Elapsed() >= tm.limit
}

// ShouldStartNext reports whether another deepening iteration is worth
// starting. Each iteration costs at least as much as the previous one, so
// when the remaining budget is smaller than the last iteration took, the
// next pass would be abandoned anyway.
func (tm *TimeManager) ShouldStartNext(lastIteration time.Duration) bool {
	if tm.limit == 0 {
		return true
	}
	remaining := tm.limit - tm.Elapsed()
	return remaining > lastIteration
}
