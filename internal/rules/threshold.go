package rules

import (
	"sync"
	"time"
)

// timeNow is swapped out by tests.
var timeNow = time.Now

type thresholdKey struct {
	sid     int
	tracked string
}

type thresholdState struct {
	count       int
	windowStart time.Time
}

// ThresholdManager rate-limits rule-based alerts per the rule's threshold
// option. State is keyed by (sid, tracked address). The mutex is defensive:
// in the current design only the capture goroutine calls Allow.
type ThresholdManager struct {
	mu       sync.Mutex
	trackers map[thresholdKey]*thresholdState
}

// NewThresholdManager creates an empty threshold table.
func NewThresholdManager() *ThresholdManager {
	return &ThresholdManager{trackers: make(map[thresholdKey]*thresholdState)}
}

// Allow reports whether a candidate alert for rule should be emitted.
// Rules without a threshold option always alert.
//
// Semantics per threshold type, for a window of `seconds`:
//   - limit: alert while the hit count is <= N, suppress above.
//   - threshold: alert on every hit from the Nth onward. This matches the
//     reference behavior; there is deliberately no debounce after the Nth.
func (tm *ThresholdManager) Allow(rule *Rule, srcIP, dstIP string) bool {
	spec := rule.Threshold
	if spec == nil {
		return true
	}

	tracked := srcIP
	if spec.Track == "by_dst" {
		tracked = dstIP
	}
	key := thresholdKey{sid: rule.SID, tracked: tracked}
	now := timeNow()

	tm.mu.Lock()
	defer tm.mu.Unlock()

	st, ok := tm.trackers[key]
	if !ok {
		st = &thresholdState{windowStart: now}
		tm.trackers[key] = st
	}
	if now.Sub(st.windowStart) > time.Duration(spec.Seconds)*time.Second {
		st.count = 0
		st.windowStart = now
	}
	st.count++

	switch spec.Type {
	case "limit":
		return st.count <= spec.Count
	case "threshold":
		return st.count >= spec.Count
	}
	return true
}
