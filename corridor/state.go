package corridor

import (
	"sync"
	"time"
)

// PlanState holds the latest known request and synthesis result for one
// plan, with update timestamps for staleness checks.
type PlanState struct {
	PlanID      string       `json:"planId"`
	Request     *PlanRequest `json:"request,omitempty"`
	Result      *Result      `json:"result,omitempty"`
	RequestedAt time.Time    `json:"requestedAt"`
	GeneratedAt time.Time    `json:"generatedAt"`
}

// StateTracker keeps per-plan state for the service mode. All data lives in
// process memory; nothing is persisted.
type StateTracker struct {
	mu    sync.RWMutex
	plans map[string]*PlanState
}

// NewStateTracker creates an empty state tracker.
func NewStateTracker() *StateTracker {
	return &StateTracker{
		plans: make(map[string]*PlanState),
	}
}

// UpdateRequest stores the latest plan request for a plan ID.
func (st *StateTracker) UpdateRequest(planID string, req *PlanRequest) {
	st.mu.Lock()
	defer st.mu.Unlock()

	state := st.plans[planID]
	if state == nil {
		state = &PlanState{PlanID: planID}
		st.plans[planID] = state
	}
	state.Request = req
	state.RequestedAt = time.Now()
}

// UpdateResult stores the latest synthesis result for a plan ID.
func (st *StateTracker) UpdateResult(planID string, res *Result) {
	st.mu.Lock()
	defer st.mu.Unlock()

	state := st.plans[planID]
	if state == nil {
		state = &PlanState{PlanID: planID}
		st.plans[planID] = state
	}
	state.Result = res
	state.GeneratedAt = time.Now()
}

// GetPlan returns a copy of the state for a plan ID.
func (st *StateTracker) GetPlan(planID string) (PlanState, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	state, ok := st.plans[planID]
	if !ok {
		return PlanState{}, false
	}
	return *state, true
}

// GetPlans returns a snapshot of all plan states. The returned map and its
// entries are copies; mutating them does not affect the tracker.
func (st *StateTracker) GetPlans() map[string]PlanState {
	st.mu.RLock()
	defer st.mu.RUnlock()

	result := make(map[string]PlanState, len(st.plans))
	for id, state := range st.plans {
		result[id] = *state
	}
	return result
}

// HasResults reports whether at least one plan has a synthesis result.
func (st *StateTracker) HasResults() bool {
	st.mu.RLock()
	defer st.mu.RUnlock()

	for _, state := range st.plans {
		if state.Result != nil {
			return true
		}
	}
	return false
}

// ClearPlan removes all state for a plan ID.
func (st *StateTracker) ClearPlan(planID string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.plans, planID)
}
