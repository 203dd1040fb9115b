package state

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wfunc/gamestation/models"
)

// MockState is a test double for the State interface.
// It helps us track which methods have been called.
type MockState struct {
	ID            string
	OnEnterCalled bool
	OnExitCalled  bool
}

func (m *MockState) OnEnter() {
	m.OnEnterCalled = true
}

func (m *MockState) OnExit() {
	m.OnExitCalled = true
}

func (m *MockState) GetID() string {
	return m.ID
}

// reset clears the call tracking flags.
func (m *MockState) reset() {
	m.OnEnterCalled = false
	m.OnExitCalled = false
}

func TestStateMachine_InitialState(t *testing.T) {
	initialState := &MockState{ID: "initial"}
	sm := NewBaseStateMachine(initialState)

	if !initialState.OnEnterCalled {
		t.Error("Expected OnEnter to be called on the initial state")
	}

	if sm.GetCurrentState() != initialState {
		t.Error("GetCurrentState should return the initial state")
	}
}

func TestStateMachine_ChangeState(t *testing.T) {
	initialState := &MockState{ID: "initial"}
	nextState := &MockState{ID: "next"}

	sm := NewBaseStateMachine(initialState)
	initialState.reset() // Reset after initialization

	err := sm.ChangeState(nextState)
	if err != nil {
		t.Fatalf("ChangeState should not return an error, but got: %v", err)
	}

	if !initialState.OnExitCalled {
		t.Error("Expected OnExit to be called on the old state")
	}

	if !nextState.OnEnterCalled {
		t.Error("Expected OnEnter to be called on the new state")
	}

	if sm.GetCurrentState() != nextState {
		t.Error("GetCurrentState should return the new state")
	}
}

func TestStateMachine_AddAndUseTransition(t *testing.T) {
	stateA := &MockState{ID: "A"}
	stateB := &MockState{ID: "B"}
	stateC := &MockState{ID: "C"}

	sm := NewBaseStateMachine(stateA)

	if err := sm.AddTransition(stateA, stateB, func() bool { return true }); err != nil {
		t.Fatalf("AddTransition failed: %v", err)
	}
	if err := sm.AddTransition(stateB, stateC, func() bool { return false }); err != nil {
		t.Fatalf("AddTransition failed: %v", err)
	}

	stateA.reset()
	if err := sm.ChangeState(stateB); err != nil {
		t.Errorf("Expected transition from A to B to be allowed, but got error: %v", err)
	}
	if sm.GetCurrentState().GetID() != "B" {
		t.Errorf("Expected current state to be B, but got %s", sm.GetCurrentState().GetID())
	}

	stateB.reset()
	if err := sm.ChangeState(stateC); err != ErrTransitionNotAllowed {
		t.Errorf("Expected ErrTransitionNotAllowed, but got: %v", err)
	}
	if sm.GetCurrentState().GetID() != "B" {
		t.Errorf("Expected current state to remain B after a blocked transition, but got %s", sm.GetCurrentState().GetID())
	}
	if stateB.OnExitCalled {
		t.Error("OnExit should not be called on the current state if transition is blocked")
	}
	if stateC.OnEnterCalled {
		t.Error("OnEnter should not be called on the new state if transition is blocked")
	}
}

func TestStrictStateMachine_RejectsUnregistered(t *testing.T) {
	stateA := &MockState{ID: "A"}
	stateB := &MockState{ID: "B"}

	sm := NewStrictStateMachine(stateA)
	if err := sm.ChangeState(stateB); err != ErrTransitionNotAllowed {
		t.Fatalf("Expected ErrTransitionNotAllowed, got %v", err)
	}

	sm.AddTransition(stateA, stateB, nil)
	if err := sm.ChangeState(stateB); err != nil {
		t.Fatalf("Expected registered transition to pass, got %v", err)
	}
}

func TestTransition_Monotonic(t *testing.T) {
	tests := []struct {
		from, to models.RoomStatus
		ok       bool
	}{
		{models.RoomWaiting, models.RoomInProgress, true},
		{models.RoomWaiting, models.RoomFinished, true},
		{models.RoomInProgress, models.RoomFinished, true},
		{models.RoomInProgress, models.RoomWaiting, false},
		{models.RoomFinished, models.RoomWaiting, false},
		{models.RoomFinished, models.RoomInProgress, false},
		{models.RoomFinished, models.RoomFinished, false},
		{models.RoomWaiting, models.RoomWaiting, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			status := tt.from
			err := Transition(&status, tt.to)
			if tt.ok {
				assert.NoError(t, err)
				assert.Equal(t, tt.to, status)
			} else {
				assert.ErrorIs(t, err, ErrTransitionNotAllowed)
				assert.Equal(t, tt.from, status)
			}
		})
	}
}
