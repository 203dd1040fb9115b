package state

import (
	"errors"
	"sync"

	"github.com/wfunc/gamestation/models"
)

// 状态机接口
type StateMachine interface {
	ChangeState(state State) error
	GetCurrentState() State
	AddTransition(from State, to State, condition func() bool) error
}

// 状态接口
type State interface {
	OnEnter()
	OnExit()
	GetID() string
}

// ErrTransitionNotAllowed is returned when a state transition is not allowed.
var ErrTransitionNotAllowed = errors.New("state transition not allowed")

// 基础状态机实现
type BaseStateMachine struct {
	currentState State
	transitions  map[string]map[string]func() bool // fromState -> toState -> condition
	// strict 模式下只允许已注册的转换
	strict bool
	mutex  sync.RWMutex
}

func NewBaseStateMachine(initialState State) *BaseStateMachine {
	machine := &BaseStateMachine{
		currentState: initialState,
		transitions:  make(map[string]map[string]func() bool),
	}
	initialState.OnEnter()
	return machine
}

// NewStrictStateMachine rejects every transition that was not registered
// with AddTransition.
func NewStrictStateMachine(initialState State) *BaseStateMachine {
	machine := NewBaseStateMachine(initialState)
	machine.strict = true
	return machine
}

func (sm *BaseStateMachine) ChangeState(newState State) error {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	currentID := sm.currentState.GetID()
	newID := newState.GetID()

	// 检查是否有转换条件
	conditions, exists := sm.transitions[currentID]
	condition, registered := conditions[newID]
	if !exists || !registered {
		if sm.strict {
			return ErrTransitionNotAllowed
		}
	} else if condition != nil && !condition() {
		return ErrTransitionNotAllowed
	}

	sm.currentState.OnExit()
	sm.currentState = newState
	sm.currentState.OnEnter()

	return nil
}

func (sm *BaseStateMachine) GetCurrentState() State {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()
	return sm.currentState
}

func (sm *BaseStateMachine) AddTransition(from State, to State, condition func() bool) error {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	fromID := from.GetID()
	toID := to.GetID()

	if _, exists := sm.transitions[fromID]; !exists {
		sm.transitions[fromID] = make(map[string]func() bool)
	}

	sm.transitions[fromID][toID] = condition
	return nil
}

// StatusState wraps a room status so it can sit in a state machine.
type StatusState struct {
	Status models.RoomStatus
}

func (s *StatusState) GetID() string { return string(s.Status) }
func (s *StatusState) OnEnter()      {}
func (s *StatusState) OnExit()       {}

// RoomLifecycle only moves forward: Waiting -> InProgress -> Finished, and
// Waiting -> Finished when a room is closed before it fills.
type RoomLifecycle struct {
	machine *BaseStateMachine
	states  map[models.RoomStatus]*StatusState
}

func NewRoomLifecycle(current models.RoomStatus) *RoomLifecycle {
	states := map[models.RoomStatus]*StatusState{
		models.RoomWaiting:    {Status: models.RoomWaiting},
		models.RoomInProgress: {Status: models.RoomInProgress},
		models.RoomFinished:   {Status: models.RoomFinished},
	}
	initial, ok := states[current]
	if !ok {
		initial = &StatusState{Status: current}
	}
	m := NewStrictStateMachine(initial)
	m.AddTransition(states[models.RoomWaiting], states[models.RoomInProgress], nil)
	m.AddTransition(states[models.RoomWaiting], states[models.RoomFinished], nil)
	m.AddTransition(states[models.RoomInProgress], states[models.RoomFinished], nil)
	return &RoomLifecycle{machine: m, states: states}
}

func (l *RoomLifecycle) Status() models.RoomStatus {
	return models.RoomStatus(l.machine.GetCurrentState().GetID())
}

func (l *RoomLifecycle) To(status models.RoomStatus) error {
	next, ok := l.states[status]
	if !ok {
		return ErrTransitionNotAllowed
	}
	return l.machine.ChangeState(next)
}

// Transition moves *status forward to next, leaving it untouched when the
// move would go backwards or stay in place.
func Transition(status *models.RoomStatus, next models.RoomStatus) error {
	l := NewRoomLifecycle(*status)
	if err := l.To(next); err != nil {
		return err
	}
	*status = l.Status()
	return nil
}
