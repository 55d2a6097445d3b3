package model

import "github.com/matzehuels/stateflow/pkg/errors"

// ActorType classifies a participant in a diagram.
type ActorType string

// Actor types.
const (
	ActorComponent ActorType = "component"
	ActorStore     ActorType = "store"
	ActorService   ActorType = "service"
	ActorExternal  ActorType = "external"
)

// ActorTypes lists every actor type in display order.
var ActorTypes = []ActorType{ActorComponent, ActorStore, ActorService, ActorExternal}

// Valid reports whether t is a known actor type.
func (t ActorType) Valid() bool {
	switch t {
	case ActorComponent, ActorStore, ActorService, ActorExternal:
		return true
	}
	return false
}

func (t ActorType) String() string { return string(t) }

// StateScope describes how widely a store's state is shared.
// It is only meaningful for actors of type store.
type StateScope string

// State scopes.
const (
	ScopeLocal   StateScope = "local"
	ScopeSubtree StateScope = "subtree"
	ScopeGlobal  StateScope = "global"
)

// StateScopes lists every scope, narrowest first.
var StateScopes = []StateScope{ScopeLocal, ScopeSubtree, ScopeGlobal}

// Valid reports whether s is a known scope.
func (s StateScope) Valid() bool {
	switch s {
	case ScopeLocal, ScopeSubtree, ScopeGlobal:
		return true
	}
	return false
}

func (s StateScope) String() string { return string(s) }

// StepType is the kind of interaction a flow step represents.
type StepType string

// Step types.
const (
	StepDispatch    StepType = "dispatch"
	StepStateChange StepType = "stateChange"
	StepSubscribe   StepType = "subscribe"
	StepEffect      StepType = "effect"
	StepRender      StepType = "render"
)

// StepTypes lists every step type.
var StepTypes = []StepType{StepDispatch, StepStateChange, StepSubscribe, StepEffect, StepRender}

// Valid reports whether t is a known step type.
func (t StepType) Valid() bool {
	switch t {
	case StepDispatch, StepStateChange, StepSubscribe, StepEffect, StepRender:
		return true
	}
	return false
}

func (t StepType) String() string { return string(t) }

// TriggerType is what starts a flow.
type TriggerType string

// Trigger types.
const (
	TriggerUserAction   TriggerType = "userAction"
	TriggerLifecycle    TriggerType = "lifecycle"
	TriggerSubscription TriggerType = "subscription"
	TriggerTimer        TriggerType = "timer"
)

// TriggerTypes lists every trigger type.
var TriggerTypes = []TriggerType{TriggerUserAction, TriggerLifecycle, TriggerSubscription, TriggerTimer}

// Valid reports whether t is a known trigger type.
func (t TriggerType) Valid() bool {
	switch t {
	case TriggerUserAction, TriggerLifecycle, TriggerSubscription, TriggerTimer:
		return true
	}
	return false
}

func (t TriggerType) String() string { return string(t) }

// ParseActorType converts user input into an ActorType.
func ParseActorType(s string) (ActorType, error) {
	t := ActorType(s)
	if !t.Valid() {
		return "", errors.New(errors.ErrCodeInvalidInput, "unknown actor type %q (want one of %v)", s, ActorTypes)
	}
	return t, nil
}

// ParseStateScope converts user input into a StateScope. Empty input is
// accepted and means "unset".
func ParseStateScope(s string) (StateScope, error) {
	if s == "" {
		return "", nil
	}
	sc := StateScope(s)
	if !sc.Valid() {
		return "", errors.New(errors.ErrCodeInvalidInput, "unknown scope %q (want one of %v)", s, StateScopes)
	}
	return sc, nil
}

// ParseStepType converts user input into a StepType.
func ParseStepType(s string) (StepType, error) {
	t := StepType(s)
	if !t.Valid() {
		return "", errors.New(errors.ErrCodeInvalidInput, "unknown step type %q (want one of %v)", s, StepTypes)
	}
	return t, nil
}

// ParseTriggerType converts user input into a TriggerType.
func ParseTriggerType(s string) (TriggerType, error) {
	t := TriggerType(s)
	if !t.Valid() {
		return "", errors.New(errors.ErrCodeInvalidInput, "unknown trigger type %q (want one of %v)", s, TriggerTypes)
	}
	return t, nil
}
