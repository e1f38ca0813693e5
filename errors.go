package stockroom

import (
	"fmt"

	"github.com/rotisserie/eris"
)

var (
	// ErrUnknownComponent is returned when a component kind is not registered with the store at hand.
	ErrUnknownComponent = eris.New("component is not registered with the store")
	// ErrEmptyStageName is returned when a scheduler is declared with an unnamed stage.
	ErrEmptyStageName = eris.New("stage name is empty")
	// ErrCorruptSnapshot is returned when a snapshot contradicts itself.
	ErrCorruptSnapshot = eris.New("corrupt snapshot")
)

type ComponentRegistrationError struct {
	Name   string
	Reason string
}

func (e ComponentRegistrationError) Error() string {
	return fmt.Sprintf("cannot register component %s: %s", e.Name, e.Reason)
}

type UnknownStageError struct {
	Stage string
}

func (e UnknownStageError) Error() string {
	return fmt.Sprintf("stage %q is not declared", e.Stage)
}

type DuplicateStageError struct {
	Stage string
}

func (e DuplicateStageError) Error() string {
	return fmt.Sprintf("stage %q is declared twice", e.Stage)
}

type DuplicateSystemError struct {
	System string
}

func (e DuplicateSystemError) Error() string {
	return fmt.Sprintf("system %q is registered twice", e.System)
}

// DuplicateAccessError reports a system declaring the same component, resource or state twice.
type DuplicateAccessError struct {
	System string
	Kind   string
	Name   string
}

func (e DuplicateAccessError) Error() string {
	return fmt.Sprintf("system %q declares %s %s more than once", e.System, e.Kind, e.Name)
}

type MultipleCommandBuffersError struct {
	System string
}

func (e MultipleCommandBuffersError) Error() string {
	return fmt.Sprintf("system %q requests more than one command buffer", e.System)
}

type CacheFullError struct {
	Capacity int
}

func (e CacheFullError) Error() string {
	return fmt.Sprintf("cache at maximum capacity (%d)", e.Capacity)
}

type CacheKeyExistsError struct {
	Key string
}

func (e CacheKeyExistsError) Error() string {
	return fmt.Sprintf("cache key %q already registered", e.Key)
}
