package stockroom

import (
	"reflect"

	"github.com/TheBitDrifter/mask"
	"github.com/TheBitDrifter/stockroom/internal/assert"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// System is one unit of per-tick work. Returning an error stops the tick.
type System func(ctx *Context) error

// Access declares what a system touches. Declarations are checked when the system is registered.
type Access func(sig *accessSignature) error

// accessSignature is the validated set of declarations of one system.
type accessSignature struct {
	system    string
	sto       *store
	reads     mask.Mask
	writes    mask.Mask
	resources map[reflect.Type]struct{}
	states    map[string]struct{}
	commands  bool
}

func newAccessSignature(system string, sto *store) *accessSignature {
	return &accessSignature{
		system:    system,
		sto:       sto,
		resources: make(map[reflect.Type]struct{}),
		states:    make(map[string]struct{}),
	}
}

func (sig *accessSignature) component(c Component, write bool) error {
	slot, ok := sig.sto.lookup(c)
	if !ok {
		return eris.Wrapf(ErrUnknownComponent, "system %q declares %s", sig.system, c.key())
	}
	var bit mask.Mask
	bit.Mark(slot)
	if sig.reads.ContainsAny(bit) || sig.writes.ContainsAny(bit) {
		return DuplicateAccessError{System: sig.system, Kind: "component", Name: c.key().String()}
	}
	if write {
		sig.writes.Mark(slot)
	} else {
		sig.reads.Mark(slot)
	}
	return nil
}

// AccessRead declares read access to components.
func AccessRead(components ...Component) Access {
	return func(sig *accessSignature) error {
		for _, c := range components {
			if err := sig.component(c, false); err != nil {
				return err
			}
		}
		return nil
	}
}

// AccessWrite declares write access to components.
func AccessWrite(components ...Component) Access {
	return func(sig *accessSignature) error {
		for _, c := range components {
			if err := sig.component(c, true); err != nil {
				return err
			}
		}
		return nil
	}
}

// AccessResource declares use of the resource of type T.
func AccessResource[T any]() Access {
	return func(sig *accessSignature) error {
		key := reflect.TypeFor[T]()
		if _, ok := sig.resources[key]; ok {
			return DuplicateAccessError{System: sig.system, Kind: "resource", Name: key.String()}
		}
		sig.resources[key] = struct{}{}
		return nil
	}
}

// AccessState declares a named piece of system-local state.
func AccessState(name string) Access {
	return func(sig *accessSignature) error {
		if _, ok := sig.states[name]; ok {
			return DuplicateAccessError{System: sig.system, Kind: "state", Name: name}
		}
		sig.states[name] = struct{}{}
		return nil
	}
}

// AccessCommands declares use of the stage's command buffer. A system may declare it once.
func AccessCommands() Access {
	return func(sig *accessSignature) error {
		if sig.commands {
			return MultipleCommandBuffersError{System: sig.system}
		}
		sig.commands = true
		return nil
	}
}

// Context is what a running system sees.
type Context struct {
	scheduler *Scheduler
	stage     *stage
	system    *registeredSystem
}

func (ctx *Context) Store() Store {
	return ctx.scheduler.sto
}

// Commands returns the command buffer of the running stage. The system must have declared
// AccessCommands.
func (ctx *Context) Commands() *CommandBuffer {
	assert.That(ctx.system.access.commands, "system %q did not declare command buffer access", ctx.system.name)
	return ctx.stage.commands
}

func (ctx *Context) Resources() *Resources {
	return ctx.scheduler.resources
}

func (ctx *Context) Logger() *zerolog.Logger {
	return &ctx.system.logger
}

func (ctx *Context) Stage() string {
	return ctx.stage.name
}

func (ctx *Context) System() string {
	return ctx.system.name
}

// Reads reports whether the running system declared read or write access to c.
func (ctx *Context) Reads(c Component) bool {
	slot, ok := ctx.scheduler.sto.lookup(c)
	return ok && (hasBit(ctx.system.access.reads, slot) || hasBit(ctx.system.access.writes, slot))
}

// Writes reports whether the running system declared write access to c.
func (ctx *Context) Writes(c Component) bool {
	slot, ok := ctx.scheduler.sto.lookup(c)
	return ok && hasBit(ctx.system.access.writes, slot)
}

type registeredSystem struct {
	name   string
	fn     System
	access *accessSignature
	logger zerolog.Logger
}
