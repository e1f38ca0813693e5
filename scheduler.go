package stockroom

import (
	"github.com/rs/zerolog"
)

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithLogger replaces the global logger for one scheduler.
func WithLogger(logger zerolog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithErrorConverter sets the one place system errors are converted before Run returns them.
func WithErrorConverter(fn func(error) error) SchedulerOption {
	return func(s *Scheduler) {
		s.convert = fn
	}
}

// WithResources shares an existing resource registry with the scheduler's systems.
func WithResources(r *Resources) SchedulerOption {
	return func(s *Scheduler) {
		s.resources = r
	}
}

type stage struct {
	name     string
	systems  []*registeredSystem
	commands *CommandBuffer
}

// Scheduler runs systems grouped in named stages. Each stage owns a command buffer that is
// flushed exactly once after the stage's systems ran.
type Scheduler struct {
	sto       *store
	stages    []stage
	index     Cache[int] // stage name -> position in stages
	systems   map[string]struct{}
	resources *Resources
	logger    zerolog.Logger
	convert   func(error) error
	ticks     uint64
}

func newScheduler(sto Store, stages []string, opts ...SchedulerOption) (*Scheduler, error) {
	s := &Scheduler{
		sto:     asStore(sto),
		stages:  make([]stage, 0, len(stages)),
		index:   FactoryNewCache[int](len(stages)),
		systems: make(map[string]struct{}),
		logger:  Config.logger,
		convert: func(err error) error { return err },
	}
	for _, name := range stages {
		if name == "" {
			return nil, ErrEmptyStageName
		}
		if _, ok := s.index.GetIndex(name); ok {
			return nil, DuplicateStageError{Stage: name}
		}
		if _, err := s.index.Register(name, len(s.stages)); err != nil {
			return nil, err
		}
		s.stages = append(s.stages, stage{name: name, commands: s.sto.NewCommandBuffer()})
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.resources == nil {
		s.resources = newResources()
	}
	return s, nil
}

// Register appends a system to a stage after validating its declared access.
func (s *Scheduler) Register(stageName, name string, fn System, access ...Access) error {
	pos, ok := s.index.GetIndex(stageName)
	if !ok {
		return UnknownStageError{Stage: stageName}
	}
	if _, ok := s.systems[name]; ok {
		return DuplicateSystemError{System: name}
	}
	sig := newAccessSignature(name, s.sto)
	for _, declare := range access {
		if err := declare(sig); err != nil {
			return err
		}
	}

	st := &s.stages[*s.index.GetItem(pos)]
	st.systems = append(st.systems, &registeredSystem{
		name:   name,
		fn:     fn,
		access: sig,
		logger: s.logger.With().Str("stage", stageName).Str("system", name).Logger(),
	})
	s.systems[name] = struct{}{}
	s.logger.Debug().Str("stage", stageName).Str("system", name).Msg("system registered")
	return nil
}

// Run executes one tick: every stage in declaration order, the systems of a stage in
// registration order, and one command buffer flush after each stage. The first system error ends
// the tick. Stages already flushed stay applied; the failing stage's pending edits stay buffered
// until its next flush.
func (s *Scheduler) Run() error {
	s.ticks++
	for i := range s.stages {
		st := &s.stages[i]
		s.logger.Debug().Str("stage", st.name).Uint64("tick", s.ticks).Int("systems", len(st.systems)).Msg("stage started")
		for _, sys := range st.systems {
			ctx := Context{scheduler: s, stage: st, system: sys}
			if err := sys.fn(&ctx); err != nil {
				sys.logger.Error().Err(err).Uint64("tick", s.ticks).Msg("system failed")
				return s.convert(err)
			}
		}
		stats := st.commands.Flush(s.sto)
		s.logger.Debug().
			Str("stage", st.name).
			Uint64("tick", s.ticks).
			Int("killed", stats.Killed).
			Int("built", stats.Built).
			Int("added", stats.Added).
			Int("removed", stats.Removed).
			Msg("stage flushed")
	}
	return nil
}

// Stages returns the declared stage names in order.
func (s *Scheduler) Stages() []string {
	names := make([]string, len(s.stages))
	for i := range s.stages {
		names[i] = s.stages[i].name
	}
	return names
}

// Systems returns the system names of a stage in registration order.
func (s *Scheduler) Systems(stageName string) ([]string, error) {
	pos, ok := s.index.GetIndex(stageName)
	if !ok {
		return nil, UnknownStageError{Stage: stageName}
	}
	st := &s.stages[*s.index.GetItem(pos)]
	names := make([]string, len(st.systems))
	for i, sys := range st.systems {
		names[i] = sys.name
	}
	return names, nil
}

// Resources returns the registry shared by every system.
func (s *Scheduler) Resources() *Resources {
	return s.resources
}

// Ticks returns how many times Run was called.
func (s *Scheduler) Ticks() uint64 {
	return s.ticks
}
