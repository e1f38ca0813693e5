// Physics runs a small falling-bodies simulation through the stage scheduler and reports the
// cost per tick and per entity.
//
// Profiling:
// go build ./cmd/physics
// go tool pprof -http=":8000" ./physics cpu.pprof
package main

import (
	"os"
	"time"

	"github.com/TheBitDrifter/stockroom"
	"github.com/pkg/profile"
	"github.com/rs/zerolog"
)

type DeltaTime float32

type Acceleration struct {
	X, Y, Z float32
}

type Velocity struct {
	X, Y, Z float32
}

type Position struct {
	X, Y, Z float32
}

const (
	moving = 1000
	static = 9000
	warmup = 100000
	ticks  = 100000
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	settings, err := stockroom.LoadSettings()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid settings")
	}
	settings.ApplyLogger(logger)
	if settings.Capacity < moving+static {
		settings.Capacity = moving + static
	}

	acceleration := stockroom.FactoryNewComponent[Acceleration](stockroom.HashMapping)
	velocity := stockroom.FactoryNewComponent[Velocity](stockroom.Packed)
	position := stockroom.FactoryNewComponent[Position](stockroom.DenseArray)

	sto, err := stockroom.Factory.NewStoreFromSettings(settings, acceleration, velocity, position)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create store")
	}

	for range moving {
		b := sto.Reserve()
		acceleration.Set(b, Acceleration{Y: -9.81})
		position.Set(b, Position{Y: 50})
		velocity.Set(b, Velocity{X: 50, Z: 15.5})
		sto.Build(b)
	}
	for range static {
		sto.Build(position.Set(sto.Reserve(), Position{Y: -9.81}))
	}
	logger.Info().Int("entities", sto.Len()).Msg("data generated")

	sched, err := stockroom.Factory.NewScheduler(sto, []string{"integrate", "move"})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create scheduler")
	}
	stockroom.SetResource(sched.Resources(), DeltaTime(1e-3))

	err = sched.Register("integrate", "accelerate", func(ctx *stockroom.Context) error {
		dt := float32(*stockroom.MustResource[DeltaTime](ctx.Resources()))
		acc, vel := acceleration.Read(ctx.Store()), velocity.Write(ctx.Store())
		for e := range ctx.Store().Join(acc, vel).Entities() {
			a, v := acc.At(e), vel.At(e)
			v.X += a.X * dt
			v.Y += a.Y * dt
			v.Z += a.Z * dt
		}
		return nil
	}, stockroom.AccessRead(acceleration), stockroom.AccessWrite(velocity), stockroom.AccessResource[DeltaTime]())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to register system")
	}

	// Every positioned entity is visited; velocity is optional.
	err = sched.Register("move", "physics", func(ctx *stockroom.Context) error {
		pos, vel := position.Write(ctx.Store()), velocity.Opt(ctx.Store())
		for e := range ctx.Store().Join(pos).Entities() {
			v, ok := vel.At(e)
			if !ok {
				continue
			}
			p := pos.At(e)
			p.X += v.X
			p.Y += v.Y
			p.Z += v.Z
		}
		return nil
	}, stockroom.AccessWrite(position), stockroom.AccessRead(velocity))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to register system")
	}

	for range warmup {
		if err := sched.Run(); err != nil {
			logger.Fatal().Err(err).Msg("tick failed")
		}
	}

	p := profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	start := time.Now()
	for range ticks {
		if err := sched.Run(); err != nil {
			logger.Fatal().Err(err).Msg("tick failed")
		}
	}
	elapsed := time.Since(start)
	p.Stop()

	logger.Info().
		Dur("elapsed", elapsed).
		Float64("us_per_tick", float64(elapsed.Microseconds())/ticks).
		Float64("ns_per_entity", float64(elapsed.Nanoseconds())/ticks/float64(sto.Len())).
		Msg("done")
}
