package stockroom_test

import (
	"fmt"

	"github.com/TheBitDrifter/stockroom"
)

// Position is a simple component for 2D coordinates
type Position struct {
	X float64
	Y float64
}

// Velocity is a simple component for 2D movement
type Velocity struct {
	X float64
	Y float64
}

// Name is a simple component for entity identification
type Name struct {
	Value string
}

// Sleeping tags entities that should not move
type Sleeping struct{}

// Example shows basic stockroom usage with entity creation and joins
func Example_basic() {
	position := stockroom.FactoryNewComponent[Position](stockroom.DenseArray)
	velocity := stockroom.FactoryNewComponent[Velocity](stockroom.DenseArray)
	name := stockroom.FactoryNewComponent[Name](stockroom.HashMapping)
	sleeping := stockroom.FactoryNewMarker[Sleeping]()

	sto, _ := stockroom.Factory.NewStore(position, velocity, name, sleeping)

	// Create entities
	for i := 0; i < 5; i++ {
		sto.Build(position.Set(sto.Reserve(), Position{}))
	}
	for i := 0; i < 3; i++ {
		b := sto.Reserve()
		position.Set(b, Position{})
		velocity.Set(b, Velocity{X: 1, Y: 1})
		sleeping.Set(b)
		sto.Build(b)
	}

	// Create one named entity
	b := sto.Reserve()
	position.Set(b, Position{X: 10, Y: 20})
	velocity.Set(b, Velocity{X: 1, Y: 2})
	name.Set(b, Name{Value: "Player"})
	player := sto.Build(b)

	fmt.Printf("Found %d entities with position and velocity\n",
		sto.Join(position.Read(sto), velocity.Read(sto)).Count())

	// Move everything that is awake
	pos, vel := position.Write(sto), velocity.Read(sto)
	for e := range sto.Join(pos, vel, sleeping.Not(sto)).Entities() {
		p, v := pos.At(e), vel.At(e)
		p.X += v.X
		p.Y += v.Y
	}

	p, _ := position.Get(sto, player)
	n, _ := name.Get(sto, player)
	fmt.Printf("Updated %s to position (%.1f, %.1f)\n", n.Value, p.X, p.Y)

	// Output:
	// Found 4 entities with position and velocity
	// Updated Player to position (11.0, 22.0)
}

// Example_commands shows deferred structural changes
func Example_commands() {
	position := stockroom.FactoryNewComponent[Position](stockroom.DenseArray)
	velocity := stockroom.FactoryNewComponent[Velocity](stockroom.Packed)

	sto, _ := stockroom.Factory.NewStore(position, velocity)
	for i := 0; i < 4; i++ {
		sto.Build(position.Set(sto.Reserve(), Position{X: float64(i)}))
	}

	pos := position.Read(sto)
	cb := sto.NewCommandBuffer()
	for e := range sto.Join(pos).Entities() {
		if pos.At(e).X < 2 {
			cb.Delete(e)
			continue
		}
		velocity.EnqueueAdd(cb, e, Velocity{X: 1})
	}
	stats := cb.Flush(sto)

	fmt.Printf("killed=%d added=%d alive=%d\n", stats.Killed, stats.Added, sto.Len())
	fmt.Println("recycled:", sto.Next())

	// Output:
	// killed=2 added=2 alive=2
	// recycled: Entity(0)
}

// Example_scheduler shows stages with a flush between them
func Example_scheduler() {
	position := stockroom.FactoryNewComponent[Position](stockroom.DenseArray)
	sto, _ := stockroom.Factory.NewStore(position)

	sched, _ := stockroom.Factory.NewScheduler(sto, []string{"spawn", "report"})
	sched.Register("spawn", "spawner", func(ctx *stockroom.Context) error {
		ctx.Commands().Entity(func(_ stockroom.Entity, b *stockroom.EntityBuilder) {
			position.Set(b, Position{X: 1})
		})
		return nil
	}, stockroom.AccessCommands())
	sched.Register("report", "reporter", func(ctx *stockroom.Context) error {
		fmt.Println("alive:", ctx.Store().Len())
		return nil
	}, stockroom.AccessRead(position))

	for i := 0; i < 2; i++ {
		if err := sched.Run(); err != nil {
			fmt.Println(err)
		}
	}

	// Output:
	// alive: 1
	// alive: 2
}
