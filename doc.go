/*
Package stockroom provides an in-memory Entity-Component-System (ECS) store for games and simulations.

Stockroom keeps one presence bitset per component kind next to a storage backend chosen per kind,
so asking for "every entity with A and B but not C" is a handful of word-wise ANDs over
hierarchical bitsets, with no search and no allocation per entity.

Core Concepts:

  - Entity: A 32-bit index shared by every component storage. Killed indices are recycled.
  - Component: A typed payload, or a marker without payload, attachable to entities.
  - Backend: Where a component's payloads live (DenseArray, HashMapping, OrderedMapping, Packed, Marker).
  - Join: The intersection of several presence bitsets, iterated in ascending entity order.
  - CommandBuffer: Structural changes recorded during iteration and applied at a flush.
  - Scheduler: Named stages of systems, with one command buffer flush after each stage.

Basic Usage:

	position := stockroom.FactoryNewComponent[Position](stockroom.DenseArray)
	velocity := stockroom.FactoryNewComponent[Velocity](stockroom.HashMapping)
	frozen := stockroom.FactoryNewMarker[Frozen]()

	sto, _ := stockroom.Factory.NewStoreWithCapacity(1024, position, velocity, frozen)

	b := sto.Reserve()
	position.Set(b, Position{})
	velocity.Set(b, Velocity{X: 1})
	sto.Build(b)

	pos, vel := position.Write(sto), velocity.Read(sto)
	for e := range sto.Join(pos, vel, frozen.Not(sto)).Entities() {
		pos.At(e).X += vel.At(e).X
	}

Structural changes made while iterating go through a command buffer:

	cb := sto.NewCommandBuffer()
	for e := range sto.Join(pos).Entities() {
		if pos.At(e).X > 100 {
			cb.Delete(e)
		}
	}
	cb.Flush(sto)

Long-running per-entity work (for instance work waiting on I/O) can be expressed as Tasks and
driven to completion on the calling goroutine by an Executor.
*/
package stockroom
