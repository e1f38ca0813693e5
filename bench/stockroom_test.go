package bench

import (
	"testing"

	"github.com/TheBitDrifter/stockroom"
)

// go test -bench=. -benchmem ./bench

const (
	nPos    = 9000
	nPosVel = 1000
)

type Position struct {
	X float64
	Y float64
}

type Velocity struct {
	X float64
	Y float64
}

func setupStockroom(b *testing.B, posKind, velKind stockroom.StorageKind) (stockroom.Store, stockroom.ComponentKind[Position], stockroom.ComponentKind[Velocity]) {
	position := stockroom.FactoryNewComponent[Position](posKind)
	velocity := stockroom.FactoryNewComponent[Velocity](velKind)
	sto, err := stockroom.Factory.NewStoreWithCapacity(nPos+nPosVel, position, velocity)
	if err != nil {
		b.Fatal(err)
	}
	for i := 0; i < nPosVel; i++ {
		builder := sto.Reserve()
		position.Set(builder, Position{})
		velocity.Set(builder, Velocity{X: 1, Y: 1})
		sto.Build(builder)
	}
	for i := 0; i < nPos; i++ {
		sto.Build(position.Set(sto.Reserve(), Position{}))
	}
	return sto, position, velocity
}

func BenchmarkIterStockroomJoin(b *testing.B) {
	b.StopTimer()
	sto, position, velocity := setupStockroom(b, stockroom.DenseArray, stockroom.DenseArray)
	pos, vel := position.Write(sto), velocity.Read(sto)
	join := sto.Join(pos, vel)
	b.StartTimer()

	for i := 0; i < b.N; i++ {
		for e := range join.Entities() {
			p, v := pos.At(e), vel.At(e)
			p.X += v.X
			p.Y += v.Y
		}
	}
}

func BenchmarkIterStockroomPacked(b *testing.B) {
	b.StopTimer()
	sto, position, velocity := setupStockroom(b, stockroom.DenseArray, stockroom.Packed)
	pos, vel := position.Write(sto), velocity.Read(sto)
	join := sto.Join(pos, vel)
	b.StartTimer()

	for i := 0; i < b.N; i++ {
		for e := range join.Entities() {
			p, v := pos.At(e), vel.At(e)
			p.X += v.X
			p.Y += v.Y
		}
	}
}

func BenchmarkIterStockroomCursor(b *testing.B) {
	b.StopTimer()
	sto, position, velocity := setupStockroom(b, stockroom.DenseArray, stockroom.HashMapping)
	query := stockroom.Factory.NewQuery()
	query.And(velocity, position)
	cursor := stockroom.Factory.NewCursor(query, sto)
	b.StartTimer()

	for i := 0; i < b.N; i++ {
		for cursor.Next() {
			pos := position.GetFromCursor(cursor)
			vel := velocity.GetFromCursor(cursor)

			pos.X += vel.X
			pos.Y += vel.Y
		}
	}
}

func BenchmarkStockroomCommandBuffer(b *testing.B) {
	b.StopTimer()
	sto, position, _ := setupStockroom(b, stockroom.DenseArray, stockroom.DenseArray)
	cb := sto.NewCommandBuffer()
	b.StartTimer()

	for i := 0; i < b.N; i++ {
		for j := 0; j < 100; j++ {
			cb.Entity(func(_ stockroom.Entity, builder *stockroom.EntityBuilder) {
				position.Set(builder, Position{X: float64(j)})
			})
		}
		cb.Flush(sto)
		for e := range sto.Join(position.Read(sto)).Entities() {
			if e.Index() >= nPos+nPosVel {
				cb.Delete(e)
			}
		}
		cb.Flush(sto)
	}
}
