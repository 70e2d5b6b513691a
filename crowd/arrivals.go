package crowd

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/throng/flowfield"
)

type arrived struct {
	entity ecs.Entity
	pos    flowfield.Vec2
	ticks  int32
}

// CollectArrivals finds agents within the arrival margin of the goal
// segment, despawns them, and returns one event per arrival. With
// respawn enabled each arrival is immediately replaced by a fresh
// walker in the spawn band, keeping the population constant.
//
// Entities are collected first and mutated after the query closes;
// structural changes during iteration are not allowed.
func (m *Manager) CollectArrivals(tick int32) []Arrival {
	var hits []arrived

	query := m.filter.Query()
	for query.Next() {
		pos, _, _, walker := query.Get()
		if !m.atGoal(pos.X, pos.Y) {
			continue
		}
		hits = append(hits, arrived{
			entity: query.Entity(),
			pos:    flowfield.Vec2{X: pos.X, Y: pos.Y},
			ticks:  tick - walker.SpawnTick,
		})
	}

	if len(hits) == 0 {
		return nil
	}

	events := make([]Arrival, 0, len(hits))
	for _, h := range hits {
		m.world.RemoveEntity(h.entity)
		m.count--
		events = append(events, Arrival{Pos: h.pos, TravelTicks: h.ticks})

		if m.respawn {
			m.spawn(tick)
		}
	}
	return events
}

// atGoal reports whether a point lies within the arrival margin of the
// goal segment. The segment is vertical at goal.X; the margin expands
// it into a capture rectangle so fast agents cannot step across it in
// a single tick.
func (m *Manager) atGoal(x, y float32) bool {
	g := m.scn.Goal
	dx := g.X - x
	if dx < 0 {
		dx = -dx
	}
	return dx <= m.arrivalMargin &&
		y >= g.MinY-m.arrivalMargin &&
		y <= g.MaxY+m.arrivalMargin
}
