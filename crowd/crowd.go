// Package crowd hosts the walker agents that consume the flow field.
// Agents are ECS entities: the manager spawns them in the scenario's
// spawn band, steers them by sampling the field, and recycles them
// when they reach the goal. Identity and metadata stay here; the field
// engine only ever sees a flat list of positions.
package crowd

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/throng/components"
	"github.com/pthm-cable/throng/flowfield"
	"github.com/pthm-cable/throng/scenario"
)

// agentRadius is the physical radius of a walker in world units.
const agentRadius = 10

// Arrival reports one agent reaching the goal segment.
type Arrival struct {
	Pos         flowfield.Vec2
	TravelTicks int32
}

// Manager owns the walker population.
type Manager struct {
	world *ecs.World
	rng   *rand.Rand

	mapper *ecs.Map4[
		components.Position,
		components.Velocity,
		components.Body,
		components.Walker,
	]
	filter *ecs.Filter4[
		components.Position,
		components.Velocity,
		components.Body,
		components.Walker,
	]

	scn           scenario.Scenario
	obstacles     []flowfield.Obstacle
	arrivalMargin float32
	respawn       bool

	count int
}

// NewManager creates a manager and spawns the scenario's initial
// population. The same seed reproduces the same spawn layout and all
// later respawn jitter.
func NewManager(scn scenario.Scenario, seed int64, arrivalMargin float32, respawn bool) *Manager {
	world := ecs.NewWorld()

	m := &Manager{
		world: world,
		rng:   rand.New(rand.NewSource(seed)),
		mapper: ecs.NewMap4[
			components.Position,
			components.Velocity,
			components.Body,
			components.Walker,
		](world),
		filter: ecs.NewFilter4[
			components.Position,
			components.Velocity,
			components.Body,
			components.Walker,
		](world),
		scn:           scn,
		obstacles:     scn.FieldObstacles(),
		arrivalMargin: arrivalMargin,
		respawn:       respawn,
	}

	for i := 0; i < scn.AgentCount; i++ {
		m.spawn(0)
	}

	return m
}

// spawn creates one walker in the spawn band with jittered position
// and speed.
func (m *Manager) spawn(tick int32) ecs.Entity {
	x, y := m.spawnPoint()
	speed := m.scn.MinSpeed + m.rng.Float32()*(m.scn.MaxSpeed-m.scn.MinSpeed)

	pos := components.Position{X: x, Y: y}
	vel := components.Velocity{}
	body := components.Body{Radius: agentRadius}
	walker := components.Walker{Speed: speed, SpawnTick: tick}

	entity := m.mapper.NewEntity(&pos, &vel, &body, &walker)
	m.count++
	return entity
}

// spawnPoint picks a position in the spawn band that is not inside an
// obstacle. Bounded retries: a pathological scenario falls back to the
// last candidate rather than looping forever.
func (m *Manager) spawnPoint() (float32, float32) {
	band := m.scn.SpawnBand
	var x, y float32
	for try := 0; try < 16; try++ {
		x = band.MinX + m.rng.Float32()*(band.MaxX-band.MinX)
		y = m.rng.Float32() * m.scn.WorldHeight
		if !m.insideObstacle(x, y) {
			break
		}
	}
	return x, y
}

func (m *Manager) insideObstacle(x, y float32) bool {
	for _, ob := range m.obstacles {
		if x >= ob.Pos.X && x <= ob.Pos.X+ob.Size.X &&
			y >= ob.Pos.Y && y <= ob.Pos.Y+ob.Size.Y {
			return true
		}
	}
	return false
}

// Count returns the live agent count.
func (m *Manager) Count() int {
	return m.count
}

// GatherPositions appends all agent positions to dst and returns it.
// The result feeds Field.Recalculate; reusing dst across ticks avoids
// per-frame allocation.
func (m *Manager) GatherPositions(dst []flowfield.Vec2) []flowfield.Vec2 {
	query := m.filter.Query()
	for query.Next() {
		pos, _, _, _ := query.Get()
		dst = append(dst, flowfield.Vec2{X: pos.X, Y: pos.Y})
	}
	return dst
}

// Each visits every agent. Read-only callers only; used by rendering.
func (m *Manager) Each(fn func(pos components.Position, vel components.Velocity, body components.Body)) {
	query := m.filter.Query()
	for query.Next() {
		pos, vel, body, _ := query.Get()
		fn(*pos, *vel, *body)
	}
}
