// Package scenario loads JSON scenario documents describing a crowd
// run: world extent, goal segment, obstacle set, and agent population.
// Documents are validated against an embedded JSON Schema before
// unmarshaling, so a malformed file fails with a precise path instead
// of a zero-valued simulation.
package scenario

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/pthm-cable/throng/flowfield"
)

//go:embed schema.json
var schemaJSON string

// compiled once at init; the embedded schema is trusted input.
var schema = jsonschema.MustCompileString("scenario/schema.json", schemaJSON)

// Goal describes the vertical goal segment agents converge on.
type Goal struct {
	X    float32 `json:"x"`
	MinY float32 `json:"minY"`
	MaxY float32 `json:"maxY"`
}

// Box is an axis-aligned obstacle. X, Y is the top-left corner.
type Box struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	W float32 `json:"w"`
	H float32 `json:"h"`
}

// Band is the x-range agents spawn in; spawn y spans the full world
// height.
type Band struct {
	MinX float32 `json:"minX"`
	MaxX float32 `json:"maxX"`
}

// Scenario is a validated crowd scenario.
type Scenario struct {
	Name        string  `json:"name"`
	WorldWidth  float32 `json:"worldWidth"`
	WorldHeight float32 `json:"worldHeight"`
	// CellSize is optional; zero defers to the configured default.
	CellSize float32 `json:"cellSize"`
	Goal        Goal    `json:"goal"`
	Obstacles   []Box   `json:"obstacles"`
	AgentCount  int     `json:"agentCount"`
	MinSpeed    float32 `json:"minSpeed"`
	MaxSpeed    float32 `json:"maxSpeed"`
	SpawnBand   Band    `json:"spawnBand"`
}

// Default returns the built-in concourse scenario: a 1920x1080 hall
// with a single blocking pillar and the goal along the right edge.
func Default() Scenario {
	return Scenario{
		Name:        "concourse",
		WorldWidth:  1920,
		WorldHeight: 1080,
		CellSize:    64,
		Goal:        Goal{X: 1920, MinY: 490, MaxY: 590},
		Obstacles:   []Box{{X: 860, Y: 390, W: 300, H: 300}},
		AgentCount:  200,
		MinSpeed:    60,
		MaxSpeed:    100,
		SpawnBand:   Band{MinX: 40, MaxX: 300},
	}
}

// Parse validates raw JSON against the schema and unmarshals it.
func Parse(data []byte) (Scenario, error) {
	var doc any
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return Scenario{}, fmt.Errorf("decoding scenario json: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return Scenario{}, fmt.Errorf("scenario validation failed: %w", err)
	}

	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return Scenario{}, fmt.Errorf("unmarshaling scenario: %w", err)
	}
	if s.MaxSpeed < s.MinSpeed {
		return Scenario{}, fmt.Errorf("maxSpeed %v below minSpeed %v", s.MaxSpeed, s.MinSpeed)
	}
	if s.SpawnBand.MaxX < s.SpawnBand.MinX {
		return Scenario{}, fmt.Errorf("spawnBand maxX %v below minX %v", s.SpawnBand.MaxX, s.SpawnBand.MinX)
	}
	return s, nil
}

// Load reads and parses a scenario file.
func Load(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("reading scenario file: %w", err)
	}
	return Parse(data)
}

// WorldSize returns the world extent as an engine vector.
func (s Scenario) WorldSize() flowfield.Vec2 {
	return flowfield.Vec2{X: s.WorldWidth, Y: s.WorldHeight}
}

// GoalArea converts the goal segment to the engine type.
func (s Scenario) GoalArea() flowfield.GoalArea {
	return flowfield.GoalArea{X: s.Goal.X, MinY: s.Goal.MinY, MaxY: s.Goal.MaxY}
}

// FieldObstacles converts the obstacle boxes to engine obstacles.
func (s Scenario) FieldObstacles() []flowfield.Obstacle {
	if len(s.Obstacles) == 0 {
		return nil
	}
	obs := make([]flowfield.Obstacle, len(s.Obstacles))
	for i, b := range s.Obstacles {
		obs[i] = flowfield.Obstacle{
			Pos:  flowfield.Vec2{X: b.X, Y: b.Y},
			Size: flowfield.Vec2{X: b.W, Y: b.H},
		}
	}
	return obs
}
