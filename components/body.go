package components

// Body holds physical properties of an agent.
type Body struct {
	Radius float32
}

// Walker holds per-agent crowd state. Speed is the desired travel
// speed the flow direction is scaled by; SpawnTick records when the
// agent entered the world so arrivals can report travel time.
type Walker struct {
	Speed     float32
	SpawnTick int32
}
