package engine

// Scene is a level driven by the Loop. Load queues resource fetches, Init runs
// once they resolved, Update advances the simulation by a fixed step and Draw
// renders the current state. Unload releases what Load acquired.
type Scene interface {
	Load() error
	Init() error
	Update(deltaTime float64) error
	Draw() error
	Unload() error
}
