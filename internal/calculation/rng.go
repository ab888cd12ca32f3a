package calculation

// mulberry32 advances a 32-bit generator state and returns a uniform
// value in [0, 1) together with the next state. The state walks a full
// 2^32 cycle.
func mulberry32(state uint32) (float64, uint32) {
	state += 0x6d2b79f5
	t := state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return float64(t^(t>>14)) / 4294967296.0, state
}

// stream is a cursor over mulberry32 owned by exactly one goroutine.
type stream struct {
	state uint32
}

func newStream(seed uint32) *stream {
	return &stream{state: seed}
}

// Float64 returns the next uniform value in [0, 1).
func (s *stream) Float64() float64 {
	v, next := mulberry32(s.state)
	s.state = next
	return v
}

// simulationSeed derives the reproducible seed for one calculation.
func simulationSeed(ageA, ageB, visitsPerYear int) uint32 {
	return uint32(ageA*1000 + ageB*100 + visitsPerYear)
}

// chunkSeed derives an independent seed for a parallel trial chunk.
// Chunk 0 keeps the base seed so a single chunk replays the sequential run.
func chunkSeed(seed uint32, chunk int) uint32 {
	if chunk == 0 {
		return seed
	}
	_, s := mulberry32(seed ^ (uint32(chunk) * 0x9e3779b9))
	v, _ := mulberry32(s)
	return uint32(v * 4294967296.0)
}
