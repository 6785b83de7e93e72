package testutil

// FixedSessionGenerator returns the same session id every time.
//
// The harness builds one store per scenario run; giving every run of a
// scenario the same session id keeps its recording byte-identical, so it can
// be compared against a golden file.
//
// Unlike mockstore.FixedGenerator, which returns ids in sequence and panics
// when they run out, this generator never runs out.
//
// Thread-safety: FixedSessionGenerator is stateless and safe for concurrent use.
type FixedSessionGenerator struct {
	id string
}

// NewFixedSessionGenerator creates a generator that always returns id.
// If id is empty, Generate() returns "test-session-default".
func NewFixedSessionGenerator(id string) *FixedSessionGenerator {
	if id == "" {
		id = "test-session-default"
	}
	return &FixedSessionGenerator{id: id}
}

// Generate returns the fixed session id.
//
// Implements mockstore.IDGenerator.
func (g *FixedSessionGenerator) Generate() string {
	return g.id
}
