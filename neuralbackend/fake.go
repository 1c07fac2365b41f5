package neuralbackend

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/exp/rand"

	"github.com/BatuhanAcikgoz/lc0-path-integral-method/board"
)

// Fake is a deterministic, in-memory Backend used by tests and by the
// verifier's "--backend fake" mode. It never touches a real network: Q
// values and policy distributions are derived from a seeded PRNG keyed
// on each position's FEN, so repeated evaluations of the same position
// are reproducible within one Fake instance.
type Fake struct {
	mu        sync.Mutex
	baseSeed  uint64
	available bool

	// cacheAfter, if > 0, makes every cacheAfter-th call to
	// EvaluateValue/EvaluatePolicy for a given FEN report a cache hit.
	// Zero disables cache-hit reporting entirely.
	cacheAfter int
	seenFEN    map[string]int

	// failFEN forces EvaluateValue/EvaluatePolicy to return an error
	// for a specific FEN, to exercise the Controller's fallback path.
	failFEN map[string]bool
}

// NewFake returns a Fake backend seeded by seed. The backend reports
// available until SetAvailable(false) is called.
func NewFake(seed uint64) *Fake {
	return &Fake{
		baseSeed:   seed,
		available:  true,
		cacheAfter: 2,
		seenFEN:    make(map[string]int),
		failFEN:    make(map[string]bool),
	}
}

// SetAvailable toggles whether Available() reports true, so tests can
// exercise the "backend unavailable" fallback path.
func (f *Fake) SetAvailable(available bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.available = available
}

// FailOn makes every evaluation of fen return an error.
func (f *Fake) FailOn(fen string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failFEN[fen] = true
}

// Available implements Backend.
func (f *Fake) Available() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.available
}

// EvaluateValue implements Backend.
func (f *Fake) EvaluateValue(ctx context.Context, pos board.Position) (float64, bool, error) {
	select {
	case <-ctx.Done():
		return 0, false, ctx.Err()
	default:
	}

	fen := pos.FEN()

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failFEN[fen] {
		return 0, false, fmt.Errorf("neuralbackend: fake backend configured to fail for %q", fen)
	}

	cacheHit := f.cacheHitLocked(fen)

	// A small deterministic hash of the FEN seeds a per-position RNG
	// so Q is stable across repeated calls but varies by position.
	local := rand.New(rand.NewSource(f.baseSeed ^ uint64(fnv32(fen))))
	q := local.Float64()*2 - 1 // in [-1, 1)

	return q, cacheHit, nil
}

// EvaluatePolicy implements Backend.
func (f *Fake) EvaluatePolicy(ctx context.Context, pos board.Position) (map[string]float64, bool, error) {
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	default:
	}

	fen := pos.FEN()

	f.mu.Lock()
	if f.failFEN[fen] {
		f.mu.Unlock()
		return nil, false, fmt.Errorf("neuralbackend: fake backend configured to fail for %q", fen)
	}
	cacheHit := f.cacheHitLocked(fen)
	f.mu.Unlock()

	moves := pos.LegalMoves()
	if len(moves) == 0 {
		return map[string]float64{}, cacheHit, nil
	}

	local := rand.New(rand.NewSource(f.baseSeed ^ uint64(fnv32(fen)) ^ 0x9E3779B97F4A7C15))
	weights := make([]float64, len(moves))
	var sum float64
	for i := range moves {
		w := local.Float64() + 0.01
		weights[i] = w
		sum += w
	}

	dist := make(map[string]float64, len(moves))
	for i, m := range moves {
		dist[m.UCI()] = weights[i] / sum
	}
	return dist, cacheHit, nil
}

// cacheHitLocked must be called with f.mu held. It reports whether the
// given FEN's evaluation should be treated as a cache hit this call,
// and advances the per-FEN visit counter.
func (f *Fake) cacheHitLocked(fen string) bool {
	f.seenFEN[fen]++
	if f.cacheAfter <= 0 {
		return false
	}
	return f.seenFEN[fen]%f.cacheAfter == 0
}

// fnv32 is a tiny FNV-1a hash, good enough to turn a FEN string into a
// PRNG seed deterministically.
func fnv32(s string) uint32 {
	const (
		offset32 = 2166136261
		prime32  = 16777619
	)
	h := uint32(offset32)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= prime32
	}
	return h
}
