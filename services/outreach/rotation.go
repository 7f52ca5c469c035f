package outreach

import (
	"sync"
	"time"

	"github.com/leadscout/techscan/internal/enum"
	techscan_errors "github.com/leadscout/techscan/internal/errors"
	"github.com/leadscout/techscan/internal/models"
)

// RotationState owns all mutable selection state: persona recency, variant
// usage counters and the rotation window. Every read and write goes through
// its mutex, so concurrent pipeline workers never double-pick the same
// least-used variant.
type RotationState struct {
	mu sync.Mutex

	personas      []models.Persona
	personaUsedAt map[string]int64
	lastPersonaID string
	tick          int64

	variants    []models.MessageVariant
	byCategory  map[enum.TechCategory][]int
	usage       map[string]int
	window      time.Duration
	windowStart time.Time

	now func() time.Time
}

// NewRotationState wires a selector over the given roster and message
// library. window of 0 keeps lifetime usage counters; a positive window
// resets all counters each time it elapses.
func NewRotationState(personas []models.Persona, variants []models.MessageVariant, window time.Duration) *RotationState {
	byCategory := make(map[enum.TechCategory][]int)
	for i, v := range variants {
		byCategory[v.Category] = append(byCategory[v.Category], i)
	}
	return &RotationState{
		personas:      personas,
		personaUsedAt: make(map[string]int64, len(personas)),
		variants:      variants,
		byCategory:    byCategory,
		usage:         make(map[string]int, len(variants)),
		window:        window,
		windowStart:   time.Now(),
		now:           time.Now,
	}
}

// SeedUsage loads persisted send counts, keyed by variant id, so a restart
// does not reset A/B fairness. Counts for unknown variants are kept; the
// variant may rejoin the library later.
func (r *RotationState) SeedUsage(counts map[string]int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, count := range counts {
		r.usage[id] = count
	}
}

// SelectPersona picks the least-recently-used persona. With more than one
// persona in the roster the immediately previous pick is never repeated.
func (r *RotationState) SelectPersona() (models.Persona, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.personas) == 0 {
		return models.Persona{}, techscan_errors.ErrNoPersonaAvailable
	}

	best := -1
	for i, p := range r.personas {
		if len(r.personas) > 1 && p.ID == r.lastPersonaID {
			continue
		}
		if best == -1 || r.personaUsedAt[p.ID] < r.personaUsedAt[r.personas[best].ID] {
			best = i
		}
	}

	picked := r.personas[best]
	r.tick++
	r.personaUsedAt[picked.ID] = r.tick
	r.lastPersonaID = picked.ID
	return picked, nil
}

// SelectVariant picks the least-used variant registered for the category,
// ties broken by registration order, and increments its usage count.
func (r *RotationState) SelectVariant(category enum.TechCategory) (models.MessageVariant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.maybeResetWindow()

	indexes, ok := r.byCategory[category]
	if !ok || len(indexes) == 0 {
		return models.MessageVariant{}, techscan_errors.ErrNoVariantAvailable
	}

	best := indexes[0]
	for _, idx := range indexes[1:] {
		if r.usage[r.variants[idx].ID] < r.usage[r.variants[best].ID] {
			best = idx
		}
	}

	picked := r.variants[best]
	r.usage[picked.ID]++
	return picked, nil
}

// UsageCounts returns a snapshot of the current variant usage counters.
func (r *RotationState) UsageCounts() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]int, len(r.usage))
	for id, count := range r.usage {
		out[id] = count
	}
	return out
}

func (r *RotationState) maybeResetWindow() {
	if r.window <= 0 {
		return
	}
	now := r.now()
	if now.Sub(r.windowStart) >= r.window {
		r.usage = make(map[string]int, len(r.variants))
		r.windowStart = now
	}
}
