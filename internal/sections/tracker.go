// Package sections derives the single "active" page section from the
// stream of viewport-intersection observations the browser reports.
package sections

import "sync"

// Observation is one per-section visibility record from an intersection
// callback batch. A newer observation supersedes the previous one for the
// same section id.
type Observation struct {
	SectionID    string  `json:"sectionId"`
	Intersecting bool    `json:"intersecting"`
	Ratio        float64 `json:"ratio"`
}

// Config mirrors the browser observer options the tracker was mounted
// with. RootMargin is carried for the snapshot the frontend reads back;
// the margin itself is applied browser-side.
type Config struct {
	VisibilityThreshold float64
	RootMargin          string
}

// Tracker keeps a running table of the latest observation per section and
// publishes the id of the most visible one. When nothing is intersecting
// the previously active id is retained, never cleared, so the navbar
// highlight does not flicker while scrolling between sections.
type Tracker struct {
	mu sync.Mutex

	cfg      Config
	order    map[string]int
	nextSeq  int
	latest   map[string]Observation
	activeID string
	observed bool
}

func NewTracker(cfg Config) *Tracker {
	return &Tracker{
		cfg:    cfg,
		order:  make(map[string]int),
		latest: make(map[string]Observation),
	}
}

// Register fixes the tie-break order for sections before any observation
// arrives. Unregistered sections are appended on first sight.
func (t *Tracker) Register(ids ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, id := range ids {
		t.registerLocked(id)
	}
}

func (t *Tracker) registerLocked(id string) int {
	if seq, ok := t.order[id]; ok {
		return seq
	}
	seq := t.nextSeq
	t.order[id] = seq
	t.nextSeq++
	return seq
}

// Observe merges one callback batch into the table and recomputes the
// active section. At most one id is derived per batch.
func (t *Tracker) Observe(batch []Observation) {
	if len(batch) == 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for _, obs := range batch {
		if obs.SectionID == "" {
			continue
		}
		t.registerLocked(obs.SectionID)
		t.latest[obs.SectionID] = obs
	}

	bestID := ""
	bestRatio := -1.0
	bestSeq := 0
	for id, obs := range t.latest {
		if !obs.Intersecting || obs.Ratio <= 0 || obs.Ratio < t.cfg.VisibilityThreshold {
			continue
		}
		seq := t.order[id]
		if obs.Ratio > bestRatio || (obs.Ratio == bestRatio && seq < bestSeq) {
			bestID = id
			bestRatio = obs.Ratio
			bestSeq = seq
		}
	}

	// Empty visible set: keep the previous active id.
	if bestID != "" {
		t.activeID = bestID
		t.observed = true
	}
}

// ActiveSection returns the currently active section id. ok is false until
// a visible section has been observed at least once.
func (t *Tracker) ActiveSection() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.activeID, t.observed
}

// Config returns the options the tracker was created with.
func (t *Tracker) Config() Config {
	return t.cfg
}
