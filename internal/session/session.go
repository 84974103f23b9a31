// Package session binds the per-browser state machines together: one
// section tracker, one modal orchestrator, one scroll lock, and the CTA
// derivation, addressed by a session id.
package session

import (
	"context"
	"sync"
	"time"

	"madsag-engine/internal/catalog"
	"madsag-engine/internal/cta"
	"madsag-engine/internal/modals"
	"madsag-engine/internal/sections"
)

// scrollLock records the page-freeze state the browser layer reads back.
type scrollLock struct {
	mu     sync.Mutex
	locked bool
}

func (l *scrollLock) Engage() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.locked = true
}

func (l *scrollLock) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.locked = false
}

func (l *scrollLock) Locked() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.locked
}

// Session is the server-side stand-in for one open browser tab.
type Session struct {
	ID string

	Tracker *sections.Tracker
	Modals  *modals.Orchestrator

	lock   *scrollLock
	router *cta.Router

	mu       sync.Mutex
	lastSeen time.Time
}

// Snapshot is the full client-facing state of a session.
type Snapshot struct {
	ID            string          `json:"id"`
	ActiveSection string          `json:"activeSection,omitempty"`
	Modals        modals.Snapshot `json:"modals"`
	ScrollLocked  bool            `json:"scrollLocked"`
	CTATopic      string          `json:"ctaTopic"`
	CTALink       string          `json:"ctaLink"`
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// ScrollLocked reports whether the page scroll is currently frozen.
func (s *Session) ScrollLocked() bool {
	return s.lock.Locked()
}

// CTATopic returns the chat topic for the currently active section.
func (s *Session) CTATopic() string {
	active, _ := s.Tracker.ActiveSection()
	return s.router.Topic(active)
}

// CTALink returns the wa.me deep link for the currently active section.
func (s *Session) CTALink() string {
	active, _ := s.Tracker.ActiveSection()
	return s.router.Link(active)
}

// Enquire opens the quote modal for a generic enquiry, preselecting the
// offering whose section the visitor is currently reading. Sections
// without an offering preselect the general category.
func (s *Session) Enquire(ctx context.Context) {
	service := string(catalog.ServiceGeneral)
	if active, ok := s.Tracker.ActiveSection(); ok {
		if offering, found := catalog.ServiceBySection(active); found {
			service = string(offering.Name)
		}
	}
	s.Modals.OpenQuote(ctx, service, "")
}

// Snapshot assembles the client-facing state in one pass.
func (s *Session) Snapshot() Snapshot {
	active, _ := s.Tracker.ActiveSection()
	return Snapshot{
		ID:            s.ID,
		ActiveSection: active,
		Modals:        s.Modals.State(),
		ScrollLocked:  s.lock.Locked(),
		CTATopic:      s.router.Topic(active),
		CTALink:       s.router.Link(active),
	}
}
