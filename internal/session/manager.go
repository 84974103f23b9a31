package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"madsag-engine/internal/catalog"
	"madsag-engine/internal/common/config"
	stderrors "madsag-engine/internal/common/errors"
	"madsag-engine/internal/common/logger"
	"madsag-engine/internal/common/observability"
	"madsag-engine/internal/cta"
	"madsag-engine/internal/leads"
	"madsag-engine/internal/modals"
	"madsag-engine/internal/sections"
)

// Manager owns the live session table. Sessions idle past the TTL are
// swept; a swept id behaves exactly like an unknown one.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	cfg    config.SessionsConfig
	submit modals.SubmitFunc
	drafts leads.DraftStore
	router *cta.Router
	obs    *observability.Observability
	logger logger.Logger

	sweeping bool
	stop     chan struct{}
	done     chan struct{}
}

func NewManager(
	cfg config.SessionsConfig,
	submit modals.SubmitFunc,
	drafts leads.DraftStore,
	router *cta.Router,
	obs *observability.Observability,
	log logger.Logger,
) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		submit:   submit,
		drafts:   drafts,
		router:   router,
		obs:      obs,
		logger:   log.WithFields(map[string]interface{}{"component": "session-manager"}),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Create builds a new session with every trackable section pre-registered
// in page order.
func (m *Manager) Create(ctx context.Context) *Session {
	id := uuid.NewString()
	lock := &scrollLock{}

	tracker := sections.NewTracker(sections.Config{
		VisibilityThreshold: m.cfg.VisibilityThreshold,
		RootMargin:          m.cfg.RootMargin,
	})
	tracker.Register(catalog.SectionIDs...)

	orchestrator := modals.New(
		m.submit,
		lock,
		config.GetDuration(m.cfg.SuccessDismissDelay),
		m.logger,
		modals.WithDraftStore(m.drafts, id),
	)

	sess := &Session{
		ID:       id,
		Tracker:  tracker,
		Modals:   orchestrator,
		lock:     lock,
		router:   m.router,
		lastSeen: time.Now(),
	}

	m.mu.Lock()
	m.sessions[id] = sess
	m.mu.Unlock()

	if m.obs != nil {
		m.obs.RecordSessionCreated(ctx)
	}
	m.logger.Info("session created", map[string]interface{}{"sessionId": id})
	return sess
}

// Get returns the session for id and refreshes its idle clock.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, stderrors.NewSessionNotFoundError(id)
	}
	sess.touch()
	return sess, nil
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// StartSweeper expires idle sessions in the background until Stop is
// called. Sweep cadence is a quarter of the TTL.
func (m *Manager) StartSweeper() {
	ttl := config.GetDuration(m.cfg.TTL)
	interval := ttl / 4
	if interval < time.Second {
		interval = time.Second
	}

	m.sweeping = true
	go func() {
		defer close(m.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-m.stop:
				return
			case <-ticker.C:
				m.sweep(ttl)
			}
		}
	}()
}

func (m *Manager) sweep(ttl time.Duration) {
	cutoff := time.Now().Add(-ttl)

	m.mu.Lock()
	var expired []string
	for id, sess := range m.sessions {
		if sess.idleSince().Before(cutoff) {
			expired = append(expired, id)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	if len(expired) > 0 {
		m.logger.Info("sessions expired", map[string]interface{}{
			"count": len(expired),
		})
	}
}

// Stop terminates the sweeper. Safe to call once.
func (m *Manager) Stop() {
	if !m.sweeping {
		return
	}
	close(m.stop)
	<-m.done
}
