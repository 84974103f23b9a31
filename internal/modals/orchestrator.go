// Package modals owns the modal state machine for one session: which
// overlays are open, the quote submission lifecycle, and the page scroll
// lock derived from them.
package modals

import (
	"context"
	"sync"
	"time"

	"madsag-engine/internal/catalog"
	stderrors "madsag-engine/internal/common/errors"
	"madsag-engine/internal/common/logger"
	"madsag-engine/internal/leads"
)

// Kind names one of the four overlay types.
type Kind string

const (
	KindQuote         Kind = "quote"
	KindPortfolio     Kind = "portfolio"
	KindBlog          Kind = "blog"
	KindServiceDetail Kind = "service-detail"
)

// Phase is the quote modal's submission lifecycle.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
	PhaseSuccess    Phase = "success"
)

// ScrollLock is the page-level scroll freeze. Engage fires only on the
// transition from no modal open to at least one open, Release only on the
// reverse. Re-engaging an engaged lock would reset the saved scroll
// position, so transitions are edge-triggered.
type ScrollLock interface {
	Engage()
	Release()
}

// SubmitFunc performs the actual lead submission. The leads.Client
// satisfies it; tests substitute their own.
type SubmitFunc func(ctx context.Context, record *leads.Record) (*leads.Submission, error)

// QuoteState is the externally visible quote modal state.
type QuoteState struct {
	Open   bool          `json:"open"`
	Phase  Phase         `json:"phase"`
	Record *leads.Record `json:"record,omitempty"`
	Err    error         `json:"-"`
}

// Snapshot is a point-in-time copy of every modal's state.
type Snapshot struct {
	Quote           QuoteState `json:"quote"`
	PortfolioOpen   bool       `json:"portfolioOpen"`
	PortfolioItemID string     `json:"portfolioItemId,omitempty"`
	BlogOpen        bool       `json:"blogOpen"`
	BlogPostID      string     `json:"blogPostId,omitempty"`
	ServiceOpen     bool       `json:"serviceOpen"`
	ServiceID       string     `json:"serviceId,omitempty"`
	AnyOpen         bool       `json:"anyOpen"`
}

// Orchestrator is the per-session modal state machine. All transitions
// hold the mutex; the submission network call does not.
type Orchestrator struct {
	mu sync.Mutex

	submit       SubmitFunc
	scrollLock   ScrollLock
	drafts       leads.DraftStore
	sessionID    string
	successDelay time.Duration
	logger       logger.Logger

	quote struct {
		open   bool
		phase  Phase
		record *leads.Record
		err    error
	}
	portfolio struct {
		open   bool
		itemID string
	}
	blog struct {
		open   bool
		postID string
	}
	serviceDetail struct {
		open      bool
		serviceID string
	}

	// generation advances on every quote close. A submission or dismiss
	// timer that finishes under an older generation is discarded.
	generation   uint64
	dismissTimer *time.Timer
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithDraftStore enables draft persistence for the quote record. drafts
// may be nil, which disables it.
func WithDraftStore(drafts leads.DraftStore, sessionID string) Option {
	return func(o *Orchestrator) {
		o.drafts = drafts
		o.sessionID = sessionID
	}
}

func New(submit SubmitFunc, lock ScrollLock, successDelay time.Duration, log logger.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		submit:       submit,
		scrollLock:   lock,
		successDelay: successDelay,
		logger:       log.WithFields(map[string]interface{}{"component": "modals"}),
	}
	o.quote.phase = PhaseIdle
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// anyOpenLocked is the single source of truth for the scroll lock.
func (o *Orchestrator) anyOpenLocked() bool {
	return o.quote.open || o.portfolio.open || o.blog.open || o.serviceDetail.open
}

// transition runs fn under the mutex and fires the scroll lock on the
// any-open edge it produces.
func (o *Orchestrator) transition(fn func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.transitionLocked(fn)
}

func (o *Orchestrator) transitionLocked(fn func()) {
	before := o.anyOpenLocked()
	fn()
	after := o.anyOpenLocked()

	switch {
	case !before && after:
		o.scrollLock.Engage()
	case before && !after:
		o.scrollLock.Release()
	}
}

// OpenQuote opens the quote modal, restoring a saved draft when one
// exists. A preselected service and plan override the draft's subject.
func (o *Orchestrator) OpenQuote(ctx context.Context, service, plan string) {
	record := o.loadDraft(ctx)
	if record == nil {
		record = leads.NewRecord(service, plan)
	} else if service != "" {
		record.Subject = leads.Subject(service, plan)
	}

	o.transition(func() {
		o.quote.open = true
		o.quote.phase = PhaseIdle
		o.quote.record = record
		o.quote.err = nil
	})
}

// CloseQuote closes the quote modal. A record that never reached a
// terminal success is saved as a draft; anything still in flight is
// disowned via the generation counter.
func (o *Orchestrator) CloseQuote(ctx context.Context) {
	var draft *leads.Record

	o.transition(func() {
		if !o.quote.open {
			return
		}
		if o.quote.phase != PhaseSuccess {
			draft = o.quote.record
		}
		o.closeQuoteLocked()
	})

	if draft != nil {
		o.saveDraft(ctx, draft)
	}
}

func (o *Orchestrator) closeQuoteLocked() {
	o.quote.open = false
	o.quote.phase = PhaseIdle
	o.quote.record = nil
	o.quote.err = nil
	o.generation++
	if o.dismissTimer != nil {
		o.dismissTimer.Stop()
		o.dismissTimer = nil
	}
}

func (o *Orchestrator) OpenPortfolio(itemID string) {
	o.transition(func() {
		o.portfolio.open = true
		o.portfolio.itemID = itemID
	})
}

func (o *Orchestrator) ClosePortfolio() {
	o.transition(func() {
		o.portfolio.open = false
		o.portfolio.itemID = ""
	})
}

func (o *Orchestrator) OpenBlog(postID string) {
	o.transition(func() {
		o.blog.open = true
		o.blog.postID = postID
	})
}

func (o *Orchestrator) CloseBlog() {
	o.transition(func() {
		o.blog.open = false
		o.blog.postID = ""
	})
}

func (o *Orchestrator) OpenServiceDetail(serviceID string) {
	o.transition(func() {
		o.serviceDetail.open = true
		o.serviceDetail.serviceID = serviceID
	})
}

func (o *Orchestrator) CloseServiceDetail() {
	o.transition(func() {
		o.serviceDetail.open = false
		o.serviceDetail.serviceID = ""
	})
}

// EnquireFromServiceDetail closes the service detail view and opens the
// quote modal with the detail's service and the chosen plan preselected.
// The two changes happen in one transition, so the scroll lock never
// releases in between.
func (o *Orchestrator) EnquireFromServiceDetail(plan string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.serviceDetail.open {
		return stderrors.NewModalNotOpenError(string(KindServiceDetail))
	}

	service, ok := catalog.ServiceBySection(o.serviceDetail.serviceID)
	subject := leads.Subject(string(catalog.ServiceGeneral), "")
	if ok {
		subject = leads.Subject(string(service.Name), plan)
	}

	o.transitionLocked(func() {
		o.serviceDetail.open = false
		o.serviceDetail.serviceID = ""
		o.quote.open = true
		o.quote.phase = PhaseIdle
		o.quote.err = nil
		record := leads.NewRecord("", "")
		record.Subject = subject
		o.quote.record = record
	})
	return nil
}

// UpdateQuoteRecord replaces the in-progress record, preserving visitor
// input across renders. Rejected while a submission is in flight.
func (o *Orchestrator) UpdateQuoteRecord(record *leads.Record) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.quote.open {
		return stderrors.NewModalNotOpenError(string(KindQuote))
	}
	if o.quote.phase == PhaseSubmitting {
		return stderrors.NewSubmissionInFlightError()
	}
	o.quote.record = record
	return nil
}

// SubmitQuote runs the current record through the submission pipeline.
// Exactly one submission may be in flight; a second call is rejected
// without touching the first. On failure the modal stays open with the
// error attached and the input intact. On success the modal shows its
// confirmation, the draft is cleared, and a timer dismisses the modal
// after the configured delay.
func (o *Orchestrator) SubmitQuote(ctx context.Context) error {
	o.mu.Lock()
	if !o.quote.open {
		o.mu.Unlock()
		return stderrors.NewModalNotOpenError(string(KindQuote))
	}
	if o.quote.phase == PhaseSubmitting {
		o.mu.Unlock()
		return stderrors.NewSubmissionInFlightError()
	}

	o.quote.phase = PhaseSubmitting
	o.quote.err = nil
	record := o.quote.record
	gen := o.generation
	o.mu.Unlock()

	_, err := o.submit(ctx, record)

	o.mu.Lock()
	defer o.mu.Unlock()

	if gen != o.generation {
		// Modal closed while the request was out. The backend record, if
		// created, stands; the session just stops caring.
		o.logger.Debug("discarding stale submission result", map[string]interface{}{
			"err": err != nil,
		})
		return nil
	}

	if err != nil {
		o.quote.phase = PhaseIdle
		o.quote.err = err
		return err
	}

	o.quote.phase = PhaseSuccess
	o.clearDraft(ctx)
	o.scheduleDismissLocked(gen)
	return nil
}

func (o *Orchestrator) scheduleDismissLocked(gen uint64) {
	if o.dismissTimer != nil {
		o.dismissTimer.Stop()
	}
	o.dismissTimer = time.AfterFunc(o.successDelay, func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		if gen != o.generation || o.quote.phase != PhaseSuccess {
			return
		}
		o.transitionLocked(o.closeQuoteLocked)
	})
}

// AnyOpen reports whether any modal is open.
func (o *Orchestrator) AnyOpen() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.anyOpenLocked()
}

// Quote returns the quote modal state. The record pointer is shared; the
// server layer serializes it without mutating.
func (o *Orchestrator) Quote() QuoteState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return QuoteState{
		Open:   o.quote.open,
		Phase:  o.quote.phase,
		Record: o.quote.record,
		Err:    o.quote.err,
	}
}

// State returns a snapshot of every modal.
func (o *Orchestrator) State() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return Snapshot{
		Quote: QuoteState{
			Open:   o.quote.open,
			Phase:  o.quote.phase,
			Record: o.quote.record,
			Err:    o.quote.err,
		},
		PortfolioOpen:   o.portfolio.open,
		PortfolioItemID: o.portfolio.itemID,
		BlogOpen:        o.blog.open,
		BlogPostID:      o.blog.postID,
		ServiceOpen:     o.serviceDetail.open,
		ServiceID:       o.serviceDetail.serviceID,
		AnyOpen:         o.anyOpenLocked(),
	}
}

func (o *Orchestrator) loadDraft(ctx context.Context) *leads.Record {
	if o.drafts == nil {
		return nil
	}
	draft, err := o.drafts.Load(ctx, o.sessionID)
	if err != nil {
		o.logger.WithError(err).Warn("failed to load draft", nil)
		return nil
	}
	return draft
}

func (o *Orchestrator) saveDraft(ctx context.Context, record *leads.Record) {
	if o.drafts == nil || record == nil {
		return
	}
	if err := o.drafts.Save(ctx, o.sessionID, record); err != nil {
		o.logger.WithError(err).Warn("failed to save draft", nil)
	}
}

func (o *Orchestrator) clearDraft(ctx context.Context) {
	if o.drafts == nil {
		return
	}
	if err := o.drafts.Clear(ctx, o.sessionID); err != nil {
		o.logger.WithError(err).Warn("failed to clear draft", nil)
	}
}
