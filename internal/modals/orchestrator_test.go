package modals

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "madsag-engine/internal/common/errors"
	"madsag-engine/internal/common/logger"
	"madsag-engine/internal/leads"
)

type lockRecorder struct {
	mu       sync.Mutex
	engages  int
	releases int
}

func (l *lockRecorder) Engage() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.engages++
}

func (l *lockRecorder) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.releases++
}

func (l *lockRecorder) counts() (int, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.engages, l.releases
}

func submitOK(context.Context, *leads.Record) (*leads.Submission, error) {
	return &leads.Submission{ID: 1}, nil
}

func newOrchestrator(t *testing.T, submit SubmitFunc, opts ...Option) (*Orchestrator, *lockRecorder) {
	t.Helper()
	lock := &lockRecorder{}
	return New(submit, lock, 50*time.Millisecond, logger.NewTestLogger(t), opts...), lock
}

func TestScrollLock_EdgeTriggered(t *testing.T) {
	o, lock := newOrchestrator(t, submitOK)
	ctx := context.Background()

	o.OpenQuote(ctx, "", "")
	engages, releases := lock.counts()
	assert.Equal(t, 1, engages)
	assert.Equal(t, 0, releases)

	// Second modal opens while the first is still up: no re-engage.
	o.OpenPortfolio("item-1")
	engages, _ = lock.counts()
	assert.Equal(t, 1, engages)

	// Closing the portfolio leaves the quote open: lock stays engaged.
	o.ClosePortfolio()
	engages, releases = lock.counts()
	assert.Equal(t, 1, engages)
	assert.Equal(t, 0, releases)
	assert.True(t, o.AnyOpen())

	o.CloseQuote(ctx)
	_, releases = lock.counts()
	assert.Equal(t, 1, releases)
	assert.False(t, o.AnyOpen())
}

func TestOpenQuote_SubjectPrepopulated(t *testing.T) {
	o, _ := newOrchestrator(t, submitOK)
	o.OpenQuote(context.Background(), "Website Design", "Sigma Architecture")

	quote := o.Quote()
	require.True(t, quote.Open)
	assert.Equal(t, "Website Design - Sigma Architecture", quote.Record.Subject)
	assert.Equal(t, PhaseIdle, quote.Phase)
}

func TestSubmitQuote_SuccessThenAutoDismiss(t *testing.T) {
	o, lock := newOrchestrator(t, submitOK)
	ctx := context.Background()

	o.OpenQuote(ctx, "Website Design", "")
	require.NoError(t, o.SubmitQuote(ctx))

	assert.Equal(t, PhaseSuccess, o.Quote().Phase)
	assert.True(t, o.AnyOpen())

	assert.Eventually(t, func() bool {
		return !o.AnyOpen()
	}, time.Second, 5*time.Millisecond, "success state must dismiss itself")

	quote := o.Quote()
	assert.False(t, quote.Open)
	assert.Nil(t, quote.Record)
	_, releases := lock.counts()
	assert.Equal(t, 1, releases)
}

func TestSubmitQuote_FailureKeepsModalOpenWithInput(t *testing.T) {
	submitErr := stderrors.NewServerFaultError(500, "boom")
	o, _ := newOrchestrator(t, func(context.Context, *leads.Record) (*leads.Submission, error) {
		return nil, submitErr
	})
	ctx := context.Background()

	o.OpenQuote(ctx, "Website Design", "")
	record := o.Quote().Record
	record.FullName = "John Doe"
	record.Description = "typed out a long project brief"

	err := o.SubmitQuote(ctx)
	require.Error(t, err)

	quote := o.Quote()
	assert.True(t, quote.Open)
	assert.Equal(t, PhaseIdle, quote.Phase)
	assert.Equal(t, submitErr, quote.Err)
	assert.Equal(t, "typed out a long project brief", quote.Record.Description)
}

func TestSubmitQuote_RejectsConcurrentSubmission(t *testing.T) {
	started := make(chan struct{})
	finish := make(chan struct{})
	o, _ := newOrchestrator(t, func(context.Context, *leads.Record) (*leads.Submission, error) {
		close(started)
		<-finish
		return &leads.Submission{ID: 1}, nil
	})
	ctx := context.Background()

	o.OpenQuote(ctx, "", "")

	done := make(chan error, 1)
	go func() { done <- o.SubmitQuote(ctx) }()
	<-started

	assert.Equal(t, PhaseSubmitting, o.Quote().Phase)

	err := o.SubmitQuote(ctx)
	assert.Equal(t, stderrors.ErrCodeSubmissionInFlight, stderrors.CodeOf(err))

	close(finish)
	require.NoError(t, <-done)
	assert.Equal(t, PhaseSuccess, o.Quote().Phase)
}

func TestSubmitQuote_ResultAfterCloseIsDiscarded(t *testing.T) {
	started := make(chan struct{})
	finish := make(chan struct{})
	o, _ := newOrchestrator(t, func(context.Context, *leads.Record) (*leads.Submission, error) {
		close(started)
		<-finish
		return &leads.Submission{ID: 1}, nil
	})
	ctx := context.Background()

	o.OpenQuote(ctx, "", "")

	done := make(chan error, 1)
	go func() { done <- o.SubmitQuote(ctx) }()
	<-started

	o.CloseQuote(ctx)
	close(finish)
	require.NoError(t, <-done)

	// The late result must not resurrect the modal or its success state.
	quote := o.Quote()
	assert.False(t, quote.Open)
	assert.Equal(t, PhaseIdle, quote.Phase)
	assert.False(t, o.AnyOpen())
}

func TestSubmitQuote_RequiresOpenModal(t *testing.T) {
	o, _ := newOrchestrator(t, submitOK)
	err := o.SubmitQuote(context.Background())
	assert.Equal(t, stderrors.ErrCodeModalNotOpen, stderrors.CodeOf(err))
}

func TestEnquireFromServiceDetail_AtomicTransition(t *testing.T) {
	o, lock := newOrchestrator(t, submitOK)

	o.OpenServiceDetail("website-design")
	require.NoError(t, o.EnquireFromServiceDetail("Sigma Architecture"))

	state := o.State()
	assert.False(t, state.ServiceOpen)
	assert.True(t, state.Quote.Open)
	assert.Equal(t, "Website Design - Sigma Architecture", state.Quote.Record.Subject)

	// Lock engaged once for the detail view, never released during the swap.
	engages, releases := lock.counts()
	assert.Equal(t, 1, engages)
	assert.Equal(t, 0, releases)
}

func TestEnquireFromServiceDetail_RequiresOpenDetail(t *testing.T) {
	o, _ := newOrchestrator(t, submitOK)
	err := o.EnquireFromServiceDetail("Sigma Architecture")
	assert.Equal(t, stderrors.ErrCodeModalNotOpen, stderrors.CodeOf(err))
}

func TestDrafts_SavedOnCloseRestoredOnReopen(t *testing.T) {
	store := leads.NewMemoryDraftStore()
	o, _ := newOrchestrator(t, submitOK, WithDraftStore(store, "sess-1"))
	ctx := context.Background()

	o.OpenQuote(ctx, "Website Design", "")
	record := o.Quote().Record
	record.FullName = "John Doe"
	record.Description = "halfway through describing the project"
	o.CloseQuote(ctx)

	o.OpenQuote(ctx, "", "")
	restored := o.Quote().Record
	require.NotNil(t, restored)
	assert.Equal(t, "John Doe", restored.FullName)
	assert.Equal(t, "halfway through describing the project", restored.Description)
	assert.Equal(t, "Website Design", restored.Subject)
}

func TestDrafts_ClearedAfterSuccess(t *testing.T) {
	store := leads.NewMemoryDraftStore()
	o, _ := newOrchestrator(t, submitOK, WithDraftStore(store, "sess-1"))
	ctx := context.Background()

	o.OpenQuote(ctx, "Website Design", "")
	o.Quote().Record.FullName = "John Doe"
	o.CloseQuote(ctx)

	o.OpenQuote(ctx, "", "")
	require.NoError(t, o.SubmitQuote(ctx))

	draft, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Nil(t, draft)
}

func TestUpdateQuoteRecord_BlockedWhileSubmitting(t *testing.T) {
	started := make(chan struct{})
	finish := make(chan struct{})
	o, _ := newOrchestrator(t, func(context.Context, *leads.Record) (*leads.Submission, error) {
		close(started)
		<-finish
		return &leads.Submission{ID: 1}, nil
	})
	ctx := context.Background()

	o.OpenQuote(ctx, "", "")
	done := make(chan error, 1)
	go func() { done <- o.SubmitQuote(ctx) }()
	<-started

	err := o.UpdateQuoteRecord(&leads.Record{})
	assert.Equal(t, stderrors.ErrCodeSubmissionInFlight, stderrors.CodeOf(err))

	close(finish)
	<-done
}
