// Package assignmentlist is the view model of a student's assignment list: it
// loads one list type, exposes cards for rendering and drives the unsubmit
// confirmation flow with a delayed re-fetch after a successful unsubmit.
package assignmentlist

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-assignments/internal/observability"
	"github.com/noah-isme/gema-assignments/internal/timefmt"
	"github.com/noah-isme/gema-assignments/pkg/apiclient"
)

// DefaultReloadDelay separates a successful unsubmit from the re-fetch.
const DefaultReloadDelay = time.Second

// Fetcher reads an assignment collection.
type Fetcher interface {
	FetchAssignments(ctx context.Context, listType apiclient.ListType) ([]apiclient.Assignment, error)
}

// Unsubmitter withdraws a submission.
type Unsubmitter interface {
	Unsubmit(ctx context.Context, assignmentID string) (apiclient.Result, error)
}

// Timer is a pending scheduled call.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type clockScheduler struct{}

func (clockScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Option customises a View.
type Option func(*View)

// WithScheduler replaces the timer used for the delayed reload.
func WithScheduler(s Scheduler) Option {
	return func(v *View) {
		if s != nil {
			v.scheduler = s
		}
	}
}

// WithReloadDelay overrides DefaultReloadDelay.
func WithReloadDelay(d time.Duration) Option {
	return func(v *View) {
		if d >= 0 {
			v.reloadDelay = d
		}
	}
}

// WithFormatter sets the timezone used for card timestamps.
func WithFormatter(f timefmt.Formatter) Option {
	return func(v *View) {
		v.formatter = f
	}
}

// WithClock sets the reference time for elapsed text.
func WithClock(now func() time.Time) Option {
	return func(v *View) {
		if now != nil {
			v.now = now
		}
	}
}

// WithLogger sets the view logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(v *View) {
		v.logger = logger.With().Str("component", "assignment_list").Logger()
	}
}

// View is safe for concurrent use. Network calls run outside the lock so
// Snapshot stays responsive while a fetch or unsubmit is in flight.
type View struct {
	fetcher     Fetcher
	unsubmitter Unsubmitter
	notifier    Notifier
	scheduler   Scheduler
	formatter   timefmt.Formatter
	now         func() time.Time
	logger      zerolog.Logger
	reloadDelay time.Duration

	mu       sync.Mutex
	listType apiclient.ListType
	mounted  bool
	closed   bool
	// generation identifies the latest fetch; older responses are dropped.
	generation  uint64
	assignments []apiclient.Assignment
	unsubmit    UnsubmitState
	reloadTimer Timer
	reloadSeq   uint64
	// scheduledGen is the fetch started by the delayed reload.
	scheduledGen uint64
}

// New creates an unmounted view in the loading state.
func New(fetcher Fetcher, unsubmitter Unsubmitter, notifier Notifier, opts ...Option) *View {
	v := &View{
		fetcher:     fetcher,
		unsubmitter: unsubmitter,
		notifier:    notifier,
		scheduler:   clockScheduler{},
		now:         time.Now,
		logger:      zerolog.Nop(),
		reloadDelay: DefaultReloadDelay,
		unsubmit:    idle(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Mount performs the first load of listType.
func (v *View) Mount(ctx context.Context, listType apiclient.ListType) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrClosed
	}
	if v.mounted {
		v.mu.Unlock()
		return fmt.Errorf("%w: view already mounted", ErrInvalidTransition)
	}
	v.mounted = true
	v.listType = listType
	gen := v.beginLoadLocked()
	v.mu.Unlock()

	v.load(ctx, gen, listType)
	return nil
}

// SetListType switches the view to listType and fetches it. An unchanged list type is a no-op.
func (v *View) SetListType(ctx context.Context, listType apiclient.ListType) error {
	v.mu.Lock()
	if !v.mounted && !v.closed {
		v.mu.Unlock()
		return v.Mount(ctx, listType)
	}
	if v.closed {
		v.mu.Unlock()
		return ErrClosed
	}
	if v.listType == listType {
		v.mu.Unlock()
		return nil
	}

	v.listType = listType
	if v.unsubmit.Phase == PhaseConfirmationOpen {
		v.unsubmit = idle()
	}
	v.stopReloadLocked()
	gen := v.beginLoadLocked()
	v.mu.Unlock()

	v.load(ctx, gen, listType)
	return nil
}

// Show loads listType the way a fresh page load does. Unlike SetListType it
// fetches again when listType is already shown.
func (v *View) Show(ctx context.Context, listType apiclient.ListType) error {
	v.mu.Lock()
	current := v.mounted && !v.closed && v.listType == listType
	v.mu.Unlock()

	if current {
		return v.Reload(ctx)
	}
	return v.SetListType(ctx, listType)
}

// Reload drops the loaded assignments and fetches the current list type again.
func (v *View) Reload(ctx context.Context) error {
	return v.reload(ctx, false)
}

func (v *View) reload(ctx context.Context, scheduled bool) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrClosed
	}
	if !v.mounted {
		v.mu.Unlock()
		return fmt.Errorf("%w: view not mounted", ErrInvalidTransition)
	}

	if v.unsubmit.Phase == PhaseConfirmationOpen {
		v.unsubmit = idle()
	}
	v.stopReloadLocked()
	listType := v.listType
	gen := v.beginLoadLocked()
	if scheduled {
		v.scheduledGen = gen
	}
	v.mu.Unlock()

	v.load(ctx, gen, listType)
	return nil
}

// OpenUnsubmit opens the confirmation dialog for a submitted assignment.
func (v *View) OpenUnsubmit(assignmentID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return ErrClosed
	}
	if v.listType != apiclient.Submitted {
		return fmt.Errorf("%w: unsubmit is only offered on the submitted list", ErrInvalidTransition)
	}
	if v.unsubmit.Phase != PhaseIdle {
		return fmt.Errorf("%w: %s", ErrInvalidTransition, v.unsubmit.Phase)
	}
	if !v.containsLocked(assignmentID) {
		return ErrUnknownAssignment
	}

	v.unsubmit = confirming(assignmentID)
	return nil
}

// CancelUnsubmit closes the dialog without contacting the server.
func (v *View) CancelUnsubmit() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.unsubmit.Phase != PhaseConfirmationOpen {
		return fmt.Errorf("%w: %s", ErrInvalidTransition, v.unsubmit.Phase)
	}
	v.unsubmit = idle()
	return nil
}

// ConfirmUnsubmit sends the unsubmit request for the targeted assignment. Request
// failures are reported as toasts; the returned error covers invalid transitions only.
func (v *View) ConfirmUnsubmit(ctx context.Context) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrClosed
	}
	if v.unsubmit.Phase != PhaseConfirmationOpen {
		phase := v.unsubmit.Phase
		v.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrInvalidTransition, phase)
	}
	assignmentID := v.unsubmit.AssignmentID
	v.unsubmit = submitting(assignmentID)
	v.mu.Unlock()

	result, err := v.unsubmitter.Unsubmit(ctx, assignmentID)

	var toast Toast
	switch {
	case err != nil:
		v.logger.Error().Err(err).Str("assignment_id", assignmentID).Msg("unsubmit request failed")
		toast = Toast{Kind: ToastError, Message: fmt.Sprintf("Error unsubmitting Assignment. Please try again later. err : %v", err)}
	case !result.Success:
		v.logger.Warn().Str("assignment_id", assignmentID).Str("message", result.Message).Msg("unsubmit rejected")
		toast = Toast{Kind: ToastError, Message: result.Message}
	default:
		v.logger.Info().Str("assignment_id", assignmentID).Msg("assignment unsubmitted")
		toast = Toast{Kind: ToastSuccess, Message: result.Message}
	}

	v.mu.Lock()
	v.unsubmit = idle()
	if err == nil && result.Success && !v.closed {
		v.stopReloadLocked()
		v.reloadSeq++
		seq := v.reloadSeq
		v.reloadTimer = v.scheduler.AfterFunc(v.reloadDelay, func() { v.reloadFromTimer(seq) })
	}
	v.mu.Unlock()

	v.notifier.Notify(toast)
	return nil
}

// Close cancels a pending reload. The view rejects further changes.
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.closed = true
	v.stopReloadLocked()
}

// Snapshot is the render model of a view at one instant.
type Snapshot struct {
	ListType      apiclient.ListType
	Loading       bool
	EmptyMessage  string
	Cards         []Card
	Unsubmit      UnsubmitState
	ReloadPending bool
}

// ModalOpen reports whether the confirmation dialog is shown.
func (s Snapshot) ModalOpen() bool {
	return s.Unsubmit.ModalOpen()
}

// Snapshot builds the current render model.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	snapshot := Snapshot{
		ListType:      v.listType,
		Loading:       v.assignments == nil,
		Unsubmit:      v.unsubmit,
		ReloadPending: v.reloadTimer != nil || v.scheduledReloadLoadingLocked(),
	}
	if snapshot.Loading {
		return snapshot
	}
	if len(v.assignments) == 0 {
		snapshot.EmptyMessage = fmt.Sprintf("No %s Assignments", v.listType)
		return snapshot
	}

	now := v.now()
	snapshot.Cards = make([]Card, 0, len(v.assignments))
	for _, assignment := range v.assignments {
		snapshot.Cards = append(snapshot.Cards, v.buildCard(assignment, now))
	}
	return snapshot
}

func (v *View) beginLoadLocked() uint64 {
	v.generation++
	v.assignments = nil
	return v.generation
}

func (v *View) load(ctx context.Context, gen uint64, listType apiclient.ListType) {
	assignments, err := v.fetcher.FetchAssignments(ctx, listType)
	label := strings.ToLower(string(listType))

	v.mu.Lock()
	if gen != v.generation || v.closed {
		v.mu.Unlock()
		observability.AssignmentViewFetches().WithLabelValues(label, "discarded").Inc()
		v.logger.Debug().Str("list_type", label).Uint64("generation", gen).Msg("discarding superseded assignment response")
		return
	}
	if err != nil {
		v.mu.Unlock()
		observability.AssignmentViewFetches().WithLabelValues(label, "error").Inc()
		v.logger.Error().Err(err).Str("list_type", label).Msg("failed to fetch assignments")
		v.notifier.Notify(Toast{
			Kind:    ToastError,
			Message: fmt.Sprintf("Error fetching %s Assignments. Please try again later", listType),
		})
		return
	}

	if assignments == nil {
		assignments = []apiclient.Assignment{}
	}
	v.assignments = assignments
	v.mu.Unlock()

	observability.AssignmentViewFetches().WithLabelValues(label, "ok").Inc()
}

func (v *View) reloadFromTimer(seq uint64) {
	v.mu.Lock()
	if v.closed || v.reloadTimer == nil || seq != v.reloadSeq {
		v.mu.Unlock()
		return
	}
	v.reloadTimer = nil
	v.mu.Unlock()

	if err := v.reload(context.Background(), true); err != nil {
		v.logger.Debug().Err(err).Msg("scheduled reload skipped")
	}
}

// scheduledReloadLoadingLocked reports whether the delayed reload's own fetch is still outstanding.
func (v *View) scheduledReloadLoadingLocked() bool {
	return v.scheduledGen != 0 && v.scheduledGen == v.generation && v.assignments == nil
}

func (v *View) stopReloadLocked() {
	if v.reloadTimer != nil {
		v.reloadTimer.Stop()
		v.reloadTimer = nil
	}
}

func (v *View) containsLocked(assignmentID string) bool {
	for _, assignment := range v.assignments {
		if assignment.ID == assignmentID {
			return true
		}
	}
	return false
}
