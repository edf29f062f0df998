// Package meetings is the quickmatch coordinator: it owns the meeting
// registry, the membership ledger, the chat roster and the evaluation gate,
// and sequences them for every use case.
//
// NOTE:
//   - Every mutation of an existing meeting holds the meeting's in-process
//     lock and runs in one backend transaction that starts with LockMeeting.
//   - Methods return *Error only; KindOf classifies anything else.
package meetings

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/quickmatch/internal/app/store/storage"
	"github.com/dalemusser/quickmatch/internal/app/system/auditlog"
	"github.com/dalemusser/quickmatch/internal/app/system/keylock"
	"github.com/dalemusser/quickmatch/internal/app/system/metrics"
	"github.com/dalemusser/quickmatch/internal/app/system/timeouts"
	"github.com/dalemusser/quickmatch/internal/domain/models"
	"go.uber.org/zap"
)

// EvaluationAward is added to the evaluated member's activity points.
const EvaluationAward = 3

// Identity is the authenticated caller. The coordinator never issues
// identities; it only consumes them.
type Identity struct {
	UserID string
	Name   string
}

func (id Identity) authenticated() bool {
	return strings.TrimSpace(id.UserID) != ""
}

// Coordinator sequences the meeting components for each use case.
type Coordinator struct {
	store    storage.Store
	locks    *keylock.Registry
	log      *zap.Logger
	now      func() time.Time
	lockWait time.Duration
	metrics  *metrics.Metrics
	audit    *auditlog.Logger
}

// Option customizes a Coordinator.
type Option func(*Coordinator)

// WithClock overrides the time source used for new records.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// WithLockWait bounds how long a mutation queues behind others on the same
// meeting before failing as Transient.
func WithLockWait(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.lockWait = d
		}
	}
}

// WithMetrics records operation outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Coordinator) { c.metrics = m }
}

// WithAuditLog emits audit events for create, delete, status and evaluate.
func WithAuditLog(a *auditlog.Logger) Option {
	return func(c *Coordinator) { c.audit = a }
}

// New returns a Coordinator over store. A nil locks registry gets a
// private one; a nil logger discards output.
func New(store storage.Store, locks *keylock.Registry, logger *zap.Logger, opts ...Option) *Coordinator {
	if locks == nil {
		locks = keylock.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Coordinator{
		store:    store,
		locks:    locks,
		log:      logger,
		now:      time.Now,
		lockWait: timeouts.LockWait(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// onMeeting runs fn with meetingID locked in process and in the backend.
// A missing meeting becomes NotFound before fn is called.
func (c *Coordinator) onMeeting(ctx context.Context, meetingID string, fn func(ctx context.Context, tx storage.Tx, m models.Meeting) error) error {
	start := time.Now()
	lockCtx, cancel := context.WithTimeout(ctx, c.lockWait)
	unlock, err := c.locks.Lock(lockCtx, meetingID)
	cancel()
	c.metrics.ObserveLockWait(time.Since(start))
	if err != nil {
		return newError(KindTransient, "meeting is busy, retry later", err)
	}
	defer unlock()

	return c.store.WithTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		m, err := tx.LockMeeting(ctx, meetingID)
		if errors.Is(err, storage.ErrNotFound) {
			return meetingNotFound(meetingID)
		}
		if err != nil {
			return err
		}
		return fn(ctx, tx, m)
	})
}

// getMeeting is the read-only lookup used outside transactions.
func (c *Coordinator) getMeeting(ctx context.Context, id string) (models.Meeting, error) {
	m, err := c.store.GetMeeting(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Meeting{}, meetingNotFound(id)
	}
	return m, err
}

// finish converts err into an *Error, logs unexpected failures and counts
// the outcome. It returns nil for a nil err.
func (c *Coordinator) finish(op string, err error) error {
	if err == nil {
		c.metrics.ObserveOperation(op, "ok")
		return nil
	}

	var e *Error
	if !errors.As(err, &e) {
		if isTransient(err) {
			e = newError(KindTransient, "temporarily unavailable, retry later", err)
		} else {
			e = newError(KindInternal, "internal error", err)
		}
	}

	switch e.Kind {
	case KindInternal:
		c.log.Error("meeting operation failed", zap.String("operation", op), zap.Error(err))
	case KindTransient:
		c.log.Warn("meeting operation contended", zap.String("operation", op), zap.Error(err))
	default:
		c.log.Debug("meeting operation rejected", zap.String("operation", op),
			zap.String("kind", e.Kind.String()), zap.String("reason", e.Message))
	}
	c.metrics.ObserveOperation(op, e.Kind.String())
	return e
}

func requireIdentity(who Identity) error {
	if !who.authenticated() {
		return newError(KindUnauthenticated, "authentication required", nil)
	}
	return nil
}
