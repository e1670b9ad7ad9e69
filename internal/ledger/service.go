// Package ledger keeps wallet balances, family pools and the per-member mirror
// consistent across every create, update, delete, link and transfer, and
// records group expenses and their settlement.
//
// Every operation runs as one storage unit of work. Balance rows carry a
// version and are written with compare-and-swap; a version conflict restarts
// the whole unit. Notifications go out only after commit and never fail the
// operation.
package ledger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mmynk/splitledger/internal/apperr"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/notify"
	"github.com/mmynk/splitledger/internal/storage"
)

const defaultMaxAttempts = 3

// Actor is the authenticated principal performing an operation.
type Actor struct {
	UserID string
	Email  string
}

// Service is the balance reconciliation service.
type Service struct {
	store       storage.Store
	notifier    notify.Notifier
	metrics     *metrics.Metrics
	logger      *slog.Logger
	now         func() time.Time
	maxAttempts int
}

// Option configures a Service.
type Option func(*Service)

// WithNotifier sets the notification sink. Defaults to notify.Nop.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithMetrics sets the metrics collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMaxAttempts bounds how many times a unit of work is tried on version conflicts.
func WithMaxAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// New creates a Service over store.
func New(store storage.Store, opts ...Option) *Service {
	s := &Service{
		store:       store,
		notifier:    notify.Nop{},
		logger:      slog.Default(),
		now:         time.Now,
		maxAttempts: defaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// run executes fn as a unit of work, retrying on version conflicts, then
// publishes the unit's events.
func (s *Service) run(ctx context.Context, op string, fn func(u *unit) error) error {
	var events []notify.Event

	for attempt := 1; ; attempt++ {
		err := s.store.WithTx(ctx, func(l storage.Ledger) error {
			u := newUnit(ctx, l, s.now())
			if err := fn(u); err != nil {
				return err
			}
			if err := u.flush(); err != nil {
				return err
			}
			events = u.events
			return nil
		})

		if errors.Is(err, storage.ErrVersionConflict) {
			if attempt < s.maxAttempts {
				s.metrics.ObserveRetry(op)
				s.logger.DebugContext(ctx, "Retrying after version conflict", "op", op, "attempt", attempt)
				continue
			}
			err = ErrConcurrentUpdate
		}
		if err != nil {
			err = internal(err)
			s.metrics.ObserveOperation(op, apperr.KindOf(err).String())
			if apperr.KindOf(err) == apperr.KindInternal {
				s.logger.ErrorContext(ctx, "Ledger operation failed", "op", op, "error", err)
			}
			return err
		}
		break
	}

	s.metrics.ObserveOperation(op, "ok")
	s.publish(ctx, events)
	return nil
}

// read runs fn against the store without a unit of work.
func (s *Service) read(ctx context.Context, fn func(l storage.Ledger) error) error {
	return internal(fn(s.store))
}

// publish hands events to the notifier. Failures are logged and dropped:
// the ledger change is already committed.
func (s *Service) publish(ctx context.Context, events []notify.Event) {
	if len(events) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, e := range events {
		if err := s.notifier.Notify(ctx, e); err != nil {
			err = apperr.Wrap(apperr.KindDependency, err, "notification not delivered")
			s.metrics.ObserveNotificationFailure(string(e.Type))
			s.logger.WarnContext(ctx, "Failed to publish notification",
				"type", e.Type,
				"subject", e.SubjectID,
				"kind", apperr.KindOf(err),
				"error", err)
		}
	}
}
