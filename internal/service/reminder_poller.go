package service

import (
	"context"
	"sync"
	"time"

	"bakerybot/internal/logger"
	"bakerybot/internal/model"
)

// Notifier delivers a due reminder to its requester.
type Notifier interface {
	Notify(ctx context.Context, r model.Reminder) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, r model.Reminder) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, r model.Reminder) error {
	return f(ctx, r)
}

// LogNotifier only logs reminders. It is used when no chat transport is wired.
type LogNotifier struct {
	Log *logger.Logger
}

// Notify logs r.
func (n LogNotifier) Notify(_ context.Context, r model.Reminder) error {
	n.Log.Info("reminder due", "requester_id", r.RequesterID, "reminder_id", r.ID, "when", r.When, "text", r.Text)
	return nil
}

// PollerConfig holds configuration for the reminder poller.
type PollerConfig struct {
	// Interval is how often due reminders are checked.
	// Default: 1 minute
	Interval time.Duration

	// InitialDelay postpones the first check after Start.
	InitialDelay time.Duration
}

// ReminderPoller periodically resolves due reminders and hands them to a
// Notifier. A reminder is marked resolved before it is delivered, so a failed
// delivery is logged but not retried.
type ReminderPoller struct {
	pending  *Pending
	notifier Notifier
	log      *logger.Logger
	config   PollerConfig
	now      func() time.Time

	ticker    *time.Ticker
	stopCh    chan struct{}
	stopOnce  sync.Once
	isRunning bool
	mu        sync.Mutex
}

// NewReminderPoller creates a poller over p.
func NewReminderPoller(p *Pending, n Notifier, log *logger.Logger, config PollerConfig) *ReminderPoller {
	if log == nil {
		log = logger.Nop()
	}
	if n == nil {
		n = LogNotifier{Log: log}
	}
	if config.Interval <= 0 {
		config.Interval = time.Minute
	}
	return &ReminderPoller{
		pending:  p,
		notifier: n,
		log:      log,
		config:   config,
		now:      p.now,
		stopCh:   make(chan struct{}),
	}
}

// Start begins polling. Calling it twice is a no-op.
func (s *ReminderPoller) Start() {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.ticker = time.NewTicker(s.config.Interval)
	s.mu.Unlock()

	s.log.Info("reminder poller started", "interval", s.config.Interval)

	go func() {
		if s.config.InitialDelay > 0 {
			select {
			case <-time.After(s.config.InitialDelay):
			case <-s.stopCh:
				return
			}
		}
		s.poll()
	}()

	go s.run()
}

func (s *ReminderPoller) run() {
	for {
		select {
		case <-s.ticker.C:
			s.poll()
		case <-s.stopCh:
			s.log.Info("reminder poller stopped")
			return
		}
	}
}

func (s *ReminderPoller) poll() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := s.RunNow(ctx); err != nil {
		s.log.Error("reminder poll failed", "error", err)
	}
}

// RunNow resolves every reminder due now and notifies each one. It returns
// the reminders that were resolved.
func (s *ReminderPoller) RunNow(ctx context.Context) ([]model.Reminder, error) {
	due, err := s.pending.MarkDue(ctx, s.now())
	if err != nil {
		return nil, err
	}
	for _, r := range due {
		if err := s.notifier.Notify(ctx, r); err != nil {
			s.log.Warn("reminder delivery failed", "reminder_id", r.ID, "error", err)
		}
	}
	if len(due) > 0 {
		s.log.Debug("reminders resolved", "count", len(due))
	}
	return due, nil
}

// Stop stops the poller.
func (s *ReminderPoller) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.ticker != nil {
			s.ticker.Stop()
		}
		close(s.stopCh)
		s.isRunning = false
	})
}
