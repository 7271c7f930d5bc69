package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CronOff as a cron spec disables periodic re-scans.
const CronOff = "off"

// ScanRunner runs one scan pass over all users.
type ScanRunner interface {
	RunScanPass(ctx context.Context, now time.Time) error
}

// ScanScheduler runs an initial scan once the settle delay has elapsed and then, unless
// disabled, re-scans on a cron schedule. A tick that fires while a pass is still
// running is skipped.
type ScanScheduler struct {
	cronEngine  *cron.Cron
	runner      ScanRunner
	logger      *logrus.Entry
	cronSpec    string
	settleDelay time.Duration
	timeout     time.Duration
	now         func() time.Time

	mu      sync.Mutex
	initial *time.Timer
	running sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewScanScheduler(runner ScanRunner, logger *logrus.Entry, cronSpec string, settleDelay, timeout time.Duration) *ScanScheduler {
	logger = logger.WithField("component", "scheduler")
	ctx, cancel := context.WithCancel(context.Background())
	return &ScanScheduler{
		cronEngine: cron.New(cron.WithChain(
			cron.Recover(cron.VerbosePrintfLogger(logger)),
			cron.SkipIfStillRunning(cron.VerbosePrintfLogger(logger)),
		)),
		runner:      runner,
		logger:      logger,
		cronSpec:    strings.TrimSpace(cronSpec),
		settleDelay: settleDelay,
		timeout:     timeout,
		now:         time.Now,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Periodic reports whether a cron re-scan is configured.
func (s *ScanScheduler) Periodic() bool {
	return s.cronSpec != "" && !strings.EqualFold(s.cronSpec, CronOff)
}

func (s *ScanScheduler) Start() error {
	s.logger.Info("Starting scan scheduler...")

	if s.Periodic() {
		if _, err := s.cronEngine.AddFunc(s.cronSpec, func() { s.runPass("periodic") }); err != nil {
			return fmt.Errorf("could not add scan cron job %q: %w", s.cronSpec, err)
		}
	}

	s.mu.Lock()
	s.running.Add(1)
	s.initial = time.AfterFunc(s.settleDelay, func() {
		defer s.running.Done()
		s.runPass("initial")
	})
	s.mu.Unlock()

	s.cronEngine.Start()
	s.logger.WithFields(logrus.Fields{
		"cron_spec":    s.cronSpec,
		"settle_delay": s.settleDelay,
		"periodic":     s.Periodic(),
	}).Info("Scan scheduler started.")
	return nil
}

func (s *ScanScheduler) runPass(trigger string) {
	if s.ctx.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	log := s.logger.WithField("trigger", trigger)
	log.Debug("Scan pass triggered")
	if err := s.runner.RunScanPass(ctx, s.now()); err != nil {
		log.WithError(err).Error("Error during scan pass")
	}
}

// Stop cancels the pending initial scan, aborts running passes and waits for them.
func (s *ScanScheduler) Stop() {
	s.logger.Info("Stopping scan scheduler...")
	s.cancel()

	s.mu.Lock()
	if s.initial != nil && s.initial.Stop() {
		s.running.Done()
	}
	s.mu.Unlock()

	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.running.Wait()
	s.logger.Info("Scan scheduler gracefully stopped.")
}
