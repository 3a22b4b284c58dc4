package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"amazonpay/internal/mws"
	"amazonpay/internal/pkg/metrics"
)

const (
	statusPath  = "GetServiceStatusResponse/GetServiceStatusResult"
	probeBudget = 2 * time.Minute
)

// StatusChecker is implemented by *payment.Client.
type StatusChecker interface {
	GetServiceStatus(ctx context.Context) (*mws.Response, error)
}

// Scheduler manages periodic jobs.
type Scheduler struct {
	cron    *cron.Cron
	spec    string
	checker StatusChecker
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// New creates a new cron scheduler. spec uses six fields, seconds first.
func New(spec string, checker StatusChecker, m *metrics.Metrics, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		spec:    spec,
		checker: checker,
		metrics: m,
		logger:  logger,
	}
}

// Start registers and starts all cron jobs. An empty spec disables the
// service status probe.
func (s *Scheduler) Start() error {
	s.logger.Info("Starting cron scheduler...")

	if s.spec != "" {
		_, err := s.cron.AddFunc(s.spec, func() {
			s.logger.Debug("Running: service status probe")
			ctx, cancel := context.WithTimeout(context.Background(), probeBudget)
			defer cancel()
			_, _ = s.ProbeStatus(ctx)
		})
		if err != nil {
			return fmt.Errorf("invalid status probe schedule %q: %w", s.spec, err)
		}
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler; the returned context is done when running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// ProbeStatus calls GetServiceStatus and records the reported status.
func (s *Scheduler) ProbeStatus(ctx context.Context) (string, error) {
	resp, err := s.checker.GetServiceStatus(ctx)
	if err != nil {
		s.logger.Warn("Service status probe failed", zap.Error(err))
		s.metrics.SetServiceStatus("UNREACHABLE")
		return "", err
	}
	if !resp.Success() {
		s.logger.Warn("Service status probe rejected", zap.Int("status_code", resp.StatusCode()))
		s.metrics.SetServiceStatus("UNREACHABLE")
		return "", fmt.Errorf("GetServiceStatus returned HTTP %d", resp.StatusCode())
	}

	status, err := resp.GetElement(statusPath, "Status")
	if err != nil {
		s.logger.Warn("Service status missing from response", zap.Error(err))
		return "", err
	}

	s.metrics.SetServiceStatus(status)
	s.logger.Info("Service status", zap.String("status", status))
	return status, nil
}
