package replication

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

// Service runs the batch entry points on a fixed interval. Batches are
// strictly sequential: one kind at a time, one document at a time, so a
// crash mid-run leaves already-processed documents correctly marked.
type Service struct {
	orch     *Orchestrator
	interval time.Duration
	stop     chan struct{}
}

// NewService creates the background scheduler around an orchestrator.
func NewService(orch *Orchestrator, interval time.Duration) *Service {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &Service{
		orch:     orch,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Start begins the background replication loop.
func (s *Service) Start() {
	if !s.orch.remoteCfg.IsBranch() {
		logrus.Info("replication disabled: deployment is not a Branch Database")
		return
	}
	if !s.orch.remoteCfg.Complete() {
		logrus.Warn("replication disabled: remote server settings are incomplete")
		return
	}

	go func() {
		logrus.Infof("replication service started, interval %s", s.interval)
		s.runAll()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runAll()
			case <-s.stop:
				logrus.Info("replication service stopped")
				return
			}
		}
	}()
}

// Stop halts the service.
func (s *Service) Stop() {
	close(s.stop)
}

func (s *Service) runAll() {
	for _, kind := range AllKinds {
		if _, err := s.orch.RunBatch(kind); err != nil {
			var authErr *AuthError
			if errors.As(err, &authErr) || errors.Is(err, ErrIncompleteConfig) {
				// Setup-level failure: no later kind can succeed either.
				logrus.Errorf("replication run aborted: %v", err)
				return
			}
			logrus.Errorf("%s sync failed: %v", kind, err)
		}
	}
}
