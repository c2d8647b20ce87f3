package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"planner-bff/models"
	"planner-bff/services"
	"planner-bff/utils/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/robfig/cron"
	"golang.org/x/sync/errgroup"
)

const (
	defaultSweepTimeout = 30 * time.Second
	sweepConcurrency    = 4
)

var sweptSessions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "planner_swept_sessions_total",
	Help: "Sessions dropped by the sweeper, by reason.",
}, []string{"reason"})

// SweepResult summarizes one sweep
type SweepResult struct {
	Checked     int
	Anonymous   int
	Expired     int
	Unreachable int
	StillActive int
}

// SessionSweeper periodically revalidates live sessions with the backend and drops
// anonymous sessions and sessions the backend no longer accepts
type SessionSweeper struct {
	manager  services.SessionManagerInterface
	logger   logger.Logger
	cron     *cron.Cron
	schedule string
	timeout  time.Duration

	mu      sync.Mutex
	running bool
}

// NewSessionSweeper validates the schedule and builds the sweeper
func NewSessionSweeper(cfg *models.Config, manager services.SessionManagerInterface, log logger.Logger) (*SessionSweeper, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if manager == nil {
		return nil, fmt.Errorf("session manager cannot be nil")
	}

	schedule := cfg.SweeperSchedule
	if schedule == "" {
		schedule = scheduleForEnvironment(cfg.AppEnv)
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(schedule); err != nil {
		return nil, fmt.Errorf("invalid sweeper schedule '%s': %w", schedule, err)
	}

	timeout := cfg.BackendTimeout * 3
	if timeout <= 0 {
		timeout = defaultSweepTimeout
	}

	return &SessionSweeper{
		manager:  manager,
		logger:   log,
		cron:     cron.New(),
		schedule: schedule,
		timeout:  timeout,
	}, nil
}

// Start schedules the sweep
func (s *SessionSweeper) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("sweeper is already running")
	}
	if err := s.cron.AddFunc(s.schedule, s.runScheduled); err != nil {
		return fmt.Errorf("failed to add sweep job: %w", err)
	}
	s.cron.Start()
	s.running = true

	s.logger.Infof("Session sweeper started with schedule: %s", s.schedule)
	return nil
}

// Stop halts the schedule; a sweep in progress finishes on its own
func (s *SessionSweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.cron.Stop()
	s.running = false
	s.logger.Info("Session sweeper stopped")
}

func (s *SessionSweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *SessionSweeper) runScheduled() {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorf("Session sweep panicked: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	result := s.Sweep(ctx)
	s.logger.WithFields(map[string]interface{}{
		"checked":      result.Checked,
		"anonymous":    result.Anonymous,
		"expired":      result.Expired,
		"unreachable":  result.Unreachable,
		"still_active": result.StillActive,
	}).Debug("Session sweep finished")
}

// Sweep checks every live session once
func (s *SessionSweeper) Sweep(ctx context.Context) SweepResult {
	sessions := s.manager.Sessions()

	var (
		mu     sync.Mutex
		result = SweepResult{Checked: len(sessions)}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sweepConcurrency)
	for _, session := range sessions {
		session := session
		g.Go(func() error {
			if !session.Auth.IsAuthenticated() {
				s.manager.Remove(session.ID)
				sweptSessions.WithLabelValues("anonymous").Inc()
				mu.Lock()
				result.Anonymous++
				mu.Unlock()
				return nil
			}

			valid, err := session.Auth.VerifyAuthStatus(gctx)
			if err != nil {
				// transient backend failure; the next sweep checks again
				s.logger.Debugf("Auth status unavailable for session %s: %v", session.ID, err)
				mu.Lock()
				result.Unreachable++
				mu.Unlock()
				return nil
			}
			if !valid {
				s.manager.Remove(session.ID)
				sweptSessions.WithLabelValues("expired").Inc()
				mu.Lock()
				result.Expired++
				mu.Unlock()
				return nil
			}

			mu.Lock()
			result.StillActive++
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return result
}

// scheduleForEnvironment returns environment-specific sweep schedules
func scheduleForEnvironment(env string) string {
	switch env {
	case "development":
		return "0 */1 * * * *"
	case "production":
		return "0 */10 * * * *"
	default:
		return "0 */5 * * * *"
	}
}
