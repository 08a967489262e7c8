package pubfeed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// RebuildScheduler rewrites every artifact into a directory on a fixed
// interval, so scheduled posts go live on static hosting without a manual
// build.
type RebuildScheduler struct {
	scheduler gocron.Scheduler
	gen       *Generator
	dir       string
	logger    *slog.Logger
}

// NewRebuildScheduler creates a scheduler that runs gen.WriteAll(dir) once at
// start and then every interval.
func NewRebuildScheduler(gen *Generator, dir string, interval time.Duration) (*RebuildScheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("rebuild interval must be positive, got %s", interval)
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	rs := &RebuildScheduler{scheduler: s, gen: gen, dir: dir, logger: gen.logger}
	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(rs.rebuild),
		gocron.WithName("artifact-rebuild"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to create rebuild job: %w", err)
	}
	return rs, nil
}

// Start begins running the rebuild job.
func (s *RebuildScheduler) Start() {
	s.logger.Info("Starting rebuild scheduler", slog.String(KeyPath, s.dir))
	s.scheduler.Start()
}

// Stop waits for a running rebuild to finish and shuts the scheduler down.
func (s *RebuildScheduler) Stop() error {
	s.logger.Info("Stopping rebuild scheduler")
	return s.scheduler.Shutdown()
}

func (s *RebuildScheduler) rebuild() {
	start := time.Now()
	if err := s.gen.WriteAll(context.Background(), s.dir); err != nil {
		s.logger.Error("Scheduled rebuild failed", slog.String(KeyPath, s.dir), logError(err))
		return
	}
	s.logger.Info("Scheduled rebuild finished",
		slog.String(KeyPath, s.dir),
		logDurationMS(float64(time.Since(start).Microseconds())/1000))
}
