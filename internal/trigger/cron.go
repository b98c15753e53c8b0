// Package trigger schedules recurring aggregation runs.
package trigger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/orbitwire-hq/orbitwire-aggregator/internal/domain"
	"github.com/orbitwire-hq/orbitwire-aggregator/internal/logger"
	"github.com/orbitwire-hq/orbitwire-aggregator/internal/scheduler"
)

// Runner starts one aggregation pass.
type Runner interface {
	RunAggregation(ctx context.Context) (*domain.AggregationLog, error)
}

// Cron fires a Runner on a cron schedule in a fixed timezone. Errors
// from a run are logged and swallowed so a bad day never kills the
// schedule.
type Cron struct {
	runner Runner
	cron   *cron.Cron
	log    logger.Logger
}

// New builds a trigger for the given cron expression and IANA timezone
// name. An empty timezone means UTC.
func New(runner Runner, schedule, timezone string, log logger.Logger) (*Cron, error) {
	log = logger.Ensure(log)

	loc := time.UTC
	if timezone != "" {
		var err error
		loc, err = time.LoadLocation(timezone)
		if err != nil {
			return nil, fmt.Errorf("loading timezone %q: %w", timezone, err)
		}
	}

	t := &Cron{
		runner: runner,
		cron:   cron.New(cron.WithLocation(loc)),
		log:    log,
	}

	if _, err := t.cron.AddFunc(schedule, t.fire); err != nil {
		return nil, fmt.Errorf("registering schedule %q: %w", schedule, err)
	}
	return t, nil
}

func (t *Cron) fire() {
	t.log.InfoObj("scheduled aggregation fired", "schedule", map[string]any{
		"fired_at": time.Now().UTC(),
	})

	_, err := t.runner.RunAggregation(context.Background())
	switch {
	case err == nil:
	case errors.Is(err, scheduler.ErrAlreadyRunning):
		t.log.WarnObj("scheduled run skipped", "schedule", map[string]any{
			"reason": "previous run still in progress",
		})
	default:
		t.log.ErrorObj("scheduled run failed", "schedule", map[string]any{
			"error": err.Error(),
		})
	}
}

// Start begins firing on schedule. Non-blocking.
func (t *Cron) Start() {
	t.cron.Start()
}

// Stop halts the schedule and waits for an in-flight fire to return.
func (t *Cron) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
}
