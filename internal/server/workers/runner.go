// Package workers runs the periodic uptime probes.
package workers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/uptimekeeper/internal/common"
	"github.com/dmitrijs2005/uptimekeeper/internal/logging"
	"github.com/dmitrijs2005/uptimekeeper/internal/server/config"
	"github.com/dmitrijs2005/uptimekeeper/internal/server/models"
	"github.com/dmitrijs2005/uptimekeeper/internal/server/repositories/checks"
	"github.com/dmitrijs2005/uptimekeeper/internal/server/repositories/repomanager"
	"github.com/robfig/cron/v3"
	"github.com/sourcegraph/conc/pool"
)

// drainLimit caps how much of a probe response body is read before closing.
const drainLimit = 64 << 10

// Runner probes every stored check on a fixed interval and records
// state transitions.
type Runner struct {
	checks   checks.Repository
	client   *http.Client
	interval time.Duration
	workers  int
	logger   logging.Logger
	now      func() time.Time
}

func NewRunner(m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *Runner {
	workers := cfg.ProbeWorkers
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		checks: m.Checks(),
		client: &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		interval: cfg.CheckInterval,
		workers:  workers,
		logger:   logger.With("module", "check_runner"),
		now:      time.Now,
	}
}

// Run performs one pass immediately, then one per interval until ctx is
// cancelled. A pass still running when the next is due makes that tick skip.
func (r *Runner) Run(ctx context.Context) error {
	if r.interval < time.Second {
		return fmt.Errorf("check interval %s is below one second", r.interval)
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc("@every "+r.interval.String(), func() { r.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("schedule checks: %w", err)
	}

	r.logger.Info(ctx, "Starting check runner", "interval", r.interval.String(), "workers", r.workers)
	r.RunOnce(ctx)
	c.Start()

	<-ctx.Done()
	r.logger.Info(ctx, "Stopping check runner...")
	<-c.Stop().Done()
	return nil
}

// RunOnce probes every well-formed check once and waits for all probes.
func (r *Runner) RunOnce(ctx context.Context) {
	ids, err := r.checks.List(ctx)
	if err != nil {
		r.logger.Error(ctx, "could not list checks", "error", err)
		return
	}

	p := pool.New().WithMaxGoroutines(r.workers)
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		check, err := r.checks.Get(ctx, id)
		if err != nil {
			r.logger.Warn(ctx, "skipping unreadable check", "check_id", id, "error", err)
			continue
		}
		if err := check.Validate(); err != nil {
			r.logger.Warn(ctx, "skipping malformed check", "check_id", id, "error", err)
			continue
		}
		p.Go(func() { r.process(ctx, check) })
	}
	p.Wait()
}

func (r *Runner) process(ctx context.Context, probed *models.Check) {
	state := r.probe(ctx, probed)
	checkedAt := r.now().UnixMilli()

	// A probe cut short by shutdown says nothing about the target.
	if ctx.Err() != nil {
		r.logger.Debug(context.WithoutCancel(ctx), "probe abandoned on shutdown", "check_id", probed.ID)
		return
	}

	// The record may have been edited or deleted while the probe was in flight.
	current, err := r.checks.Get(ctx, probed.ID)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			r.logger.Warn(ctx, "could not reload check", "check_id", probed.ID, "error", err)
		}
		return
	}

	previous := current.State
	firstProbe := current.LastChecked == 0
	if state == previous && !firstProbe {
		return
	}

	current.State = state
	current.LastChecked = checkedAt
	if err := r.checks.Update(ctx, current); err != nil {
		r.logger.Error(ctx, "could not record check state", "check_id", current.ID, "error", err)
		return
	}

	if !firstProbe && previous != "" {
		r.logger.Warn(ctx, "check state changed",
			"check_id", current.ID,
			"user_phone", current.UserPhone,
			"method", strings.ToUpper(current.Method),
			"url", current.Protocol+"://"+current.URL,
			"from", previous,
			"to", state,
		)
	}
}

// probe issues the request and classifies the response. Any transport
// failure, including the timeout, counts as down.
func (r *Runner) probe(ctx context.Context, c *models.Check) string {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.TimeoutSeconds)*time.Second)
	defer cancel()

	target := c.Protocol + "://" + c.URL
	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(c.Method), target, nil)
	if err != nil {
		r.logger.Debug(ctx, "bad probe target", "check_id", c.ID, "url", target, "error", err)
		return models.CheckStateDown
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Debug(ctx, "probe failed", "check_id", c.ID, "url", target, "error", err)
		return models.CheckStateDown
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, drainLimit))

	if c.Accepts(resp.StatusCode) {
		return models.CheckStateUp
	}
	return models.CheckStateDown
}
