// Package rollover detects calendar-day changes for one user and prepares the new day,
// either from the saved template or through the configured fallback policy.
package rollover

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/supp-tracker/internal/clock"
	"github.com/and161185/supp-tracker/internal/errs"
	"github.com/and161185/supp-tracker/internal/metrics"
	"github.com/and161185/supp-tracker/internal/model"
	"github.com/and161185/supp-tracker/internal/repository"
)

// DefaultInterval is the polling period of Run.
const DefaultInterval = time.Minute

// Policy decides how a new day starts when no template applies.
type Policy int

const (
	// FallbackFresh reads the new date from the store; a day never written starts empty.
	FallbackFresh Policy = iota
	// FallbackCarryOver writes the previous in-memory list, unchecked, under the new date.
	FallbackCarryOver
)

func (p Policy) String() string {
	if p == FallbackCarryOver {
		return "carry_over"
	}
	return "fresh"
}

const policyTemplate = "template"

// Applier materializes the template into a date.
type Applier interface {
	ApplyToDate(ctx context.Context, userID uuid.UUID, date civil.Date) error
}

// Snapshot is the detector's view of the current day.
type Snapshot struct {
	Date        civil.Date
	Supplements []model.Supplement
}

// Config wires a Detector.
type Config struct {
	UserID   uuid.UUID
	Days     repository.DayRepository
	Applier  Applier
	Clock    clock.Clock
	Policy   Policy
	Interval time.Duration
	Log      *zap.Logger
	Metrics  *metrics.Metrics
	// OnChange, when set, receives the new snapshot after each transition.
	OnChange func(Snapshot)
}

// Detector owns currentDate and the displayed list for one user.
type Detector struct {
	cfg Config

	mu      sync.Mutex
	current civil.Date
	list    []model.Supplement
}

// New returns a detector whose current date is today.
func New(cfg Config) *Detector {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	return &Detector{cfg: cfg, current: clock.Today(cfg.Clock), list: []model.Supplement{}}
}

// Reload re-reads the current date from the store.
func (d *Detector) Reload(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	day, err := d.cfg.Days.Get(ctx, d.cfg.UserID, d.current)
	if err != nil {
		return err
	}
	d.list = day.Supplements
	return nil
}

// Snapshot returns the current date and a copy of the list.
func (d *Detector) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Snapshot{Date: d.current, Supplements: append([]model.Supplement{}, d.list...)}
}

// Check compares today with the remembered date and runs the transition once per change.
// It reports whether a transition happened.
func (d *Detector) Check(ctx context.Context) (bool, error) {
	d.mu.Lock()
	today := clock.Today(d.cfg.Clock)
	if today == d.current {
		d.mu.Unlock()
		return false, nil
	}
	prevDate, prevList := d.current, d.list
	d.current = today
	err := d.transition(ctx, prevDate, prevList, today)
	snap := Snapshot{Date: d.current, Supplements: append([]model.Supplement{}, d.list...)}
	d.mu.Unlock()

	if d.cfg.OnChange != nil {
		d.cfg.OnChange(snap)
	}
	return true, err
}

// transition runs with d.mu held.
func (d *Detector) transition(ctx context.Context, prevDate civil.Date, prevList []model.Supplement, today civil.Date) error {
	log := d.cfg.Log.With(
		zap.Stringer("user", d.cfg.UserID),
		zap.String("from", prevDate.String()),
		zap.String("to", today.String()),
	)

	err := d.cfg.Applier.ApplyToDate(ctx, d.cfg.UserID, today)
	if err == nil {
		// the template is stored; the fallback must not overwrite it
		d.cfg.Metrics.Rollover(policyTemplate)
		day, rerr := d.cfg.Days.Get(ctx, d.cfg.UserID, today)
		if rerr != nil {
			d.list = []model.Supplement{}
			log.Error("re-read after template apply failed", zap.Error(rerr))
			return fmt.Errorf("read %s after template apply: %w", today, rerr)
		}
		d.list = day.Supplements
		log.Info("day rollover", zap.String("policy", policyTemplate), zap.Int("supplements", len(d.list)))
		return nil
	}
	if !errors.Is(err, errs.ErrNoTemplate) {
		log.Warn("template apply failed, falling back", zap.Error(err))
	}

	policy := d.cfg.Policy
	d.cfg.Metrics.Rollover(policy.String())
	switch policy {
	case FallbackCarryOver:
		reset := model.ResetCompletion(prevList)
		d.list = reset
		if perr := d.cfg.Days.Put(ctx, d.cfg.UserID, today, reset); perr != nil {
			log.Error("persist carried-over day", zap.Error(perr))
			return fmt.Errorf("carry over to %s: %w", today, perr)
		}
	default:
		day, gerr := d.cfg.Days.Get(ctx, d.cfg.UserID, today)
		if gerr != nil {
			d.list = []model.Supplement{}
			log.Error("read new day", zap.Error(gerr))
			return fmt.Errorf("read %s: %w", today, gerr)
		}
		d.list = day.Supplements
	}
	log.Info("day rollover", zap.String("policy", policy.String()), zap.Int("supplements", len(d.list)))
	return nil
}

// Run loads today, checks immediately, then every Interval until ctx is done.
func (d *Detector) Run(ctx context.Context) error {
	if err := d.Reload(ctx); err != nil {
		d.cfg.Log.Warn("initial load failed", zap.Error(err))
	}
	if _, err := d.Check(ctx); err != nil {
		d.cfg.Log.Warn("rollover check failed", zap.Error(err))
	}

	t := time.NewTicker(d.cfg.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if _, err := d.Check(ctx); err != nil {
				d.cfg.Log.Warn("rollover check failed", zap.Error(err))
			}
		}
	}
}
