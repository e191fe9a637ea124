package service

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/and161185/supp-tracker/internal/clock"
	"github.com/and161185/supp-tracker/internal/errs"
	"github.com/and161185/supp-tracker/internal/metrics"
	"github.com/and161185/supp-tracker/internal/model"
	"github.com/and161185/supp-tracker/internal/repository"
)

// MaxRangeDays caps the inclusive span of a bulk apply.
const MaxRangeDays = 90

// TemplateService manages the daily template and materializes it into days.
type TemplateService interface {
	// Save stores supps as the template, keeping only name, dosage and time category.
	Save(ctx context.Context, userID uuid.UUID, supps []model.Supplement) error
	// SaveFromDay stores the supplements of date as the template.
	SaveFromDay(ctx context.Context, userID uuid.UUID, date civil.Date) (*model.Template, error)
	// Get returns the template or errs.ErrNotFound.
	Get(ctx context.Context, userID uuid.UUID) (*model.Template, error)
	// Delete removes the template.
	Delete(ctx context.Context, userID uuid.UUID) error
	// ApplyToDate replaces date's supplements with fresh instances of the template.
	ApplyToDate(ctx context.Context, userID uuid.UUID, date civil.Date) error
	// ApplyRange applies the template to every date in [start, end].
	ApplyRange(ctx context.Context, userID uuid.UUID, start, end civil.Date) (RangeResult, error)
}

// RangeResult tallies a bulk apply.
type RangeResult struct {
	SuccessCount int
	ErrorCount   int
	// Attempted lists every enumerated date in ascending order.
	Attempted []civil.Date
	// Failed lists the dates whose write failed, ascending.
	Failed []civil.Date
}

// Partial reports whether at least one date failed.
func (r RangeResult) Partial() bool { return r.ErrorCount > 0 }

// OutsideWindow reports whether a successfully applied date lies outside [from, to],
// i.e. whether the caller should offer to navigate to the applied range.
func (r RangeResult) OutsideWindow(from, to civil.Date) bool {
	failed := make(map[civil.Date]struct{}, len(r.Failed))
	for _, d := range r.Failed {
		failed[d] = struct{}{}
	}
	for _, d := range r.Attempted {
		if _, ok := failed[d]; ok {
			continue
		}
		if d.Before(from) || d.After(to) {
			return true
		}
	}
	return false
}

// TemplateOptions tunes the applier.
type TemplateOptions struct {
	// Workers bounds concurrent writes in ApplyRange; 1 or less applies sequentially.
	Workers int
	Metrics *metrics.Metrics
}

type TemplateServiceImpl struct {
	days      repository.DayRepository
	templates repository.TemplateRepository
	clk       clock.Clock
	log       *zap.Logger
	workers   int
	metrics   *metrics.Metrics
}

// NewTemplateService constructs the template applier.
func NewTemplateService(days repository.DayRepository, templates repository.TemplateRepository, clk clock.Clock, log *zap.Logger, opts TemplateOptions) *TemplateServiceImpl {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &TemplateServiceImpl{
		days:      days,
		templates: templates,
		clk:       clk,
		log:       log,
		workers:   opts.Workers,
		metrics:   opts.Metrics,
	}
}

// Save overwrites the template with the instance-free shape of supps.
func (s *TemplateServiceImpl) Save(ctx context.Context, userID uuid.UUID, supps []model.Supplement) error {
	if userID == uuid.Nil {
		return fmt.Errorf("%w: empty userID", errs.ErrValidation)
	}
	for i, sp := range supps {
		if !sp.TimeCategory.Valid() {
			return fmt.Errorf("%w: supplement[%d] %q: unknown time category %q", errs.ErrValidation, i, sp.Name, sp.TimeCategory)
		}
	}
	if err := s.templates.Save(ctx, userID, model.EntriesFrom(supps)); err != nil {
		s.log.Error("save template", zap.Stringer("user", userID), zap.Error(err))
		return err
	}
	return nil
}

// SaveFromDay reads date and saves its supplements as the template.
func (s *TemplateServiceImpl) SaveFromDay(ctx context.Context, userID uuid.UUID, date civil.Date) (*model.Template, error) {
	day, err := s.days.Get(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if err := s.Save(ctx, userID, day.Supplements); err != nil {
		return nil, err
	}
	return &model.Template{UserID: userID, Entries: model.EntriesFrom(day.Supplements), UpdatedAt: s.clk.Now()}, nil
}

// Get returns the stored template.
func (s *TemplateServiceImpl) Get(ctx context.Context, userID uuid.UUID) (*model.Template, error) {
	return s.templates.Get(ctx, userID)
}

// Delete removes the stored template.
func (s *TemplateServiceImpl) Delete(ctx context.Context, userID uuid.UUID) error {
	return s.templates.Delete(ctx, userID)
}

// loadTemplate returns the entries to apply, mapping absent or empty templates to errs.ErrNoTemplate.
func (s *TemplateServiceImpl) loadTemplate(ctx context.Context, userID uuid.UUID) ([]model.TemplateEntry, error) {
	tpl, err := s.templates.Get(ctx, userID)
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return nil, errs.ErrNoTemplate
	case err != nil:
		return nil, err
	case len(tpl.Entries) == 0:
		return nil, errs.ErrNoTemplate
	}
	return tpl.Entries, nil
}

// Instantiate mints fresh supplements from template entries.
func Instantiate(entries []model.TemplateEntry, clk clock.Clock) ([]model.Supplement, error) {
	now := clk.Now()
	out := make([]model.Supplement, 0, len(entries))
	for _, e := range entries {
		id, err := uuid.NewV4()
		if err != nil {
			return nil, err
		}
		out = append(out, model.Supplement{
			ID:           id,
			Name:         e.Name,
			Dosage:       e.Dosage,
			TimeCategory: e.TimeCategory,
			TakenAt:      now,
			Completed:    false,
		})
	}
	return out, nil
}

// ApplyToDate overwrites date with fresh instances of the template.
func (s *TemplateServiceImpl) ApplyToDate(ctx context.Context, userID uuid.UUID, date civil.Date) error {
	entries, err := s.loadTemplate(ctx, userID)
	if err != nil {
		if !errors.Is(err, errs.ErrNoTemplate) {
			s.log.Error("load template", zap.Stringer("user", userID), zap.Error(err))
		}
		return err
	}
	return s.apply(ctx, userID, date, entries)
}

func (s *TemplateServiceImpl) apply(ctx context.Context, userID uuid.UUID, date civil.Date, entries []model.TemplateEntry) error {
	supps, err := Instantiate(entries, s.clk)
	if err == nil {
		err = s.days.Put(ctx, userID, date, supps)
	}
	if err != nil {
		s.metrics.Apply(metrics.ResultError)
		s.log.Error("apply template",
			zap.Stringer("user", userID),
			zap.String("date", date.String()),
			zap.Error(err),
		)
		return fmt.Errorf("apply template to %s: %w", date, err)
	}
	s.metrics.Apply(metrics.ResultSuccess)
	return nil
}

// ValidateRange checks order and span of an inclusive date range.
func ValidateRange(start, end civil.Date) error {
	if !start.IsValid() || !end.IsValid() {
		return fmt.Errorf("%w: invalid date", errs.ErrValidation)
	}
	if end.Before(start) {
		return errs.ErrInvalidRange
	}
	if span := end.DaysSince(start) + 1; span > MaxRangeDays {
		return fmt.Errorf("%w: %d days, at most %d allowed", errs.ErrRangeTooLarge, span, MaxRangeDays)
	}
	return nil
}

// EnumerateDates lists every date in [start, end] ascending.
func EnumerateDates(start, end civil.Date) []civil.Date {
	if end.Before(start) {
		return nil
	}
	out := make([]civil.Date, 0, end.DaysSince(start)+1)
	for d := start; !d.After(end); d = d.AddDays(1) {
		out = append(out, d)
	}
	return out
}

// ApplyRange validates the range before any I/O, then attempts every date even after failures.
func (s *TemplateServiceImpl) ApplyRange(ctx context.Context, userID uuid.UUID, start, end civil.Date) (RangeResult, error) {
	if err := ValidateRange(start, end); err != nil {
		return RangeResult{}, err
	}
	entries, err := s.loadTemplate(ctx, userID)
	if err != nil {
		return RangeResult{}, err
	}

	dates := EnumerateDates(start, end)
	results := make([]error, len(dates))
	if s.workers <= 1 {
		for i, d := range dates {
			results[i] = s.apply(ctx, userID, d, entries)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(s.workers)
		for i, d := range dates {
			g.Go(func() error {
				results[i] = s.apply(ctx, userID, d, entries)
				return nil
			})
		}
		_ = g.Wait()
	}

	res := RangeResult{Attempted: dates}
	for i, err := range results {
		if err != nil {
			res.ErrorCount++
			res.Failed = append(res.Failed, dates[i])
			continue
		}
		res.SuccessCount++
	}
	s.log.Info("apply template range",
		zap.Stringer("user", userID),
		zap.String("start", start.String()),
		zap.String("end", end.String()),
		zap.Int("success", res.SuccessCount),
		zap.Int("errors", res.ErrorCount),
	)
	return res, nil
}
