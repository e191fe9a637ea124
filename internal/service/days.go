package service

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"

	"github.com/and161185/supp-tracker/internal/clock"
	"github.com/and161185/supp-tracker/internal/errs"
	"github.com/and161185/supp-tracker/internal/model"
	"github.com/and161185/supp-tracker/internal/repository"
)

// DayService manages per-day intake records.
type DayService interface {
	// Get returns the record for date (empty when nothing is stored).
	Get(ctx context.Context, userID uuid.UUID, date civil.Date) (model.DayData, error)
	// Replace overwrites the supplement list of date.
	Replace(ctx context.Context, userID uuid.UUID, date civil.Date, supps []model.Supplement) error
	// AddSupplement appends a manually entered supplement.
	AddSupplement(ctx context.Context, userID uuid.UUID, date civil.Date, name, dosage string, cat model.TimeCategory) (model.Supplement, error)
	// AddFromLibrary appends a supplement built from a library item.
	AddFromLibrary(ctx context.Context, userID uuid.UUID, date civil.Date, itemID string, cat model.TimeCategory) (model.Supplement, error)
	// Toggle flips the completion flag of one supplement.
	Toggle(ctx context.Context, userID uuid.UUID, date civil.Date, id uuid.UUID) (model.Supplement, error)
	// Remove deletes one supplement.
	Remove(ctx context.Context, userID uuid.UUID, date civil.Date, id uuid.UUID) error
	// Window returns one record per date in [from, to], empty where nothing is stored.
	Window(ctx context.Context, userID uuid.UUID, from, to civil.Date) ([]model.DayData, error)
}

type DayServiceImpl struct {
	days    repository.DayRepository
	library LibraryService
	clk     clock.Clock
}

// NewDayService constructs DayService.
func NewDayService(days repository.DayRepository, library LibraryService, clk clock.Clock) *DayServiceImpl {
	return &DayServiceImpl{days: days, library: library, clk: clk}
}

// Get returns the record for date.
func (s *DayServiceImpl) Get(ctx context.Context, userID uuid.UUID, date civil.Date) (model.DayData, error) {
	return s.days.Get(ctx, userID, date)
}

// Replace overwrites date, assigning ids to entries that lack one.
func (s *DayServiceImpl) Replace(ctx context.Context, userID uuid.UUID, date civil.Date, supps []model.Supplement) error {
	out := make([]model.Supplement, len(supps))
	copy(out, supps)
	for i := range out {
		if out[i].ID != uuid.Nil {
			continue
		}
		id, err := uuid.NewV4()
		if err != nil {
			return err
		}
		out[i].ID = id
	}
	return s.days.Put(ctx, userID, date, out)
}

func (s *DayServiceImpl) add(ctx context.Context, userID uuid.UUID, date civil.Date, name, dosage string, cat model.TimeCategory) (model.Supplement, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Supplement{}, fmt.Errorf("%w: supplement name is required", errs.ErrValidation)
	}
	if !cat.Valid() {
		return model.Supplement{}, fmt.Errorf("%w: unknown time category %q", errs.ErrValidation, cat)
	}
	id, err := uuid.NewV4()
	if err != nil {
		return model.Supplement{}, err
	}
	sup := model.Supplement{
		ID:           id,
		Name:         name,
		Dosage:       strings.TrimSpace(dosage),
		TimeCategory: cat,
		TakenAt:      s.clk.Now(),
	}
	day, err := s.days.Get(ctx, userID, date)
	if err != nil {
		return model.Supplement{}, err
	}
	if err := s.days.Put(ctx, userID, date, append(day.Supplements, sup)); err != nil {
		return model.Supplement{}, err
	}
	return sup, nil
}

// AddSupplement appends a manually entered supplement.
func (s *DayServiceImpl) AddSupplement(ctx context.Context, userID uuid.UUID, date civil.Date, name, dosage string, cat model.TimeCategory) (model.Supplement, error) {
	return s.add(ctx, userID, date, name, dosage, cat)
}

// AddFromLibrary copies name and default dosage of a library item into date.
func (s *DayServiceImpl) AddFromLibrary(ctx context.Context, userID uuid.UUID, date civil.Date, itemID string, cat model.TimeCategory) (model.Supplement, error) {
	items, err := s.library.List(ctx, userID)
	if err != nil {
		return model.Supplement{}, err
	}
	for _, it := range items {
		if it.ID == itemID {
			return s.add(ctx, userID, date, it.Name, it.DefaultDosage, cat)
		}
	}
	return model.Supplement{}, fmt.Errorf("library item %q: %w", itemID, errs.ErrNotFound)
}

// Toggle flips completion and stamps takenAt when marking as taken.
func (s *DayServiceImpl) Toggle(ctx context.Context, userID uuid.UUID, date civil.Date, id uuid.UUID) (model.Supplement, error) {
	day, err := s.days.Get(ctx, userID, date)
	if err != nil {
		return model.Supplement{}, err
	}
	for i := range day.Supplements {
		if day.Supplements[i].ID != id {
			continue
		}
		sup := &day.Supplements[i]
		sup.Completed = !sup.Completed
		if sup.Completed {
			sup.TakenAt = s.clk.Now()
		}
		if err := s.days.Put(ctx, userID, date, day.Supplements); err != nil {
			return model.Supplement{}, err
		}
		return *sup, nil
	}
	return model.Supplement{}, fmt.Errorf("supplement %s: %w", id, errs.ErrNotFound)
}

// Remove deletes one supplement from date.
func (s *DayServiceImpl) Remove(ctx context.Context, userID uuid.UUID, date civil.Date, id uuid.UUID) error {
	day, err := s.days.Get(ctx, userID, date)
	if err != nil {
		return err
	}
	kept := make([]model.Supplement, 0, len(day.Supplements))
	for _, sup := range day.Supplements {
		if sup.ID != id {
			kept = append(kept, sup)
		}
	}
	if len(kept) == len(day.Supplements) {
		return fmt.Errorf("supplement %s: %w", id, errs.ErrNotFound)
	}
	return s.days.Put(ctx, userID, date, kept)
}

// Window returns a dense, ascending list covering [from, to].
func (s *DayServiceImpl) Window(ctx context.Context, userID uuid.UUID, from, to civil.Date) ([]model.DayData, error) {
	if err := ValidateRange(from, to); err != nil {
		return nil, err
	}
	stored, err := s.days.ListRange(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	byDate := make(map[civil.Date]model.DayData, len(stored))
	for _, d := range stored {
		byDate[d.Date] = d
	}
	dates := EnumerateDates(from, to)
	out := make([]model.DayData, 0, len(dates))
	for _, date := range dates {
		if d, ok := byDate[date]; ok {
			out = append(out, d)
			continue
		}
		out = append(out, model.EmptyDay(date))
	}
	return out, nil
}
