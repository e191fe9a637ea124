package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"

	"github.com/and161185/supp-tracker/internal/errs"
	"github.com/and161185/supp-tracker/internal/model"
	"github.com/and161185/supp-tracker/internal/repository"
)

var errStoreDown = errors.New("store unavailable")

type fakeDays struct {
	mu     sync.Mutex
	data   map[civil.Date][]model.Supplement
	failOn map[civil.Date]bool
	getErr error

	writes []civil.Date
}

var _ repository.DayRepository = (*fakeDays)(nil)

func newFakeDays() *fakeDays {
	return &fakeDays{data: map[civil.Date][]model.Supplement{}, failOn: map[civil.Date]bool{}}
}

func (f *fakeDays) Get(_ context.Context, _ uuid.UUID, d civil.Date) (model.DayData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return model.DayData{}, f.getErr
	}
	supps, ok := f.data[d]
	if !ok {
		return model.EmptyDay(d), nil
	}
	return model.DayData{Date: d, Supplements: append([]model.Supplement{}, supps...)}, nil
}

func (f *fakeDays) Put(_ context.Context, _ uuid.UUID, d civil.Date, supps []model.Supplement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, d)
	if f.failOn[d] {
		return errStoreDown
	}
	f.data[d] = append([]model.Supplement{}, supps...)
	return nil
}

func (f *fakeDays) ListRange(_ context.Context, _ uuid.UUID, from, to civil.Date) ([]model.DayData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	out := []model.DayData{}
	for d, s := range f.data {
		if !d.Before(from) && !d.After(to) {
			out = append(out, model.DayData{Date: d, Supplements: append([]model.Supplement{}, s...)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (f *fakeDays) List(ctx context.Context, u uuid.UUID) ([]model.DayData, error) {
	return f.ListRange(ctx, u, civil.Date{Year: 1, Month: 1, Day: 1}, civil.Date{Year: 9999, Month: 12, Day: 31})
}

func (f *fakeDays) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

type fakeTemplates struct {
	tpl     *model.Template
	getErr  error
	saveErr error
	saves   int
}

var _ repository.TemplateRepository = (*fakeTemplates)(nil)

func (f *fakeTemplates) Get(_ context.Context, userID uuid.UUID) (*model.Template, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.tpl == nil {
		return nil, errs.ErrNotFound
	}
	c := *f.tpl
	c.UserID = userID
	return &c, nil
}

func (f *fakeTemplates) Save(_ context.Context, userID uuid.UUID, entries []model.TemplateEntry) error {
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.tpl = &model.Template{UserID: userID, Entries: append([]model.TemplateEntry{}, entries...)}
	return nil
}

func (f *fakeTemplates) Delete(context.Context, uuid.UUID) error {
	f.tpl = nil
	return nil
}

type fakeLibrary struct {
	items  []model.LibraryItem
	saved  bool
	getErr error
	saves  int
}

var _ repository.LibraryRepository = (*fakeLibrary)(nil)

func (f *fakeLibrary) Get(context.Context, uuid.UUID) ([]model.LibraryItem, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if !f.saved {
		return nil, errs.ErrNotFound
	}
	return append([]model.LibraryItem{}, f.items...), nil
}

func (f *fakeLibrary) Save(_ context.Context, _ uuid.UUID, items []model.LibraryItem) error {
	f.saves++
	f.saved = true
	f.items = append([]model.LibraryItem{}, items...)
	return nil
}
