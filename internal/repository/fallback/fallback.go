// Package fallback routes failed primary-store calls to the local store, mirroring the web
// client's behaviour of writing to local storage when the network store is unreachable.
package fallback

import (
	"context"
	"errors"

	"cloud.google.com/go/civil"
	"github.com/and161185/supp-tracker/internal/errs"
	"github.com/and161185/supp-tracker/internal/model"
	"github.com/and161185/supp-tracker/internal/repository"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
)

// degraded reports whether err should send the call to the local store.
// Not-found is an answer, not an outage.
func degraded(ctx context.Context, err error) bool {
	return err != nil && !errors.Is(err, errs.ErrNotFound) && ctx.Err() == nil
}

// Days decorates a primary DayRepository.
type Days struct {
	Primary repository.DayRepository
	Local   repository.DayRepository
	Log     *zap.Logger
}

var _ repository.DayRepository = (*Days)(nil)

func (d *Days) warn(op string, err error) {
	d.Log.Warn("primary store failed, using local", zap.String("op", op), zap.Error(err))
}

// Get reads from the primary store, then the local one.
func (d *Days) Get(ctx context.Context, userID uuid.UUID, date civil.Date) (model.DayData, error) {
	out, err := d.Primary.Get(ctx, userID, date)
	if degraded(ctx, err) {
		d.warn("days.get", err)
		return d.Local.Get(ctx, userID, date)
	}
	return out, err
}

// Put writes to the primary store, then the local one.
func (d *Days) Put(ctx context.Context, userID uuid.UUID, date civil.Date, supps []model.Supplement) error {
	err := d.Primary.Put(ctx, userID, date, supps)
	if degraded(ctx, err) {
		d.warn("days.put", err)
		return d.Local.Put(ctx, userID, date, supps)
	}
	return err
}

// ListRange reads from the primary store, then the local one.
func (d *Days) ListRange(ctx context.Context, userID uuid.UUID, from, to civil.Date) ([]model.DayData, error) {
	out, err := d.Primary.ListRange(ctx, userID, from, to)
	if degraded(ctx, err) {
		d.warn("days.list_range", err)
		return d.Local.ListRange(ctx, userID, from, to)
	}
	return out, err
}

// List reads from the primary store, then the local one.
func (d *Days) List(ctx context.Context, userID uuid.UUID) ([]model.DayData, error) {
	out, err := d.Primary.List(ctx, userID)
	if degraded(ctx, err) {
		d.warn("days.list", err)
		return d.Local.List(ctx, userID)
	}
	return out, err
}

// Templates decorates a primary TemplateRepository.
type Templates struct {
	Primary repository.TemplateRepository
	Local   repository.TemplateRepository
	Log     *zap.Logger
}

var _ repository.TemplateRepository = (*Templates)(nil)

// Get reads from the primary store, then the local one.
func (t *Templates) Get(ctx context.Context, userID uuid.UUID) (*model.Template, error) {
	out, err := t.Primary.Get(ctx, userID)
	if degraded(ctx, err) {
		t.Log.Warn("primary store failed, using local", zap.String("op", "templates.get"), zap.Error(err))
		return t.Local.Get(ctx, userID)
	}
	return out, err
}

// Save writes to the primary store, then the local one.
func (t *Templates) Save(ctx context.Context, userID uuid.UUID, entries []model.TemplateEntry) error {
	err := t.Primary.Save(ctx, userID, entries)
	if degraded(ctx, err) {
		t.Log.Warn("primary store failed, using local", zap.String("op", "templates.save"), zap.Error(err))
		return t.Local.Save(ctx, userID, entries)
	}
	return err
}

// Delete removes from the primary store, then the local one.
func (t *Templates) Delete(ctx context.Context, userID uuid.UUID) error {
	err := t.Primary.Delete(ctx, userID)
	if degraded(ctx, err) {
		t.Log.Warn("primary store failed, using local", zap.String("op", "templates.delete"), zap.Error(err))
		return t.Local.Delete(ctx, userID)
	}
	return err
}

// Library decorates a primary LibraryRepository.
type Library struct {
	Primary repository.LibraryRepository
	Local   repository.LibraryRepository
	Log     *zap.Logger
}

var _ repository.LibraryRepository = (*Library)(nil)

// Get reads from the primary store, then the local one.
func (l *Library) Get(ctx context.Context, userID uuid.UUID) ([]model.LibraryItem, error) {
	out, err := l.Primary.Get(ctx, userID)
	if degraded(ctx, err) {
		l.Log.Warn("primary store failed, using local", zap.String("op", "library.get"), zap.Error(err))
		return l.Local.Get(ctx, userID)
	}
	return out, err
}

// Save writes to the primary store, then the local one.
func (l *Library) Save(ctx context.Context, userID uuid.UUID, items []model.LibraryItem) error {
	err := l.Primary.Save(ctx, userID, items)
	if degraded(ctx, err) {
		l.Log.Warn("primary store failed, using local", zap.String("op", "library.save"), zap.Error(err))
		return l.Local.Save(ctx, userID, items)
	}
	return err
}
