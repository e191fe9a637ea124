package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/supp-tracker/internal/clock"
	"github.com/and161185/supp-tracker/internal/errs"
	"github.com/and161185/supp-tracker/internal/metrics"
	"github.com/and161185/supp-tracker/internal/model"
)

var (
	testUser = uuid.Must(uuid.FromString("0b6f7f0e-9c1c-4c53-a5c5-3c1f2b0a1d11"))
	testNow  = time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC)
)

func d(y int, m time.Month, day int) civil.Date { return civil.Date{Year: y, Month: m, Day: day} }

func twoEntryTemplate() *model.Template {
	return &model.Template{Entries: []model.TemplateEntry{
		{Name: "X", Dosage: "5mg", TimeCategory: model.Morning},
		{Name: "Y", Dosage: "1 cap", TimeCategory: model.Evening},
	}}
}

func newTemplateSvc(t *testing.T, days *fakeDays, tpls *fakeTemplates, opts TemplateOptions) *TemplateServiceImpl {
	t.Helper()
	return NewTemplateService(days, tpls, clock.NewFake(testNow), zaptest.NewLogger(t), opts)
}

func TestApplyToDate_FullReplace(t *testing.T) {
	days := newFakeDays()
	date := d(2024, 1, 10)
	days.data[date] = []model.Supplement{
		{ID: uuid.Must(uuid.NewV4()), Name: "A", Completed: true},
		{ID: uuid.Must(uuid.NewV4()), Name: "B"},
	}
	svc := newTemplateSvc(t, days, &fakeTemplates{tpl: twoEntryTemplate()}, TemplateOptions{})

	require.NoError(t, svc.ApplyToDate(context.Background(), testUser, date))

	got := days.data[date]
	names := make([]string, 0, len(got))
	for _, s := range got {
		names = append(names, s.Name)
		require.False(t, s.Completed)
		require.True(t, testNow.Equal(s.TakenAt))
		require.NotEqual(t, uuid.Nil, s.ID)
	}
	require.Equal(t, []string{"X", "Y"}, names)
}

func TestApplyToDate_FreshInstancesAcrossDates(t *testing.T) {
	days := newFakeDays()
	svc := newTemplateSvc(t, days, &fakeTemplates{tpl: twoEntryTemplate()}, TemplateOptions{})

	d1, d2 := d(2024, 1, 1), d(2024, 1, 2)
	require.NoError(t, svc.ApplyToDate(context.Background(), testUser, d1))
	require.NoError(t, svc.ApplyToDate(context.Background(), testUser, d2))

	seen := map[uuid.UUID]bool{}
	for _, date := range []civil.Date{d1, d2} {
		for _, s := range days.data[date] {
			require.False(t, s.Completed)
			require.False(t, seen[s.ID], "id %s reused", s.ID)
			seen[s.ID] = true
		}
	}
	require.Len(t, seen, 4)
}

func TestApplyToDate_NoTemplate(t *testing.T) {
	days := newFakeDays()
	svc := newTemplateSvc(t, days, &fakeTemplates{}, TemplateOptions{})
	require.ErrorIs(t, svc.ApplyToDate(context.Background(), testUser, d(2024, 1, 1)), errs.ErrNoTemplate)

	svc = newTemplateSvc(t, days, &fakeTemplates{tpl: &model.Template{}}, TemplateOptions{})
	require.ErrorIs(t, svc.ApplyToDate(context.Background(), testUser, d(2024, 1, 1)), errs.ErrNoTemplate)
	require.Zero(t, days.writeCount())
}

func TestApplyToDate_WriteErrorReturned(t *testing.T) {
	days := newFakeDays()
	date := d(2024, 1, 1)
	days.failOn[date] = true
	m := metrics.New()
	svc := newTemplateSvc(t, days, &fakeTemplates{tpl: twoEntryTemplate()}, TemplateOptions{Metrics: m})

	err := svc.ApplyToDate(context.Background(), testUser, date)
	require.ErrorIs(t, err, errStoreDown)
	require.Equal(t, 1.0, testutil.ToFloat64(m.ApplyCounter(metrics.ResultError)))
}

func TestApplyRange_EnumeratesInclusiveAscending(t *testing.T) {
	days := newFakeDays()
	svc := newTemplateSvc(t, days, &fakeTemplates{tpl: twoEntryTemplate()}, TemplateOptions{})

	res, err := svc.ApplyRange(context.Background(), testUser, d(2024, 1, 1), d(2024, 1, 3))
	require.NoError(t, err)
	want := []civil.Date{d(2024, 1, 1), d(2024, 1, 2), d(2024, 1, 3)}
	if diff := cmp.Diff(want, days.writes); diff != "" {
		t.Fatalf("write order mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, want, res.Attempted)
	require.Equal(t, 3, res.SuccessCount)
	require.Zero(t, res.ErrorCount)
	require.False(t, res.Partial())
}

func TestApplyRange_CrossesMonthAndLeapDay(t *testing.T) {
	got := EnumerateDates(d(2024, 2, 28), d(2024, 3, 1))
	require.Equal(t, []civil.Date{d(2024, 2, 28), d(2024, 2, 29), d(2024, 3, 1)}, got)
	require.Nil(t, EnumerateDates(d(2024, 3, 1), d(2024, 2, 28)))
}

func TestApplyRange_ReversedRejectedBeforeIO(t *testing.T) {
	days := newFakeDays()
	tpls := &fakeTemplates{tpl: twoEntryTemplate()}
	svc := newTemplateSvc(t, days, tpls, TemplateOptions{})

	_, err := svc.ApplyRange(context.Background(), testUser, d(2024, 1, 5), d(2024, 1, 1))
	require.ErrorIs(t, err, errs.ErrInvalidRange)
	require.Zero(t, days.writeCount())
}

func TestApplyRange_Cap(t *testing.T) {
	start := d(2024, 1, 1)

	days := newFakeDays()
	svc := newTemplateSvc(t, days, &fakeTemplates{tpl: twoEntryTemplate()}, TemplateOptions{})
	_, err := svc.ApplyRange(context.Background(), testUser, start, start.AddDays(90))
	require.ErrorIs(t, err, errs.ErrRangeTooLarge)
	require.Zero(t, days.writeCount())

	res, err := svc.ApplyRange(context.Background(), testUser, start, start.AddDays(89))
	require.NoError(t, err)
	require.Equal(t, 90, res.SuccessCount)
	require.Equal(t, 90, days.writeCount())
}

func TestApplyRange_PartialFailureAttemptsAll(t *testing.T) {
	for _, workers := range []int{1, 3} {
		days := newFakeDays()
		start := d(2024, 1, 1)
		days.failOn[start.AddDays(1)] = true
		days.failOn[start.AddDays(3)] = true
		m := metrics.New()
		svc := newTemplateSvc(t, days, &fakeTemplates{tpl: twoEntryTemplate()}, TemplateOptions{Workers: workers, Metrics: m})

		res, err := svc.ApplyRange(context.Background(), testUser, start, start.AddDays(4))
		require.NoError(t, err)
		require.Equal(t, 3, res.SuccessCount, "workers=%d", workers)
		require.Equal(t, 2, res.ErrorCount, "workers=%d", workers)
		require.Equal(t, 5, days.writeCount(), "workers=%d", workers)
		require.Equal(t, []civil.Date{start.AddDays(1), start.AddDays(3)}, res.Failed)
		require.True(t, res.Partial())
		require.Equal(t, 3.0, testutil.ToFloat64(m.ApplyCounter(metrics.ResultSuccess)))
		require.Equal(t, 2.0, testutil.ToFloat64(m.ApplyCounter(metrics.ResultError)))
	}
}

func TestApplyRange_NoTemplateNoWrites(t *testing.T) {
	days := newFakeDays()
	svc := newTemplateSvc(t, days, &fakeTemplates{}, TemplateOptions{})
	_, err := svc.ApplyRange(context.Background(), testUser, d(2024, 1, 1), d(2024, 1, 2))
	require.ErrorIs(t, err, errs.ErrNoTemplate)
	require.Zero(t, days.writeCount())
}

func TestRangeResult_OutsideWindow(t *testing.T) {
	res := RangeResult{
		Attempted: []civil.Date{d(2024, 1, 6), d(2024, 1, 7), d(2024, 1, 8)},
		Failed:    []civil.Date{d(2024, 1, 8)},
	}
	require.False(t, res.OutsideWindow(d(2024, 1, 1), d(2024, 1, 7)))
	require.True(t, res.OutsideWindow(d(2024, 1, 7), d(2024, 1, 13)))
}

func TestSave_NormalizesEntries(t *testing.T) {
	tpls := &fakeTemplates{}
	svc := newTemplateSvc(t, newFakeDays(), tpls, TemplateOptions{})

	day := []model.Supplement{{
		ID:           uuid.Must(uuid.NewV4()),
		Name:         "X",
		Dosage:       "5mg",
		TimeCategory: model.Morning,
		Completed:    true,
		TakenAt:      testNow,
	}}
	require.NoError(t, svc.Save(context.Background(), testUser, day))
	require.Equal(t, []model.TemplateEntry{{Name: "X", Dosage: "5mg", TimeCategory: model.Morning}}, tpls.tpl.Entries)

	raw, err := json.Marshal(tpls.tpl.Entries)
	require.NoError(t, err)
	require.JSONEq(t, `[{"name":"X","dosage":"5mg","timeCategory":"Morning (Wake + Breakfast)"}]`, string(raw))
}

func TestSave_RejectsUnknownCategory(t *testing.T) {
	tpls := &fakeTemplates{}
	svc := newTemplateSvc(t, newFakeDays(), tpls, TemplateOptions{})

	err := svc.Save(context.Background(), testUser, []model.Supplement{
		{Name: "X", Dosage: "5mg", TimeCategory: model.Morning},
		{Name: "Y", Dosage: "1 g", TimeCategory: "Lunch"},
	})
	require.ErrorIs(t, err, errs.ErrValidation)
	require.Contains(t, err.Error(), "supplement[1]")
	require.Zero(t, tpls.saves)
	require.Nil(t, tpls.tpl)
}

func TestSaveFromDay(t *testing.T) {
	days := newFakeDays()
	date := d(2024, 1, 9)
	days.data[date] = []model.Supplement{{ID: uuid.Must(uuid.NewV4()), Name: "Zinc", Dosage: "15 mg", TimeCategory: model.Evening, Completed: true}}
	tpls := &fakeTemplates{}
	svc := newTemplateSvc(t, days, tpls, TemplateOptions{})

	tpl, err := svc.SaveFromDay(context.Background(), testUser, date)
	require.NoError(t, err)
	require.Len(t, tpl.Entries, 1)
	require.Equal(t, "Zinc", tpls.tpl.Entries[0].Name)

	days.getErr = errStoreDown
	_, err = svc.SaveFromDay(context.Background(), testUser, date)
	require.ErrorIs(t, err, errStoreDown)
	require.Equal(t, 1, tpls.saves)
}
