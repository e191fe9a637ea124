package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/supp-tracker/internal/clock"
	"github.com/and161185/supp-tracker/internal/convert"
	"github.com/and161185/supp-tracker/internal/limiter"
	"github.com/and161185/supp-tracker/internal/metrics"
	"github.com/and161185/supp-tracker/internal/repository/local"
	"github.com/and161185/supp-tracker/internal/service"
)

var signKey = []byte("test-sign-key")

type harness struct {
	srv   *httptest.Server
	clk   *clock.Fake
	token string
}

// newHarness runs the API over real services and a temp-file local store.
func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	ctx := context.Background()
	db, err := local.Open(ctx, filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := zaptest.NewLogger(t)
	clk := clock.NewFake(time.Date(2024, time.May, 10, 9, 30, 0, 0, time.UTC))
	m := metrics.New()
	days := local.NewDayRepo(db)
	library := service.NewLibraryService(local.NewLibraryRepo(db))

	svc := Services{
		Auth:      service.NewAuthService(local.NewUserRepo(db), signKey, time.Hour, limiter.NewMemory(time.Minute, 3, time.Minute)),
		Days:      service.NewDayService(days, library, clk),
		Templates: service.NewTemplateService(days, local.NewTemplateRepo(db), clk, log, service.TemplateOptions{Metrics: m}),
		Library:   library,
		Stats:     service.NewStatsService(days),
	}
	opts = append([]Option{WithClock(clk), WithRegistry(m.Registry)}, opts...)
	ts := httptest.NewServer(New(svc, signKey, log, opts...).Router())
	t.Cleanup(ts.Close)
	return &harness{srv: ts, clk: clk}
}

func (h *harness) do(t *testing.T, method, path string, body any) (int, []byte) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, h.srv.URL+path, rdr)
	require.NoError(t, err)
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
	resp, err := h.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

// login registers a fresh account and keeps its access token.
func (h *harness) login(t *testing.T) {
	t.Helper()
	code, _ := h.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"email": "Ann@Example.com", "password": "secret1", "name": "Ann",
	})
	require.Equal(t, http.StatusCreated, code)

	code, body := h.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "ann@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, code, string(body))
	var res loginResponse
	require.NoError(t, json.Unmarshal(body, &res))
	require.True(t, res.Success)
	require.NotEmpty(t, res.AccessToken)
	require.Equal(t, "Ann", res.Name)
	h.token = res.AccessToken
}

var morningTemplate = map[string]any{"supplements": []map[string]any{
	{"name": "Vitamin D3", "dosage": "2000 IU", "timeCategory": "Morning (Wake + Breakfast)", "completed": true},
	{"name": "Magnesium", "dosage": "200 mg", "timeCategory": "Before Bed"},
}}

func TestAPI_RequiresAuth(t *testing.T) {
	h := newHarness(t)
	code, body := h.do(t, http.MethodGet, "/api/template", nil)
	require.Equal(t, http.StatusUnauthorized, code)
	require.JSONEq(t, `{"success":false,"error":"authentication required"}`, string(body))
}

func TestAPI_RegisterValidationAndDuplicate(t *testing.T) {
	h := newHarness(t)
	code, _ := h.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"email": "no-at-sign", "password": "secret1", "name": "Ann",
	})
	require.Equal(t, http.StatusBadRequest, code)

	h.login(t)
	code, body := h.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"email": "ann@example.com", "password": "secret1", "name": "Ann",
	})
	require.Equal(t, http.StatusConflict, code)
	require.Contains(t, string(body), "already exists")
}

func TestAPI_LoginWrongPasswordThenRateLimited(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	h.token = ""
	bad := map[string]string{"email": "ann@example.com", "password": "wrong-password"}

	code, _ := h.do(t, http.MethodPost, "/api/auth/login", bad)
	require.Equal(t, http.StatusUnauthorized, code)
	code, _ = h.do(t, http.MethodPost, "/api/auth/login", bad)
	require.Equal(t, http.StatusUnauthorized, code)
	// third failure reaches the limit
	code, _ = h.do(t, http.MethodPost, "/api/auth/login", bad)
	require.Equal(t, http.StatusTooManyRequests, code)
}

func TestAPI_TemplateSaveNormalizesAndApplies(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	code, _ := h.do(t, http.MethodPut, "/api/template", morningTemplate)
	require.Equal(t, http.StatusOK, code)

	code, body := h.do(t, http.MethodGet, "/api/template", nil)
	require.Equal(t, http.StatusOK, code)
	var tpl templateResponse
	require.NoError(t, json.Unmarshal(body, &tpl))
	require.Len(t, tpl.Supplements, 2)
	require.NotContains(t, string(body), "completed")

	code, _ = h.do(t, http.MethodPost, "/api/template/apply/2024-05-11", nil)
	require.Equal(t, http.StatusOK, code)

	code, body = h.do(t, http.MethodGet, "/api/days/2024-05-11", nil)
	require.Equal(t, http.StatusOK, code)
	var day convert.DayOut
	require.NoError(t, json.Unmarshal(body, &day))
	require.Equal(t, "2024-05-11", day.Date)
	require.Equal(t, 2, day.Total)
	require.Zero(t, day.Completed)
	for _, s := range day.Supplements {
		require.False(t, s.ID.IsNil())
		require.True(t, h.clk.Now().Equal(s.TakenAt), s.TakenAt)
	}
}

func TestAPI_ApplyWithoutTemplateConflicts(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	code, body := h.do(t, http.MethodPost, "/api/template/apply/2024-05-11", nil)
	require.Equal(t, http.StatusConflict, code)
	require.JSONEq(t, `{"success":false,"error":"no daily template saved"}`, string(body))

	code, _ = h.do(t, http.MethodGet, "/api/template", nil)
	require.Equal(t, http.StatusNotFound, code)
}

func TestAPI_ApplyRangeTallyAndNavigation(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	code, _ := h.do(t, http.MethodPut, "/api/template", morningTemplate)
	require.Equal(t, http.StatusOK, code)

	code, body := h.do(t, http.MethodPost, "/api/template/apply-range", map[string]string{
		"start": "2024-05-20", "end": "2024-05-24",
		"windowFrom": "2024-05-05", "windowTo": "2024-05-11",
	})
	require.Equal(t, http.StatusOK, code, string(body))
	var out convert.RangeOut
	require.NoError(t, json.Unmarshal(body, &out))
	require.True(t, out.Success)
	require.False(t, out.Partial)
	require.Equal(t, 5, out.SuccessCount)
	require.Zero(t, out.ErrorCount)
	require.Empty(t, out.Failed)
	require.NotNil(t, out.NavigateTo)
	require.Equal(t, convert.NavigateTo{From: "2024-05-20", To: "2024-05-24"}, *out.NavigateTo)
	require.Len(t, out.Window, 7)

	code, body = h.do(t, http.MethodGet, "/api/days?from=2024-05-20&to=2024-05-24", nil)
	require.Equal(t, http.StatusOK, code)
	var days []convert.DayOut
	require.NoError(t, json.Unmarshal(body, &days))
	require.Len(t, days, 5)
	for _, d := range days {
		require.Equal(t, 2, d.Total, d.Date)
	}

	// inside the displayed window: no navigation hint, window reflects the writes
	code, body = h.do(t, http.MethodPost, "/api/template/apply-range", map[string]string{
		"start": "2024-05-06", "end": "2024-05-07",
		"windowFrom": "2024-05-05", "windowTo": "2024-05-11",
	})
	require.Equal(t, http.StatusOK, code)
	out = convert.RangeOut{}
	require.NoError(t, json.Unmarshal(body, &out))
	require.Nil(t, out.NavigateTo)
	require.Equal(t, 2, out.Window[1].Total)
	require.Equal(t, 2, out.Window[2].Total)
	require.Zero(t, out.Window[0].Total)
}

func TestAPI_ApplyRangeValidation(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	code, _ := h.do(t, http.MethodPut, "/api/template", morningTemplate)
	require.Equal(t, http.StatusOK, code)

	cases := []struct {
		name, start, end, want string
	}{
		{"reversed", "2024-05-10", "2024-05-01", "end date"},
		{"too large", "2024-01-01", "2024-03-31", "90"},
		{"bad date", "2024-13-01", "2024-05-01", "invalid date"},
	}
	for _, tc := range cases {
		code, body := h.do(t, http.MethodPost, "/api/template/apply-range", map[string]string{"start": tc.start, "end": tc.end})
		require.Equal(t, http.StatusBadRequest, code, tc.name)
		require.Contains(t, strings.ToLower(string(body)), tc.want, tc.name)
	}

	code, body := h.do(t, http.MethodGet, "/api/days?from=2024-01-01&to=2024-01-05", nil)
	require.Equal(t, http.StatusOK, code)
	var days []convert.DayOut
	require.NoError(t, json.Unmarshal(body, &days))
	require.Empty(t, days[0].Supplements, "rejected ranges must not write")
}

func TestAPI_DayEditing(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	code, body := h.do(t, http.MethodPost, "/api/days/2024-05-10/supplements/from-library", map[string]string{
		"itemId": "1", "timeCategory": "Morning (Wake + Breakfast)",
	})
	require.Equal(t, http.StatusCreated, code, string(body))
	var added supplementResponse
	require.NoError(t, json.Unmarshal(body, &added))
	require.Equal(t, "Vitamin D3", added.Supplement.Name)

	code, body = h.do(t, http.MethodPost, "/api/days/2024-05-10/supplements/"+added.Supplement.ID.String()+"/toggle", nil)
	require.Equal(t, http.StatusOK, code)
	var toggled supplementResponse
	require.NoError(t, json.Unmarshal(body, &toggled))
	require.True(t, toggled.Supplement.Completed)

	code, _ = h.do(t, http.MethodPost, "/api/days/2024-05-10/supplements", map[string]string{
		"name": "Zinc", "dosage": "15 mg", "timeCategory": "Lunch",
	})
	require.Equal(t, http.StatusBadRequest, code)

	code, _ = h.do(t, http.MethodDelete, "/api/days/2024-05-10/supplements/"+added.Supplement.ID.String(), nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = h.do(t, http.MethodDelete, "/api/days/2024-05-10/supplements/"+added.Supplement.ID.String(), nil)
	require.Equal(t, http.StatusNotFound, code)
}

func TestAPI_LibraryAndStats(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	code, body := h.do(t, http.MethodGet, "/api/library", nil)
	require.Equal(t, http.StatusOK, code)
	var items []map[string]string
	require.NoError(t, json.Unmarshal(body, &items))
	require.Len(t, items, 15)

	code, _ = h.do(t, http.MethodPost, "/api/library", map[string]string{
		"name": "Creatine", "defaultDosage": "5 g", "category": "Performance",
	})
	require.Equal(t, http.StatusCreated, code)

	code, body = h.do(t, http.MethodGet, "/api/library?q=creat", nil)
	require.Equal(t, http.StatusOK, code)
	items = nil
	require.NoError(t, json.Unmarshal(body, &items))
	require.Len(t, items, 1)

	code, _ = h.do(t, http.MethodPut, "/api/template", morningTemplate)
	require.Equal(t, http.StatusOK, code)
	code, _ = h.do(t, http.MethodPost, "/api/template/apply/2024-05-10", nil)
	require.Equal(t, http.StatusOK, code)

	code, body = h.do(t, http.MethodGet, "/api/stats/history", nil)
	require.Equal(t, http.StatusOK, code)
	var hist struct {
		DayCount int `json:"dayCount"`
		Total    int `json:"totalSupplements"`
	}
	require.NoError(t, json.Unmarshal(body, &hist))
	require.Equal(t, 1, hist.DayCount)
	require.Equal(t, 2, hist.Total)

	code, body = h.do(t, http.MethodGet, "/api/stats/weekly", nil)
	require.Equal(t, http.StatusOK, code)
	var week struct {
		Start        string `json:"start"`
		TotalPlanned int    `json:"totalPlanned"`
	}
	require.NoError(t, json.Unmarshal(body, &week))
	require.Equal(t, "2024-05-05", week.Start)
	require.Equal(t, 2, week.TotalPlanned)
}

func TestAPI_HealthAndMetrics(t *testing.T) {
	var failing atomic.Bool
	h := newHarness(t, WithPing(func(context.Context) error {
		if failing.Load() {
			return errors.New("db down")
		}
		return nil
	}))

	code, _ := h.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, code)

	failing.Store(true)
	code, _ = h.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusServiceUnavailable, code)

	h.login(t)
	code, _ = h.do(t, http.MethodPut, "/api/template", morningTemplate)
	require.Equal(t, http.StatusOK, code)
	code, _ = h.do(t, http.MethodPost, "/api/template/apply/2024-05-12", nil)
	require.Equal(t, http.StatusOK, code)

	code, body := h.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, string(body), `supptrack_template_apply_total{result="success"} 1`)
}

func TestAPI_MalformedBody(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	code, body := h.do(t, http.MethodPut, "/api/template", map[string]any{"unknown": 1})
	require.Equal(t, http.StatusBadRequest, code)
	require.Contains(t, string(body), "malformed request body")
}
