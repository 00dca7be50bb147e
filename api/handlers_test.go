/*
handlers_test.go - Tests for the HTTP API

Tests for:
- Engine operations over HTTP, including 400 for unknown codes
- Custom range kept in the cookie session
- Preferences feeding fiscal year and view range
- Block report totals
- Metrics endpoint
*/
package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/period-engine/store/sqlite"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	h := NewHandler(store, sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef")))
	h.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	h.Now = func() time.Time { return time.Date(2023, time.August, 15, 10, 30, 0, 0, time.UTC) }
	return h
}

// client replays the cookies it receives, like a browser.
type client struct {
	t       *testing.T
	router  http.Handler
	cookies map[string]*http.Cookie
}

func newClient(t *testing.T, h *Handler) *client {
	return &client{t: t, router: NewRouter(h), cookies: make(map[string]*http.Cookie)}
}

func (c *client) do(method, target string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)

	for _, cookie := range rec.Result().Cookies() {
		c.cookies[cookie.Name] = cookie
	}
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// =============================================================================
// FREQUENCIES AND PERIODS
// =============================================================================

func TestListFrequencies(t *testing.T) {
	c := newClient(t, newTestHandler(t))

	rec := c.do(http.MethodGet, "/api/frequencies", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	dtos := decode[[]FrequencyDTO](t, rec)
	require.Len(t, dtos, 14)
	assert.Equal(t, FrequencyDTO{Code: "1D", Synonyms: []string{"1D", "daily"}, Unit: "day", Multiplier: 1}, dtos[0])
}

func TestPeriodOperations(t *testing.T) {
	c := newClient(t, newTestHandler(t))

	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"start of quarter", "/api/periods/start?date=2023-08-15&code=quarter", "2023-07-01T00:00:00Z"},
		{"end of quarter", "/api/periods/end?date=2023-07-01&code=3M", "2023-09-30T23:59:59Z"},
		{"end of x clamped", "/api/periods/end-of-x?date=2023-08-15&code=3M&max=2023-09-01", "2023-09-01T00:00:00Z"},
		{"add with drift correction", "/api/periods/add?date=2019-01-31&code=1M", "2019-02-28T00:00:00Z"},
		{"add with skip", "/api/periods/add?date=2023-08-14&code=1W&skip=2", "2023-09-04T00:00:00Z"},
		{"subtract", "/api/periods/subtract?date=2023-08-15&code=1Y&n=3", "2020-08-15T00:00:00Z"},
		{"rfc3339 input", "/api/periods/start?date=2023-08-15T10:30:00Z&code=1D", "2023-08-15T00:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := c.do(http.MethodGet, tt.target, nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tt.want, decode[DateDTO](t, rec).Date)
		})
	}
}

func TestPeriodOperations_UnknownCodeIsBadRequest(t *testing.T) {
	h := newTestHandler(t)
	c := newClient(t, h)

	for _, target := range []string{
		"/api/periods/start?date=2023-08-15&code=bogus",
		"/api/periods/subtract?date=2023-08-15&code=bogus",
		"/api/periods/show?date=2023-08-15&code=bogus",
		"/api/periods/blocks?start=2023-01-01&end=2023-12-31&code=bogus",
	} {
		rec := c.do(http.MethodGet, target, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code, target)
		resp := decode[ErrorResponse](t, rec)
		assert.Equal(t, "Unsupported frequency", resp.Error)
		assert.Contains(t, resp.Details, `"bogus"`)
	}

	metrics := c.do(http.MethodGet, "/metrics", nil)
	assert.Contains(t, metrics.Body.String(), `period_engine_unsupported_frequency_total{operation="SubtractPeriod"} 1`)
	assert.Contains(t, metrics.Body.String(), `period_engine_unsupported_frequency_total{operation="StartOfPeriod"} 1`)
}

func TestPeriodOperations_BadInput(t *testing.T) {
	c := newClient(t, newTestHandler(t))

	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/api/periods/start?code=1M", nil).Code)
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/api/periods/start?date=15/08/2023&code=1M", nil).Code)
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/api/periods/add?date=2023-08-15&code=1M&skip=-1", nil).Code)
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/api/periods/end-of-x?date=2023-08-15&code=1M&max=soon", nil).Code)
}

func TestShowPeriod(t *testing.T) {
	c := newClient(t, newTestHandler(t))

	rec := c.do(http.MethodGet, "/api/periods/show?date=2023-08-15&code=3M", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, LabelDTO{Code: "3M", Label: "Q3 2023"}, decode[LabelDTO](t, rec))
}

func TestBlockPeriods(t *testing.T) {
	c := newClient(t, newTestHandler(t))

	rec := c.do(http.MethodGet, "/api/periods/blocks?start=2023-01-01&end=2023-12-31&code=1M", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	periods := decode[[]PeriodDTO](t, rec)
	require.Len(t, periods, 12)
	assert.Equal(t, PeriodDTO{
		Start:     "2023-12-01T00:00:00Z",
		End:       "2023-12-31T23:59:59Z",
		Frequency: "1M",
		Label:     "December 2023",
	}, periods[0])
	assert.Equal(t, "January 2023", periods[11].Label)
}

func TestListPeriodsAndFormats(t *testing.T) {
	c := newClient(t, newTestHandler(t))

	rec := c.do(http.MethodGet, "/api/periods/list?start=2023-01-01&end=2023-06-30", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[PeriodListResponse](t, rec)
	assert.Equal(t, "month", list.Granularity)
	require.Len(t, list.Periods, 6)
	assert.Equal(t, PeriodKeyDTO{Key: "2023-01", Label: "January 2023"}, list.Periods[0])

	rec = c.do(http.MethodGet, "/api/periods/format?start=2020-01-01&end=2023-06-30", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, FormatDTO{
		Granularity: "year",
		SortFormat:  "2006",
		LabelKey:    "config.year_js",
		SQLFormat:   "%Y",
		EndOfPeriod: "endOfYear",
		RangeFormat: "1Y",
	}, decode[FormatDTO](t, rec))
}

// =============================================================================
// SESSION RANGE
// =============================================================================

func TestSessionRange_DrivesCustomFrequency(t *testing.T) {
	// GIVEN: a browser with no selected range
	// WHEN: it selects March 1-11 and asks for the end of a custom period
	// THEN: the custom period is ten days long

	c := newClient(t, newTestHandler(t))

	rec := c.do(http.MethodGet, "/api/session/range", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	fallback := decode[SessionRangeDTO](t, rec)
	assert.False(t, fallback.Selected)
	assert.Equal(t, "2023-08-01T00:00:00Z", fallback.Start)
	assert.Equal(t, 30, fallback.Days)

	rec = c.do(http.MethodPut, "/api/session/range", SetRangeRequest{Start: "2023-03-11", End: "2023-03-01"})
	require.Equal(t, http.StatusOK, rec.Code)
	selected := decode[SessionRangeDTO](t, rec)
	assert.True(t, selected.Selected)
	assert.Equal(t, "2023-03-01T00:00:00Z", selected.Start, "inverted bounds are swapped")
	assert.Equal(t, 10, selected.Days)

	rec = c.do(http.MethodGet, "/api/periods/end?date=2023-08-15&code=custom", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2023-08-25T00:00:00Z", decode[DateDTO](t, rec).Date)

	rec = c.do(http.MethodDelete, "/api/session/range", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[SessionRangeDTO](t, rec).Selected)

	rec = c.do(http.MethodGet, "/api/periods/end?date=2023-08-15&code=custom", nil)
	assert.Equal(t, "2023-09-14T00:00:00Z", decode[DateDTO](t, rec).Date)
}

func TestSessionRange_IsPerBrowser(t *testing.T) {
	h := newTestHandler(t)
	alice := newClient(t, h)
	bob := newClient(t, h)

	require.Equal(t, http.StatusOK, alice.do(http.MethodPut, "/api/session/range", SetRangeRequest{Start: "2023-03-01", End: "2023-03-11"}).Code)

	rec := bob.do(http.MethodGet, "/api/session/range", nil)
	assert.False(t, decode[SessionRangeDTO](t, rec).Selected)
}

// =============================================================================
// PREFERENCES AND RANGES
// =============================================================================

func TestPreferences_DefaultsThenSave(t *testing.T) {
	c := newClient(t, newTestHandler(t))

	rec := c.do(http.MethodGet, "/api/preferences", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	defaults := decode[PreferenceDTO](t, rec)
	assert.NotEmpty(t, defaults.UserID)
	assert.Equal(t, "1M", defaults.ViewRange)
	assert.Equal(t, "01-01", defaults.FiscalYearStart)

	rec = c.do(http.MethodPut, "/api/preferences", SavePreferenceRequest{ViewRange: "1Y", FiscalYearStart: "04-06", Locale: "en_GB"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	saved := decode[PreferenceDTO](t, rec)
	assert.Equal(t, defaults.UserID, saved.UserID, "same browser, same user")
	assert.Equal(t, "1Y", saved.ViewRange)
	assert.Equal(t, "04-06", saved.FiscalYearStart)
	assert.Equal(t, "en_GB", saved.Locale)
	assert.NotEmpty(t, saved.UpdatedAt)
}

func TestPreferences_RejectsUnknownViewRange(t *testing.T) {
	c := newClient(t, newTestHandler(t))

	rec := c.do(http.MethodPut, "/api/preferences", SavePreferenceRequest{ViewRange: "fortnight"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodPut, "/api/preferences", SavePreferenceRequest{FiscalYearStart: "02-30"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreferences_DeleteRestoresDefaults(t *testing.T) {
	c := newClient(t, newTestHandler(t))

	rec := c.do(http.MethodPut, "/api/preferences", SavePreferenceRequest{ViewRange: "1Y", FiscalYearStart: "04-06"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = c.do(http.MethodDelete, "/api/preferences", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	restored := decode[PreferenceDTO](t, rec)
	assert.Equal(t, "1M", restored.ViewRange)
	assert.Equal(t, "01-01", restored.FiscalYearStart)

	rec = c.do(http.MethodGet, "/api/ranges/current", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2023-08-01T00:00:00Z", decode[RangeDTO](t, rec).Start)

	rec = c.do(http.MethodDelete, "/api/preferences", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "nothing left to delete")
}

func TestSession_UsesConfiguredCookieName(t *testing.T) {
	h := newTestHandler(t)
	h.SessionName = "ledger-periods"
	c := newClient(t, h)

	rec := c.do(http.MethodGet, "/api/session/range", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Contains(t, c.cookies, "ledger-periods")
	assert.NotContains(t, c.cookies, DefaultSessionName)
}

func TestCurrentRange_DefaultViewRange(t *testing.T) {
	c := newClient(t, newTestHandler(t))

	rec := c.do(http.MethodGet, "/api/ranges/current?date=2023-02-10", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, RangeDTO{
		ViewRange: "1M",
		Code:      "1M",
		Start:     "2023-02-01T00:00:00Z",
		End:       "2023-02-28T23:59:59Z",
		Label:     "February 2023",
	}, decode[RangeDTO](t, rec))
}

func TestCurrentRange_FollowsFiscalYearPreference(t *testing.T) {
	c := newClient(t, newTestHandler(t))
	require.Equal(t, http.StatusOK, c.do(http.MethodPut, "/api/preferences", SavePreferenceRequest{ViewRange: "1Y", FiscalYearStart: "04-06"}).Code)

	rec := c.do(http.MethodGet, "/api/ranges/current", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[RangeDTO](t, rec)
	assert.Equal(t, "2023-04-06T00:00:00Z", got.Start)
	assert.Equal(t, "2024-04-05T23:59:59Z", got.End)
	assert.Equal(t, "2023", got.Label)
}

func TestCurrentRange_RollingViewRangeEndsToday(t *testing.T) {
	c := newClient(t, newTestHandler(t))
	require.Equal(t, http.StatusOK, c.do(http.MethodPut, "/api/preferences", SavePreferenceRequest{ViewRange: "last30"}).Code)

	rec := c.do(http.MethodGet, "/api/ranges/current", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[RangeDTO](t, rec)
	assert.Equal(t, "last30", got.ViewRange)
	assert.Equal(t, "1M", got.Code)
	assert.Equal(t, "2023-07-16T10:30:00Z", got.Start)
	assert.Equal(t, "2023-08-15T23:59:59Z", got.End)
}

// =============================================================================
// REPORTS
// =============================================================================

func TestBlockReport(t *testing.T) {
	c := newClient(t, newTestHandler(t))

	rec := c.do(http.MethodPost, "/api/reports/blocks", BlockReportRequest{
		Start: "2023-01-01",
		End:   "2023-03-31",
		Code:  "1M",
		Entries: []EntryRequest{
			{Date: "2023-01-15", Amount: "10.50"},
			{Date: "2023-03-01", Amount: "100"},
			{Date: "2024-01-01", Amount: "5"},
		},
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[BlockReportResponse](t, rec)
	assert.Equal(t, "110.50", resp.Total)
	assert.Equal(t, 1, resp.Skipped)
	require.Len(t, resp.Periods, 3)
	assert.Equal(t, "March 2023", resp.Periods[0].Label)
	assert.Equal(t, "100.00", resp.Periods[0].Total)
	assert.Equal(t, "100.00", resp.Periods[0].Change)
	assert.Equal(t, "-10.50", resp.Periods[1].Change)
	assert.Equal(t, 1, resp.Periods[2].Count)
}

func TestBlockReport_BadInput(t *testing.T) {
	c := newClient(t, newTestHandler(t))

	rec := c.do(http.MethodPost, "/api/reports/blocks", BlockReportRequest{
		Start: "2023-01-01", End: "2023-03-31", Code: "1M",
		Entries: []EntryRequest{{Date: "2023-01-15", Amount: "ten"}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodPost, "/api/reports/blocks", BlockReportRequest{Start: "2023-01-01", End: "2023-03-31", Code: "bogus"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// METRICS
// =============================================================================

func TestMetrics_CountsRequestsByRoute(t *testing.T) {
	c := newClient(t, newTestHandler(t))

	c.do(http.MethodGet, "/api/frequencies", nil)
	c.do(http.MethodGet, "/api/periods/start?date=2023-08-15&code=1M", nil)

	body := c.do(http.MethodGet, "/metrics", nil).Body.String()
	assert.Contains(t, body, `period_engine_http_requests_total{method="GET",route="/api/frequencies",status="200"} 1`)
	assert.Contains(t, body, `route="/api/periods/start"`)
}
