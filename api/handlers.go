/*
handlers.go - HTTP API handlers for the period engine

PURPOSE:
  Exposes the navigation engine via a JSON API. Handles HTTP request/response,
  builds a per-request Navigator from the session and stored preferences, and
  delegates to the engine.

ENDPOINTS:
  Frequencies:
    GET    /api/frequencies              Known codes and synonyms

  Periods (query: date, code, and skip | n | max where relevant):
    GET    /api/periods/start            StartOfPeriod
    GET    /api/periods/end              EndOfPeriod
    GET    /api/periods/end-of-x         EndOfX, optionally clamped to max
    GET    /api/periods/add              AddPeriod
    GET    /api/periods/subtract         SubtractPeriod
    GET    /api/periods/show             PeriodShow
    GET    /api/periods/blocks           BlockPeriods (start, end, code)
    GET    /api/periods/list             ListOfPeriods (start, end)
    GET    /api/periods/format           Granularity selectors (start, end)

  Ranges:
    GET    /api/ranges/current           Report range for the view range
    GET    /api/session/range            Custom range
    PUT    /api/session/range            Select custom range
    DELETE /api/session/range            Clear custom range

  Preferences:
    GET    /api/preferences              Current user's settings
    PUT    /api/preferences              Replace settings
    DELETE /api/preferences              Back to defaults

  Reports:
    POST   /api/reports/blocks           Period-over-period totals

REQUEST FLOW:
  1. Load the session (mints a user id on first visit)
  2. Parse and validate query or body
  3. Build the navigator: session range, preferred fiscal year and locale
  4. Call the engine
  5. Serialize response

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Unknown frequency code, malformed date or body
  - 500: Store or session failures

SEE ALSO:
  - dto.go: Request/response data structures
  - session.go: Cookie session
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"github.com/warp/period-engine/navigation"
	"github.com/warp/period-engine/observability"
	"github.com/warp/period-engine/report"
	"github.com/warp/period-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Defaults apply to users without stored preferences.
type Defaults struct {
	ViewRange string
	Fiscal    navigation.FiscalCalendar
	Locale    string
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    *sqlite.Store
	Sessions sessions.Store
	// SessionName is the cookie holding the session.
	SessionName string
	Metrics     *observability.Metrics
	Logger      *slog.Logger

	Defaults Defaults
	// Location interprets dates given without an offset.
	Location *time.Location
	// CORSOrigins is read by NewRouter.
	CORSOrigins []string
	Now         func() time.Time
}

// NewHandler creates a handler with calendar-year defaults in UTC.
func NewHandler(store *sqlite.Store, sessionStore sessions.Store) *Handler {
	return &Handler{
		Store:       store,
		Sessions:    sessionStore,
		SessionName: DefaultSessionName,
		Metrics:     observability.NewMetrics(),
		Logger:      slog.Default(),
		Defaults:    Defaults{ViewRange: navigation.DefaultViewRange},
		Location:    time.UTC,
		Now:         time.Now,
	}
}

// requestContext is what a handler needs after the session and preference
// are loaded.
type requestContext struct {
	session *PeriodSession
	pref    sqlite.Preference
	nav     *navigation.Navigator
}

// load resolves the session, the stored preference (or defaults) and a
// navigator configured from both.
func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*requestContext, bool) {
	s, err := h.session(w, r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load session", err)
		return nil, false
	}

	pref := sqlite.Preference{
		UserID:    s.UserID(),
		ViewRange: h.Defaults.ViewRange,
		Locale:    h.Defaults.Locale,
	}
	fiscal := h.Defaults.Fiscal
	stored, err := h.Store.GetPreference(r.Context(), s.UserID())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load preferences", err)
		return nil, false
	}
	if stored != nil {
		pref = *stored
		if pref.ViewRange == "" {
			pref.ViewRange = h.Defaults.ViewRange
		}
		if pref.FiscalYearStart != "" {
			fiscal = pref.Fiscal()
		}
		if pref.Locale == "" {
			pref.Locale = h.Defaults.Locale
		}
	}

	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	base := &navigation.Navigator{
		Logger: logger.With("request_id", middleware.GetReqID(r.Context()), "user_id", s.UserID()),
		Locale: pref.Locale,
		Now:    h.now,
	}
	nav := base.WithRange(s).WithFiscal(fiscal)
	return &requestContext{session: s, pref: pref, nav: nav}, true
}

func (h *Handler) now() time.Time {
	if h.Now == nil {
		return time.Now().In(h.Location)
	}
	return h.Now().In(h.Location)
}

// =============================================================================
// FREQUENCY HANDLERS
// =============================================================================

// ListFrequencies returns every frequency with its synonyms.
func (h *Handler) ListFrequencies(w http.ResponseWriter, r *http.Request) {
	all := navigation.Frequencies()
	dtos := make([]FrequencyDTO, len(all))
	for i, f := range all {
		res := f.Resolution()
		dtos[i] = FrequencyDTO{
			Code:       f.Code(),
			Synonyms:   f.Synonyms(),
			Unit:       res.Unit.String(),
			Multiplier: res.Multiplier,
			Rolling:    f.IsRolling(),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// PERIOD HANDLERS
// =============================================================================

// StartOfPeriod returns the start of the period of code containing date.
func (h *Handler) StartOfPeriod(w http.ResponseWriter, r *http.Request) {
	h.dateOperation(w, r, "StartOfPeriod", func(rc *requestContext, date time.Time, code string) (time.Time, error) {
		return rc.nav.StartOfPeriod(date, code), nil
	})
}

// EndOfPeriod returns the end of the period of code starting at date.
func (h *Handler) EndOfPeriod(w http.ResponseWriter, r *http.Request) {
	h.dateOperation(w, r, "EndOfPeriod", func(rc *requestContext, date time.Time, code string) (time.Time, error) {
		return rc.nav.EndOfPeriod(date, code), nil
	})
}

// EndOfX returns the end of the calendar unit of code, clamped to max.
func (h *Handler) EndOfX(w http.ResponseWriter, r *http.Request) {
	h.dateOperation(w, r, "EndOfX", func(rc *requestContext, date time.Time, code string) (time.Time, error) {
		var maxDate *time.Time
		if raw := r.URL.Query().Get("max"); raw != "" {
			m, err := h.parseDate(raw)
			if err != nil {
				return time.Time{}, fmt.Errorf("invalid max: %w", err)
			}
			maxDate = &m
		}
		return rc.nav.EndOfX(date, code, maxDate), nil
	})
}

// AddPeriod advances date by skip+1 periods.
func (h *Handler) AddPeriod(w http.ResponseWriter, r *http.Request) {
	h.dateOperation(w, r, "AddPeriod", func(rc *requestContext, date time.Time, code string) (time.Time, error) {
		skip, err := queryInt(r, "skip", 0)
		if err != nil {
			return time.Time{}, err
		}
		return rc.nav.AddPeriod(date, code, skip), nil
	})
}

// SubtractPeriod moves date back by n periods.
func (h *Handler) SubtractPeriod(w http.ResponseWriter, r *http.Request) {
	h.dateOperation(w, r, "SubtractPeriod", func(rc *requestContext, date time.Time, code string) (time.Time, error) {
		n, err := queryInt(r, "n", 1)
		if err != nil {
			return time.Time{}, err
		}
		return rc.nav.SubtractPeriod(date, code, n)
	})
}

// ShowPeriod returns the display label of the period of code containing date.
func (h *Handler) ShowPeriod(w http.ResponseWriter, r *http.Request) {
	rc, ok := h.load(w, r)
	if !ok {
		return
	}
	date, code, ok := h.dateAndCode(w, r, "PeriodShow")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, LabelDTO{Code: code, Label: rc.nav.PeriodShow(date, code)})
}

// BlockPeriods chunks [start, end] into periods of code, newest first.
func (h *Handler) BlockPeriods(w http.ResponseWriter, r *http.Request) {
	rc, ok := h.load(w, r)
	if !ok {
		return
	}
	start, end, ok := h.span(w, r)
	if !ok {
		return
	}
	code := r.URL.Query().Get("code")
	if !h.checkCode(w, "BlockPeriods", code) {
		return
	}

	periods := rc.nav.BlockPeriods(start, end, code)
	dtos := make([]PeriodDTO, len(periods))
	for i, p := range periods {
		dtos[i] = toPeriodDTO(rc.nav, p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListPeriods lists display buckets between start and end.
func (h *Handler) ListPeriods(w http.ResponseWriter, r *http.Request) {
	rc, ok := h.load(w, r)
	if !ok {
		return
	}
	start, end, ok := h.span(w, r)
	if !ok {
		return
	}

	list := rc.nav.ListOfPeriods(start, end)
	dtos := make([]PeriodKeyDTO, len(list))
	for i, p := range list {
		dtos[i] = PeriodKeyDTO{Key: p.Key, Label: p.Label}
	}
	writeJSON(w, http.StatusOK, PeriodListResponse{
		Granularity: navigation.PreferredGranularity(start, end).String(),
		Periods:     dtos,
	})
}

// Formats returns every granularity selector for [start, end].
func (h *Handler) Formats(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.span(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, FormatDTO{
		Granularity: navigation.PreferredGranularity(start, end).String(),
		SortFormat:  navigation.PreferredSortFormat(start, end),
		LabelKey:    string(navigation.PreferredLabelKey(start, end)),
		SQLFormat:   navigation.PreferredSQLFormat(start, end),
		EndOfPeriod: navigation.PreferredEndOfPeriod(start, end),
		RangeFormat: navigation.PreferredRangeFormat(start, end),
	})
}

// =============================================================================
// RANGE HANDLERS
// =============================================================================

// CurrentRange returns the report range for the user's view range around
// date (default today). Rolling view ranges are kept as they are: they end
// today.
func (h *Handler) CurrentRange(w http.ResponseWriter, r *http.Request) {
	rc, ok := h.load(w, r)
	if !ok {
		return
	}

	date := h.now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		d, err := h.parseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD or RFC 3339)", err)
			return
		}
		date = d
	}

	code := navigation.ViewRange(rc.pref.ViewRange, false)
	start, err := rc.nav.UpdateStartDate(code, date)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	end, err := rc.nav.UpdateEndDate(code, start)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, RangeDTO{
		ViewRange: code,
		Code:      navigation.ViewRange(code, true),
		Start:     formatTime(start),
		End:       formatTime(end),
		Label:     rc.nav.PeriodShow(start, navigation.ViewRange(code, true)),
	})
}

// GetSessionRange returns the custom range, falling back to the current month.
func (h *Handler) GetSessionRange(w http.ResponseWriter, r *http.Request) {
	rc, ok := h.load(w, r)
	if !ok {
		return
	}
	_, selected := rc.session.CurrentRange()
	writeJSON(w, http.StatusOK, toSessionRangeDTO(rc.nav.CustomRange(), selected))
}

// SetSessionRange selects a custom range.
func (h *Handler) SetSessionRange(w http.ResponseWriter, r *http.Request) {
	rc, ok := h.load(w, r)
	if !ok {
		return
	}

	var req SetRangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	start, err := h.parseDate(req.Start)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start (use YYYY-MM-DD or RFC 3339)", err)
		return
	}
	end, err := h.parseDate(req.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end (use YYYY-MM-DD or RFC 3339)", err)
		return
	}

	selected := navigation.NewDateRange(start, end)
	rc.session.SetRange(selected)
	if err := rc.session.Save(r, w); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save session", err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionRangeDTO(selected, true))
}

// ClearSessionRange drops the custom range.
func (h *Handler) ClearSessionRange(w http.ResponseWriter, r *http.Request) {
	rc, ok := h.load(w, r)
	if !ok {
		return
	}
	rc.session.ClearRange()
	if err := rc.session.Save(r, w); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save session", err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionRangeDTO(rc.nav.CustomRange(), false))
}

// =============================================================================
// PREFERENCE HANDLERS
// =============================================================================

// GetPreferences returns the user's settings, or the defaults.
func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	rc, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toPreferenceDTO(rc.pref, rc.nav))
}

// SavePreferences replaces the user's settings.
func (h *Handler) SavePreferences(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(w, r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load session", err)
		return
	}

	var req SavePreferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	pref := sqlite.Preference{
		UserID:          s.UserID(),
		ViewRange:       req.ViewRange,
		FiscalYearStart: req.FiscalYearStart,
		Locale:          req.Locale,
	}
	if err := h.Store.SavePreference(r.Context(), pref); err != nil {
		if navigation.IsClientError(err) {
			h.writeEngineError(w, err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to save preferences", err)
		return
	}

	rc, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toPreferenceDTO(rc.pref, rc.nav))
}

// DeletePreferences drops the user's stored settings; later requests use the
// defaults again.
func (h *Handler) DeletePreferences(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(w, r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load session", err)
		return
	}

	if err := h.Store.DeletePreference(r.Context(), s.UserID()); err != nil {
		if errors.Is(err, sqlite.ErrPreferenceNotFound) {
			writeError(w, http.StatusNotFound, "No stored preferences", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete preferences", err)
		return
	}

	rc, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toPreferenceDTO(rc.pref, rc.nav))
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// BlockReport sums the posted entries over the block periods of code.
func (h *Handler) BlockReport(w http.ResponseWriter, r *http.Request) {
	rc, ok := h.load(w, r)
	if !ok {
		return
	}

	var req BlockReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	start, err := h.parseDate(req.Start)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start (use YYYY-MM-DD or RFC 3339)", err)
		return
	}
	end, err := h.parseDate(req.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end (use YYYY-MM-DD or RFC 3339)", err)
		return
	}
	if !h.checkCode(w, "BlockReport", req.Code) {
		return
	}

	totaler := report.NewBlockTotaler(rc.nav, start, end, req.Code)
	skipped := 0
	for i, e := range req.Entries {
		date, err := h.parseDate(e.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid date in entry %d", i), err)
			return
		}
		entry, err := report.NewEntry(date, e.Amount)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid amount in entry %d", i), err)
			return
		}
		if !totaler.Include(entry) {
			skipped++
		}
	}

	rows := totaler.Totals()
	dtos := make([]PeriodTotalDTO, len(rows))
	for i, row := range rows {
		dtos[i] = PeriodTotalDTO{
			PeriodDTO: PeriodDTO{
				Start:     formatTime(row.Start),
				End:       formatTime(row.End),
				Frequency: row.Frequency,
				Label:     row.Label,
			},
			Count:  row.Count,
			Total:  row.Total.StringFixed(2),
			Change: row.Change.StringFixed(2),
		}
	}
	writeJSON(w, http.StatusOK, BlockReportResponse{
		Periods: dtos,
		Total:   totaler.Sum().StringFixed(2),
		Skipped: skipped,
	})
}

// =============================================================================
// HELPERS
// =============================================================================

// dateOperation runs a date-in, date-out engine operation on the date and
// code query parameters.
func (h *Handler) dateOperation(w http.ResponseWriter, r *http.Request, op string,
	fn func(rc *requestContext, date time.Time, code string) (time.Time, error)) {
	rc, ok := h.load(w, r)
	if !ok {
		return
	}
	date, code, ok := h.dateAndCode(w, r, op)
	if !ok {
		return
	}

	result, err := fn(rc, date, code)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DateDTO{Code: code, Date: formatTime(result)})
}

// dateAndCode reads and validates the date and code query parameters. The
// code is checked up front so the degrade-and-log operations also answer 400
// over HTTP.
func (h *Handler) dateAndCode(w http.ResponseWriter, r *http.Request, op string) (time.Time, string, bool) {
	q := r.URL.Query()
	date, err := h.parseDate(q.Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD or RFC 3339)", err)
		return time.Time{}, "", false
	}
	code := q.Get("code")
	if !h.checkCode(w, op, code) {
		return time.Time{}, "", false
	}
	return date, code, true
}

func (h *Handler) checkCode(w http.ResponseWriter, op, code string) bool {
	if _, err := navigation.ParseFrequency(code); err != nil {
		h.writeEngineError(w, &navigation.UnsupportedFrequencyError{Code: code, Operation: op})
		return false
	}
	return true
}

func (h *Handler) span(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	q := r.URL.Query()
	start, err := h.parseDate(q.Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start (use YYYY-MM-DD or RFC 3339)", err)
		return time.Time{}, time.Time{}, false
	}
	end, err := h.parseDate(q.Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end (use YYYY-MM-DD or RFC 3339)", err)
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// writeEngineError maps engine errors to 400 and counts unsupported codes.
func (h *Handler) writeEngineError(w http.ResponseWriter, err error) {
	var freqErr *navigation.UnsupportedFrequencyError
	if errors.As(err, &freqErr) {
		if h.Metrics != nil {
			h.Metrics.UnsupportedFrequencies.WithLabelValues(freqErr.Operation).Inc()
		}
		writeError(w, http.StatusBadRequest, "Unsupported frequency", err)
		return
	}
	if navigation.IsClientError(err) {
		writeError(w, http.StatusBadRequest, "Invalid input", err)
		return
	}
	writeError(w, http.StatusBadRequest, "Invalid request", err)
}

// parseDate accepts YYYY-MM-DD (midnight in h.Location) or RFC 3339.
func (h *Handler) parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("date is required")
	}
	loc := h.Location
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(loc), nil
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", name)
	}
	return n, nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func toPeriodDTO(nav *navigation.Navigator, p navigation.PeriodDescriptor) PeriodDTO {
	return PeriodDTO{
		Start:     formatTime(p.Start),
		End:       formatTime(p.End),
		Frequency: p.Frequency,
		Label:     nav.PeriodShow(p.Start, p.Frequency),
	}
}

func toSessionRangeDTO(r navigation.DateRange, selected bool) SessionRangeDTO {
	return SessionRangeDTO{
		Start:    formatTime(r.Start),
		End:      formatTime(r.End),
		Days:     r.Days(),
		Selected: selected,
	}
}

func toPreferenceDTO(p sqlite.Preference, nav *navigation.Navigator) PreferenceDTO {
	dto := PreferenceDTO{
		UserID:    p.UserID,
		ViewRange: navigation.ViewRange(p.ViewRange, false),
		Locale:    p.Locale,
	}
	if fc, ok := nav.Fiscal.(navigation.FiscalCalendar); ok {
		dto.FiscalYearStart = fc.String()
	}
	if !p.UpdatedAt.IsZero() {
		dto.UpdatedAt = p.UpdatedAt.Format(time.RFC3339)
	}
	return dto
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
