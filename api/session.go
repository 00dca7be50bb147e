/*
session.go - Cookie session holding the user id and custom range

PURPOSE:
  The custom frequency takes its length from the range the user selected
  last. That range lives in the session, not the database, the way the
  report pages keep it per browser. The session also carries a generated
  user id that keys stored preferences.

VALUES:
  user_id:      uuid minted on first visit
  range_start:  RFC 3339
  range_end:    RFC 3339

SEE ALSO:
  - navigation/period.go: RangeSource
*/
package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/warp/period-engine/navigation"
)

const (
	// DefaultSessionName names the cookie when Handler.SessionName is empty.
	DefaultSessionName = "period-session"

	keyUserID     = "user_id"
	keyRangeStart = "range_start"
	keyRangeEnd   = "range_end"
)

// PeriodSession wraps a gorilla session. It implements navigation.RangeSource.
type PeriodSession struct {
	*sessions.Session
}

// UserID returns the session's user id, "" if none was minted yet.
func (s *PeriodSession) UserID() string {
	id, _ := s.Values[keyUserID].(string)
	return id
}

// CurrentRange returns the selected custom range.
func (s *PeriodSession) CurrentRange() (navigation.DateRange, bool) {
	start, ok1 := s.Values[keyRangeStart].(string)
	end, ok2 := s.Values[keyRangeEnd].(string)
	if !ok1 || !ok2 {
		return navigation.DateRange{}, false
	}
	startAt, err := time.Parse(time.RFC3339Nano, start)
	if err != nil {
		return navigation.DateRange{}, false
	}
	endAt, err := time.Parse(time.RFC3339Nano, end)
	if err != nil {
		return navigation.DateRange{}, false
	}
	return navigation.NewDateRange(startAt, endAt), true
}

// SetRange stores r as the custom range.
func (s *PeriodSession) SetRange(r navigation.DateRange) {
	s.Values[keyRangeStart] = r.Start.Format(time.RFC3339Nano)
	s.Values[keyRangeEnd] = r.End.Format(time.RFC3339Nano)
}

// ClearRange drops the custom range; CustomRange falls back to the current
// month.
func (s *PeriodSession) ClearRange() {
	delete(s.Values, keyRangeStart)
	delete(s.Values, keyRangeEnd)
}

// session loads the request's session, minting and saving a user id on first
// visit. Saving sets a cookie, so it must run before the response is written.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*PeriodSession, error) {
	name := h.SessionName
	if name == "" {
		name = DefaultSessionName
	}
	s, err := h.Sessions.Get(r, name)
	if err != nil && s == nil {
		return nil, err
	}
	// A cookie that no longer decodes (rotated secret) yields a fresh session.
	ps := &PeriodSession{Session: s}
	if ps.UserID() == "" {
		ps.Values[keyUserID] = uuid.NewString()
		if err := ps.Save(r, w); err != nil {
			return nil, err
		}
	}
	return ps, nil
}
