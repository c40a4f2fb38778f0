package sessions

import "time"

// Session identifies a major forex trading session
type Session string

const (
	Tokyo   Session = "tokyo"
	London  Session = "london"
	NewYork Session = "new_york"
	Sydney  Session = "sydney"
)

// Info holds a session's UTC calendar. Winter (non-DST) hours are used
// throughout; Tokyo has no DST at all.
type Info struct {
	Session  Session `json:"session"`
	OpenUTC  int     `json:"open_utc"`  // exchange open hour, UTC
	StartUTC int     `json:"start_utc"` // forex session start hour, UTC
	EndUTC   int     `json:"end_utc"`   // forex session end hour, UTC
}

var calendar = map[Session]Info{
	Tokyo:   {Session: Tokyo, OpenUTC: 0, StartUTC: 0, EndUTC: 6},
	London:  {Session: London, OpenUTC: 8, StartUTC: 8, EndUTC: 16},
	NewYork: {Session: NewYork, OpenUTC: 14, StartUTC: 13, EndUTC: 21},
	Sydney:  {Session: Sydney, OpenUTC: 23, StartUTC: 21, EndUTC: 6},
}

// Lookup returns the calendar entry for a session.
func Lookup(s Session) (Info, bool) {
	info, ok := calendar[s]
	return info, ok
}

// OpenIndex returns the index of the most recent candle at or after the
// session's opening hour, scanning newest to oldest. ok=false when the
// series has no timestamps or no candle matches.
func OpenIndex(timestamps []time.Time, s Session) (int, bool) {
	info, ok := calendar[s]
	if !ok || len(timestamps) == 0 {
		return 0, false
	}

	for i := len(timestamps) - 1; i >= 0; i-- {
		if timestamps[i].UTC().Hour() == info.OpenUTC {
			return i, true
		}
	}
	return 0, false
}

// Active reports which sessions are open at the given instant.
func Active(t time.Time) []Session {
	hour := t.UTC().Hour()
	var out []Session
	for _, s := range []Session{Sydney, Tokyo, London, NewYork} {
		info := calendar[s]
		if info.StartUTC <= info.EndUTC {
			if hour >= info.StartUTC && hour < info.EndUTC {
				out = append(out, s)
			}
		} else { // wraps midnight
			if hour >= info.StartUTC || hour < info.EndUTC {
				out = append(out, s)
			}
		}
	}
	return out
}
