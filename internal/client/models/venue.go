package models

import (
	"strconv"
	"strings"
	"time"
)

// OpeningHours is one day's "HH:MM" opening window. A close time at or past
// 24:00 ("25:30") runs into the next day.
type OpeningHours struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// Venue is an arcade listing as served by the venue service.
// BusinessHours is keyed by lower-case English weekday name.
type Venue struct {
	ID            string                  `json:"id"`
	Name          string                  `json:"name"`
	Address       string                  `json:"address"`
	Latitude      float64                 `json:"latitude"`
	Longitude     float64                 `json:"longitude"`
	Cabinets      int                     `json:"cabinets"`
	Versions      []string                `json:"versions"`
	Facilities    []string                `json:"facilities"`
	BusinessHours map[string]OpeningHours `json:"businessHours"`
	SpecialNotice string                  `json:"specialNotice,omitempty"`
	UpdatedAt     time.Time               `json:"updatedAt"`
}

// VenueCache is the locally persisted catalogue and when it was fetched.
type VenueCache struct {
	Venues    []Venue   `json:"venues"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// OpenAt reports whether the venue is open at t, judged by the hours listed
// for t's weekday in t's location. Missing or malformed hours count as
// closed.
func (v Venue) OpenAt(t time.Time) bool {
	h, ok := v.BusinessHours[strings.ToLower(t.Weekday().String())]
	if !ok {
		return false
	}
	open, ok1 := clockValue(h.Open)
	closing, ok2 := clockValue(h.Close)
	if !ok1 || !ok2 {
		return false
	}

	now := t.Hour()*100 + t.Minute()
	if closing >= 2400 {
		return now >= open || now <= closing-2400
	}
	return now >= open && now <= closing
}

// clockValue turns "HH:MM" into HHMM.
func clockValue(s string) (int, bool) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, false
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, false
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 || h < 0 {
		return 0, false
	}
	return h*100 + m, true
}
