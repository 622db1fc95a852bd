package utils

import (
	"sync"
	"time"
	_ "time/tzdata"

	"secmaster/src/logger"

	"github.com/scmhub/calendar"
)

// ExchangeMIC is the calendar used for US equity sessions.
const ExchangeMIC = "xnys"

const dateLayout = "2006-01-02"

// TradingCalendar answers holiday and business day questions for the US
// equity market. Dates are civil dates: midnight UTC of the calendar day.
type TradingCalendar struct {
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location

	overrides map[string]bool // dates removed from the holiday set
	static    map[string]bool // fixed holiday set, bypasses the exchange calendar

	mu    sync.Mutex
	cache map[int]map[string]bool
}

// -----------------------------------------------------------------------------

// NewUSCalendar loads the NYSE calendar. When it cannot be loaded the
// holiday set is empty and only weekends are skipped.
func NewUSCalendar(log *logger.Logger) *TradingCalendar {
	tc := &TradingCalendar{
		Timezone: NewYork(),
		overrides: map[string]bool{
			// Exchange open on the observed New Year's Day 2022.
			"2021-12-31": true,
		},
		cache: make(map[int]map[string]bool),
	}

	cal := calendar.GetCalendar(ExchangeMIC)
	if cal == nil {
		if log != nil {
			log.Warning("Failed to load calendar for MIC '%s'. Using weekday-only fallback.", ExchangeMIC)
		}
		tc.Fallback = true
		return tc
	}

	tc.Calendar = cal
	if cal.Loc != nil {
		tc.Timezone = cal.Loc
	}
	return tc
}

// -----------------------------------------------------------------------------

// NewStaticCalendar builds a calendar with a fixed holiday list.
func NewStaticCalendar(holidays ...time.Time) *TradingCalendar {
	tc := &TradingCalendar{
		Timezone: NewYork(),
		static:   make(map[string]bool, len(holidays)),
		cache:    make(map[int]map[string]bool),
	}
	for _, h := range holidays {
		tc.static[h.Format(dateLayout)] = true
	}
	return tc
}

// -----------------------------------------------------------------------------

// HolidaysForYear returns the weekday market holidays of a year, sorted.
func (tc *TradingCalendar) HolidaysForYear(year int) []time.Time {
	set := tc.holidaySet(year)

	var out []time.Time
	for d := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC); d.Year() == year; d = d.AddDate(0, 0, 1) {
		if set[d.Format(dateLayout)] {
			out = append(out, d)
		}
	}
	return out
}

// -----------------------------------------------------------------------------

func (tc *TradingCalendar) holidaySet(year int) map[string]bool {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if set, ok := tc.cache[year]; ok {
		return set
	}

	set := make(map[string]bool)
	for d := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC); d.Year() == year; d = d.AddDate(0, 0, 1) {
		if isWeekend(d) {
			continue
		}
		key := d.Format(dateLayout)
		if tc.overrides[key] {
			continue
		}

		switch {
		case tc.static != nil:
			if tc.static[key] {
				set[key] = true
			}
		case tc.Fallback:
		default:
			// Ask at local noon so the session day is unambiguous.
			noon := time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, tc.Timezone)
			if !tc.Calendar.IsBusinessDay(noon) {
				set[key] = true
			}
		}
	}

	tc.cache[year] = set
	return set
}

// -----------------------------------------------------------------------------

// IsHoliday reports whether the civil date is a weekday market holiday.
func (tc *TradingCalendar) IsHoliday(date time.Time) bool {
	return tc.holidaySet(date.Year())[date.Format(dateLayout)]
}

// -----------------------------------------------------------------------------

func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	return !isWeekend(date) && !tc.IsHoliday(date)
}

// -----------------------------------------------------------------------------

// PreviousBusinessDay returns the most recent trading day strictly before
// date. Monday steps back to Friday, Sunday to Friday, Saturday to Friday,
// any other day to the day before; holidays are skipped recursively.
func (tc *TradingCalendar) PreviousBusinessDay(date time.Time) time.Time {
	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	weekday := (int(date.Weekday()) + 6) % 7 // Monday = 0
	offset := (weekday+6)%7 - 3
	if offset < 1 {
		offset = 1
	}

	prev := date.AddDate(0, 0, -offset)
	if tc.IsHoliday(prev) {
		return tc.PreviousBusinessDay(prev)
	}
	return prev
}

// -----------------------------------------------------------------------------

// DateOf returns the calendar date of t in loc as a civil date.
func DateOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// -----------------------------------------------------------------------------

var (
	nyOnce sync.Once
	nyLoc  *time.Location
)

// NewYork returns the America/New_York location, or UTC when the tz
// database is unavailable.
func NewYork() *time.Location {
	nyOnce.Do(func() {
		loc, err := time.LoadLocation("America/New_York")
		if err != nil {
			loc = time.UTC
		}
		nyLoc = loc
	})
	return nyLoc
}

// -----------------------------------------------------------------------------

func isWeekend(d time.Time) bool {
	w := d.Weekday()
	return w == time.Saturday || w == time.Sunday
}
