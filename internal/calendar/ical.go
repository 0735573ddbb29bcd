// Package calendar renders events into the provider's iCalendar-style
// exchange format and publishes them through the provider's schedule
// API, including the single refresh-then-retry recovery cycle.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Mad-three/server/internal/apperr"
	"github.com/Mad-three/server/internal/config"
	"github.com/Mad-three/server/internal/db/models"
)

// crlf is the line terminator the wire grammar requires between every
// content line, regardless of what the surrounding HTTP stack defaults to.
const crlf = "\r\n"

// WallClock is a local calendar date and time of day in the fixed
// target timezone.
type WallClock struct {
	Year, Month, Day     int
	Hour, Minute, Second int
}

// LocalWallClock converts a UTC instant into the target zone's wall
// clock by shifting the instant by the fixed offset and reading the
// shifted instant's UTC components. The ambient process timezone never
// participates; the result is a pure function of (instant, offset).
func LocalWallClock(t time.Time, offsetMinutes int) WallClock {
	shifted := t.UTC().Add(time.Duration(offsetMinutes) * time.Minute)
	return WallClock{
		Year:   shifted.Year(),
		Month:  int(shifted.Month()),
		Day:    shifted.Day(),
		Hour:   shifted.Hour(),
		Minute: shifted.Minute(),
		Second: shifted.Second(),
	}
}

// Format renders the wall clock as the wire format's 15-character
// timestamp: YYYYMMDDTHHMMSS, zero padded, no separators.
func (w WallClock) Format() string {
	return fmt.Sprintf("%04d%02d%02dT%02d%02d%02d", w.Year, w.Month, w.Day, w.Hour, w.Minute, w.Second)
}

// Schedule is the transient export request derived from an event for
// one publish attempt.
type Schedule struct {
	Title       string
	Description string
	Location    string
	StartAt     time.Time
	EndAt       time.Time
}

// ScheduleFromEvent projects a stored event onto the export shape.
func ScheduleFromEvent(event *models.Event) Schedule {
	return Schedule{
		Title:       event.Title,
		Description: event.Description,
		Location:    event.Location,
		StartAt:     event.StartAt,
		EndAt:       event.EndAt,
	}
}

// Serializer renders schedules as iCalendar payloads for a single fixed
// target timezone.
type Serializer struct {
	timezoneID    string
	offsetMinutes int
	prodID        string
	uidDomain     string

	now    func() time.Time
	newUID func() string
}

// NewSerializer builds a Serializer from the calendar configuration.
func NewSerializer(cfg config.CalendarConfig) *Serializer {
	return &Serializer{
		timezoneID:    cfg.TimezoneID,
		offsetMinutes: cfg.UTCOffsetMinutes,
		prodID:        cfg.ProdID,
		uidDomain:     cfg.UIDDomain,
		now:           time.Now,
		newUID:        func() string { return uuid.New().String() },
	}
}

// Render produces the full payload text. Every call mints a fresh UID,
// so a retried publish after a token refresh sends a new identifier.
// Schedules whose instants are invalid fail before any rendering so an
// unusable timestamp is never sent to the provider.
func (s *Serializer) Render(sch Schedule) (string, error) {
	if sch.StartAt.IsZero() || sch.EndAt.IsZero() {
		return "", apperr.New(apperr.KindInvalidEventTime, "event has invalid start or end time")
	}

	start := LocalWallClock(sch.StartAt, s.offsetMinutes)
	end := LocalWallClock(sch.EndAt, s.offsetMinutes)
	stamp := LocalWallClock(s.now(), 0)
	uid := s.newUID() + "@" + s.uidDomain
	offset := formatOffset(s.offsetMinutes)
	label := offsetLabel(s.offsetMinutes)

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + s.prodID,
		"CALSCALE:GREGORIAN",
		"BEGIN:VTIMEZONE",
		"TZID:" + s.timezoneID,
		"BEGIN:STANDARD",
		"DTSTART:19700101T000000",
		"TZNAME:" + label,
		"TZOFFSETFROM:" + offset,
		"TZOFFSETTO:" + offset,
		"END:STANDARD",
		"END:VTIMEZONE",
		"BEGIN:VEVENT",
		"SEQUENCE:0",
		"CLASS:PUBLIC",
		"TRANSP:OPAQUE",
		"UID:" + uid,
		"DTSTART;TZID=" + s.timezoneID + ":" + start.Format(),
		"DTEND;TZID=" + s.timezoneID + ":" + end.Format(),
		"SUMMARY:" + escapeText(sch.Title),
		"DESCRIPTION:" + escapeText(sch.Description),
		"LOCATION:" + escapeText(sch.Location),
		"DTSTAMP:" + stamp.Format() + "Z",
		"END:VEVENT",
		"END:VCALENDAR",
	}
	return strings.Join(lines, crlf) + crlf, nil
}

// formatOffset renders a minute offset as ±HHMM.
func formatOffset(minutes int) string {
	sign := "+"
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	return fmt.Sprintf("%s%02d%02d", sign, minutes/60, minutes%60)
}

// offsetLabel renders the TZNAME value, e.g. GMT+09:00.
func offsetLabel(minutes int) string {
	sign := "+"
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	return fmt.Sprintf("GMT%s%02d:%02d", sign, minutes/60, minutes%60)
}

// escapeText escapes free-text values per the iCalendar grammar:
// backslash, semicolon and comma are backslash-escaped and line breaks
// become a literal \n sequence.
func escapeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			b.WriteString(`\\`)
		case ';':
			b.WriteString(`\;`)
		case ',':
			b.WriteString(`\,`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			// Part of CRLF or a stray CR; the following \n (if any)
			// produces the escape.
			if i+1 >= len(s) || s[i+1] != '\n' {
				b.WriteString(`\n`)
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
