package calendar

import (
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/Mad-three/server/internal/apperr"
	"github.com/Mad-three/server/internal/config"
)

func newTestSerializer() *Serializer {
	s := NewSerializer(config.CalendarConfig{
		TimezoneID:       "Asia/Seoul",
		UTCOffsetMinutes: 540,
		ProdID:           "EventMap",
		UIDDomain:        "eventmap.com",
	})
	s.now = func() time.Time { return time.Date(2024, 8, 1, 12, 30, 45, 0, time.UTC) }
	return s
}

func TestLocalWallClock(t *testing.T) {
	cases := []struct {
		name          string
		instant       time.Time
		offsetMinutes int
		want          string
	}{
		{
			name:          "UTC morning is Seoul evening",
			instant:       time.Date(2024, 8, 15, 9, 0, 0, 0, time.UTC),
			offsetMinutes: 540,
			want:          "20240815T180000",
		},
		{
			name:          "crosses the date line forward",
			instant:       time.Date(2024, 8, 15, 23, 30, 0, 0, time.UTC),
			offsetMinutes: 540,
			want:          "20240816T083000",
		},
		{
			name:          "negative offset crosses midnight backward",
			instant:       time.Date(2024, 3, 1, 2, 0, 0, 0, time.UTC),
			offsetMinutes: -300,
			want:          "20240229T210000",
		},
		{
			name:          "zero offset is identity",
			instant:       time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
			offsetMinutes: 0,
			want:          "20240102T030405",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := LocalWallClock(tc.instant, tc.offsetMinutes).Format(); got != tc.want {
				t.Errorf("LocalWallClock(%v, %d) = %s, want %s", tc.instant, tc.offsetMinutes, got, tc.want)
			}
		})
	}
}

func TestLocalWallClockIgnoresAmbientTimezone(t *testing.T) {
	// The instant carries a non-UTC location; the result must not change.
	loc := time.FixedZone("Somewhere", -7*3600)
	instant := time.Date(2024, 8, 15, 9, 0, 0, 0, time.UTC).In(loc)

	if got := LocalWallClock(instant, 540).Format(); got != "20240815T180000" {
		t.Errorf("wall clock depends on the instant's location: got %s, want 20240815T180000", got)
	}
}

func TestFormatOffset(t *testing.T) {
	cases := []struct {
		minutes int
		want    string
	}{
		{540, "+0900"},
		{-300, "-0500"},
		{0, "+0000"},
		{345, "+0545"},
	}
	for _, tc := range cases {
		if got := formatOffset(tc.minutes); got != tc.want {
			t.Errorf("formatOffset(%d) = %s, want %s", tc.minutes, got, tc.want)
		}
	}
}

func TestRenderFieldOrderAndLineEndings(t *testing.T) {
	s := newTestSerializer()
	payload, err := s.Render(Schedule{
		Title:       "Launch Party",
		Description: "Rooftop celebration",
		Location:    "HQ Roof",
		StartAt:     time.Date(2024, 8, 15, 9, 0, 0, 0, time.UTC),
		EndAt:       time.Date(2024, 8, 15, 14, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if strings.Contains(strings.ReplaceAll(payload, "\r\n", ""), "\n") {
		t.Fatal("payload contains bare LF line endings")
	}

	lines := strings.Split(strings.TrimSuffix(payload, "\r\n"), "\r\n")
	want := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:EventMap",
		"CALSCALE:GREGORIAN",
		"BEGIN:VTIMEZONE",
		"TZID:Asia/Seoul",
		"BEGIN:STANDARD",
		"DTSTART:19700101T000000",
		"TZNAME:GMT+09:00",
		"TZOFFSETFROM:+0900",
		"TZOFFSETTO:+0900",
		"END:STANDARD",
		"END:VTIMEZONE",
		"BEGIN:VEVENT",
		"SEQUENCE:0",
		"CLASS:PUBLIC",
		"TRANSP:OPAQUE",
		"", // UID, random
		"DTSTART;TZID=Asia/Seoul:20240815T180000",
		"DTEND;TZID=Asia/Seoul:20240815T230000",
		"SUMMARY:Launch Party",
		"DESCRIPTION:Rooftop celebration",
		"LOCATION:HQ Roof",
		"DTSTAMP:20240801T123045Z",
		"END:VEVENT",
		"END:VCALENDAR",
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d:\n%s", len(want), len(lines), payload)
	}
	for i, w := range want {
		if i == 17 {
			if !strings.HasPrefix(lines[i], "UID:") || !strings.HasSuffix(lines[i], "@eventmap.com") {
				t.Errorf("line %d = %q, want UID:<uuid>@eventmap.com", i, lines[i])
			}
			continue
		}
		if lines[i] != w {
			t.Errorf("line %d = %q, want %q", i, lines[i], w)
		}
	}
}

func TestRenderMintsFreshUIDPerCall(t *testing.T) {
	s := newTestSerializer()
	sch := Schedule{
		Title:   "Standup",
		StartAt: time.Date(2024, 8, 15, 9, 0, 0, 0, time.UTC),
		EndAt:   time.Date(2024, 8, 15, 10, 0, 0, 0, time.UTC),
	}

	first, err := s.Render(sch)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	second, err := s.Render(sch)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if uidLine(t, first) == uidLine(t, second) {
		t.Fatal("expected a fresh UID on every render")
	}
}

func uidLine(t *testing.T, payload string) string {
	t.Helper()
	for _, line := range strings.Split(payload, "\r\n") {
		if strings.HasPrefix(line, "UID:") {
			return line
		}
	}
	t.Fatal("payload has no UID line")
	return ""
}

func TestRenderEscapesFreeText(t *testing.T) {
	s := newTestSerializer()
	payload, err := s.Render(Schedule{
		Title:       "Dinner; drinks, maybe\\dancing",
		Description: "line one\nline two",
		Location:    "Seoul, KR",
		StartAt:     time.Date(2024, 8, 15, 9, 0, 0, 0, time.UTC),
		EndAt:       time.Date(2024, 8, 15, 14, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if !strings.Contains(payload, `SUMMARY:Dinner\; drinks\, maybe\\dancing`) {
		t.Errorf("summary not escaped: %s", payload)
	}
	if !strings.Contains(payload, `DESCRIPTION:line one\nline two`) {
		t.Errorf("description newline not escaped: %s", payload)
	}
	if !strings.Contains(payload, `LOCATION:Seoul\, KR`) {
		t.Errorf("location not escaped: %s", payload)
	}
}

func TestRenderRejectsInvalidTimes(t *testing.T) {
	s := newTestSerializer()
	_, err := s.Render(Schedule{
		Title: "Broken",
		EndAt: time.Date(2024, 8, 15, 14, 0, 0, 0, time.UTC),
	})
	if apperr.KindOf(err) != apperr.KindInvalidEventTime {
		t.Fatalf("expected KindInvalidEventTime, got %v", err)
	}
}

func TestRenderedPayloadParsesAsICalendar(t *testing.T) {
	s := newTestSerializer()
	payload, err := s.Render(Schedule{
		Title:       "Launch Party",
		Description: "Rooftop celebration",
		Location:    "HQ Roof",
		StartAt:     time.Date(2024, 8, 15, 9, 0, 0, 0, time.UTC),
		EndAt:       time.Date(2024, 8, 15, 14, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	cal, err := ics.ParseCalendar(strings.NewReader(payload))
	if err != nil {
		t.Fatalf("rendered payload is not parseable iCalendar: %v", err)
	}
	events := cal.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 VEVENT, got %d", len(events))
	}

	summary := events[0].GetProperty(ics.ComponentPropertySummary)
	if summary == nil || summary.Value != "Launch Party" {
		t.Fatalf("parsed summary = %+v, want Launch Party", summary)
	}
	uid := events[0].GetProperty(ics.ComponentPropertyUniqueId)
	if uid == nil || uid.Value == "" {
		t.Fatal("parsed event has no UID")
	}
}
