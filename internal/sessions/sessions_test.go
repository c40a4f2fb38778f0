package sessions

import (
	"testing"
	"time"
)

func TestLookup(t *testing.T) {
	info, ok := Lookup(London)
	if !ok {
		t.Fatal("london session missing")
	}
	if info.OpenUTC != 8 {
		t.Fatalf("london open want 8 UTC, got %d", info.OpenUTC)
	}

	if _, ok := Lookup(Session("mars")); ok {
		t.Fatal("unknown session should not resolve")
	}
}

func TestOpenIndexPicksMostRecent(t *testing.T) {
	// 30 hourly candles starting at midnight: hour 0 occurs at index 0
	// and again at index 24.
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	timestamps := make([]time.Time, 30)
	for i := range timestamps {
		timestamps[i] = base.Add(time.Duration(i) * time.Hour)
	}

	idx, ok := OpenIndex(timestamps, Tokyo)
	if !ok {
		t.Fatal("expected a tokyo open candle")
	}
	if idx != 24 {
		t.Fatalf("tokyo open index want 24, got %d", idx)
	}

	idx, ok = OpenIndex(timestamps, NewYork)
	if !ok {
		t.Fatal("expected a new york open candle")
	}
	if idx != 14 {
		t.Fatalf("new york open index want 14, got %d", idx)
	}
}

func TestOpenIndexNoMatch(t *testing.T) {
	// Only three early-morning candles: London never opened.
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	timestamps := []time.Time{base, base.Add(time.Hour), base.Add(2 * time.Hour)}

	if _, ok := OpenIndex(timestamps, London); ok {
		t.Fatal("no london open candle should be found")
	}
	if _, ok := OpenIndex(nil, London); ok {
		t.Fatal("empty timestamps should not resolve")
	}
}

func TestActive(t *testing.T) {
	cases := []struct {
		hour int
		want []Session
	}{
		{9, []Session{London}},
		{14, []Session{London, NewYork}},
		{2, []Session{Sydney, Tokyo}},
		{22, []Session{Sydney}},
	}

	for _, c := range cases {
		at := time.Date(2024, 1, 2, c.hour, 30, 0, 0, time.UTC)
		got := Active(at)
		if len(got) != len(c.want) {
			t.Fatalf("hour %d: want %v, got %v", c.hour, c.want, got)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Fatalf("hour %d: want %v, got %v", c.hour, c.want, got)
			}
		}
	}
}
