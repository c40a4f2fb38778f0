package types

import (
	"math"
	"testing"
	"time"
)

func TestNewSeries(t *testing.T) {
	at := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	candles := []Candle{
		{Open: 1.0, High: 1.2, Low: 0.9, Close: 1.1, Timestamp: at},
		{Open: 1.1, High: 1.3, Low: 1.0, Close: 1.2, Timestamp: at.Add(time.Hour)},
	}

	s := NewSeries(candles)
	if s.Len() != 2 {
		t.Fatalf("len want 2, got %d", s.Len())
	}
	if s.High[1] != 1.3 || s.Low[0] != 0.9 {
		t.Fatalf("slices not populated: %+v", s)
	}
	if !s.Timestamps[1].Equal(at.Add(time.Hour)) {
		t.Fatalf("timestamps not populated")
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("valid series rejected: %v", err)
	}
}

func TestValidateLengthMismatch(t *testing.T) {
	s := Series{
		Open:  []float64{1, 2},
		High:  []float64{1, 2, 3},
		Low:   []float64{1, 2},
		Close: []float64{1, 2},
	}
	if err := s.Validate(); err == nil {
		t.Fatal("length mismatch must be rejected")
	}
}

func TestValidateTimestampMismatch(t *testing.T) {
	s := Series{
		Open:       []float64{1, 2},
		High:       []float64{1, 2},
		Low:        []float64{1, 2},
		Close:      []float64{1, 2},
		Timestamps: []time.Time{time.Now()},
	}
	if err := s.Validate(); err == nil {
		t.Fatal("timestamp length mismatch must be rejected")
	}
}

func TestValidateNonFinite(t *testing.T) {
	s := Series{
		Open:  []float64{1, math.NaN()},
		High:  []float64{1, 2},
		Low:   []float64{1, 2},
		Close: []float64{1, 2},
	}
	if err := s.Validate(); err == nil {
		t.Fatal("NaN must be rejected")
	}

	s.Open[1] = math.Inf(1)
	if err := s.Validate(); err == nil {
		t.Fatal("Inf must be rejected")
	}
}

func TestValidateEmptySeriesOK(t *testing.T) {
	var s Series
	if err := s.Validate(); err != nil {
		t.Fatalf("empty series should be valid: %v", err)
	}
}
