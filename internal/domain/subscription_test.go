package domain

import (
	"testing"
	"time"
)

func TestCalculateROI(t *testing.T) {
	cases := []struct {
		name    string
		initial int64
		current int64
		want    int64
	}{
		{"ten percent gain", 100000, 110000, 1000},
		{"flat", 100000, 100000, 0},
		{"loss", 100000, 95000, -500},
		{"zero initial", 0, 50000, 0},
		{"negative initial", -100, 50000, 0},
		{"fractional floors toward zero", 30000, 30100, 33},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := Subscription{InitialInvestment: tc.initial, CurrentValue: tc.current}
			if got := s.CalculateROI(); got != tc.want {
				t.Fatalf("CalculateROI() = %d, want %d", got, tc.want)
			}
			if s.ROIBps != tc.want {
				t.Fatalf("ROIBps = %d, want %d", s.ROIBps, tc.want)
			}
		})
	}
}

func TestROIPercent(t *testing.T) {
	s := Subscription{ROIBps: 1250}
	if got := s.ROIPercent(); got != 12.5 {
		t.Fatalf("ROIPercent() = %v, want 12.5", got)
	}
}

func TestDurationRemaining(t *testing.T) {
	now := time.Now().UTC()

	s := Subscription{Status: SubscriptionActive, PlannedEndDate: now.Add(90*24*time.Hour + time.Hour)}
	if got := s.DurationRemaining(now); got != 90 {
		t.Fatalf("DurationRemaining() = %d, want 90", got)
	}

	s.PlannedEndDate = now.Add(-time.Hour)
	if got := s.DurationRemaining(now); got != 0 {
		t.Fatalf("expected zero days past the planned end, got %d", got)
	}

	s.Status = SubscriptionPaused
	s.PlannedEndDate = now.Add(90 * 24 * time.Hour)
	if got := s.DurationRemaining(now); got != 0 {
		t.Fatalf("expected zero days for a paused subscription, got %d", got)
	}
}

func TestIsLive(t *testing.T) {
	for _, status := range []string{SubscriptionActive, SubscriptionPaused} {
		s := Subscription{Status: status}
		if !s.IsLive() {
			t.Fatalf("expected %q to be live", status)
		}
	}
	for _, status := range []string{SubscriptionCompleted, SubscriptionCancelled} {
		s := Subscription{Status: status}
		if s.IsLive() {
			t.Fatalf("expected %q not to be live", status)
		}
	}
}
