package core

import (
	"math"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		used float64
		want Tier
	}{
		{used: -5, want: TierGood},
		{used: 0, want: TierGood},
		{used: 49, want: TierGood},
		{used: 49.99, want: TierGood},
		{used: 50, want: TierWarning},
		{used: 62, want: TierWarning},
		{used: 79, want: TierWarning},
		{used: 79.99, want: TierWarning},
		{used: 80, want: TierCritical},
		{used: 100, want: TierCritical},
		{used: 140, want: TierCritical},
	}

	for _, tt := range tests {
		if got := Classify(tt.used); got != tt.want {
			t.Errorf("Classify(%v) = %q, want %q", tt.used, got, tt.want)
		}
	}
}

func TestTierLabel(t *testing.T) {
	if TierGood.Label() != "Good" || TierWarning.Label() != "Warning" || TierCritical.Label() != "Critical" {
		t.Fatalf("unexpected tier labels: %q %q %q", TierGood.Label(), TierWarning.Label(), TierCritical.Label())
	}
	if Tier("").Label() != "--" {
		t.Fatalf("empty tier label = %q, want --", Tier("").Label())
	}
}

func TestProgressFillSaturates(t *testing.T) {
	tests := []struct {
		used float64
		want float64
	}{
		{used: -20, want: 0},
		{used: 0, want: 0},
		{used: 37.5, want: 37.5},
		{used: 100, want: 100},
		{used: 250, want: 100},
		{used: math.NaN(), want: 0},
	}
	for _, tt := range tests {
		if got := ProgressFill(tt.used); got != tt.want {
			t.Errorf("ProgressFill(%v) = %v, want %v", tt.used, got, tt.want)
		}
	}
}

func TestProgressFillMonotonic(t *testing.T) {
	prev := ProgressFill(-50)
	for used := -50.0; used <= 150; used += 0.5 {
		got := ProgressFill(used)
		if got < prev {
			t.Fatalf("ProgressFill not monotonic at %v: %v < %v", used, got, prev)
		}
		if got < 0 || got > 100 {
			t.Fatalf("ProgressFill(%v) = %v out of range", used, got)
		}
		prev = got
	}
}

func TestUsageWindowDerivedValues(t *testing.T) {
	w := UsageWindow{ID: WindowFiveHour, Utilization: 79.6}
	if w.RoundedUtilization() != 80 {
		t.Fatalf("RoundedUtilization = %d, want 80", w.RoundedUtilization())
	}
	if w.Tier() != TierCritical {
		t.Fatalf("Tier = %q, want critical", w.Tier())
	}
	if w.RemainingPercent() != 20 {
		t.Fatalf("RemainingPercent = %d, want 20", w.RemainingPercent())
	}

	over := UsageWindow{ID: WindowSevenDay, Utilization: 104}
	if over.RemainingPercent() != -4 {
		t.Fatalf("over-limit RemainingPercent = %d, want -4", over.RemainingPercent())
	}
}
