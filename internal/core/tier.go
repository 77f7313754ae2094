package core

import (
	"math"

	"github.com/samber/lo"
)

// Tier is the severity bucket of a utilization percentage.
type Tier string

const (
	TierGood     Tier = "good"
	TierWarning  Tier = "warning"
	TierCritical Tier = "critical"
)

const (
	WarningThreshold  = 50.0
	CriticalThreshold = 80.0
)

// Classify buckets a used percentage. Each tier includes its lower bound.
func Classify(usedPercent float64) Tier {
	switch {
	case usedPercent >= CriticalThreshold:
		return TierCritical
	case usedPercent >= WarningThreshold:
		return TierWarning
	default:
		return TierGood
	}
}

// Label is the badge text for the tier.
func (t Tier) Label() string {
	switch t {
	case TierCritical:
		return "Critical"
	case TierWarning:
		return "Warning"
	case TierGood:
		return "Good"
	default:
		return "--"
	}
}

// ProgressFill clamps a used percentage into [0, 100] for drawing a bar.
// Percent labels use the raw value; only the bar saturates.
func ProgressFill(usedPercent float64) float64 {
	if math.IsNaN(usedPercent) {
		return 0
	}
	return lo.Clamp(usedPercent, 0, 100)
}

func roundPercent(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Round(v))
}
