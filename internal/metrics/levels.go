package metrics

// Level classifies a resource percentage for display.
type Level string

const (
	LevelOK       Level = "ok"
	LevelWarn     Level = "warn"
	LevelCritical Level = "critical"
)

// Gauge thresholds, matching the studio's resource indicators.
const (
	WarnThresholdPct     = 75.0
	CriticalThresholdPct = 90.0
)

// LevelFor maps a usage percentage to its threshold level.
func LevelFor(pct float64) Level {
	switch {
	case pct >= CriticalThresholdPct:
		return LevelCritical
	case pct >= WarnThresholdPct:
		return LevelWarn
	default:
		return LevelOK
	}
}
