package domain

// Performance labels for an engagement percentage.
const (
	PerformanceExcellent = "Excellent"
	PerformanceGood      = "Good"
	PerformanceAverage   = "Average"
	PerformanceLow       = "Low"
	PerformanceVeryLow   = "Very Low"
)

// PerformanceLabel buckets an engagement percentage.
func PerformanceLabel(percent float64) string {
	switch {
	case percent >= 80:
		return PerformanceExcellent
	case percent >= 60:
		return PerformanceGood
	case percent >= 40:
		return PerformanceAverage
	case percent >= 20:
		return PerformanceLow
	default:
		return PerformanceVeryLow
	}
}
