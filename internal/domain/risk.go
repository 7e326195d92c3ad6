package domain

// RiskLevel identifies one aggregate project health signal.
type RiskLevel string

// RiskLevel values.
const (
	RiskNA     RiskLevel = "N/A"
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// highRiskMissedDeadlines is the missed-deadline count that forces High risk
// regardless of the overdue ratio.
const highRiskMissedDeadlines = 3

// ClassifyRisk derives a project risk level from its task counters. Projects
// with no tasks have no signal and classify as N/A. The High check runs
// before Medium so a heavy missed-deadline history overrides a low overdue
// ratio. The ratio boundary at exactly 0.5 stays Medium; High requires a
// strictly greater ratio.
func ClassifyRisk(totalTasks, overdueTasks, missedDeadlines int) RiskLevel {
	if totalTasks <= 0 {
		return RiskNA
	}
	ratio := float64(overdueTasks) / float64(totalTasks)
	switch {
	case missedDeadlines >= highRiskMissedDeadlines || ratio > 0.5:
		return RiskHigh
	case ratio >= 0.25:
		return RiskMedium
	default:
		return RiskLow
	}
}
