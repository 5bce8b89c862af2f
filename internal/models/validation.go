package models

// Level is the severity bucket a rule files its issues under
type Level string

const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

// Location points at the part of the timetable an issue is about
type Location struct {
	ClassID string `json:"classId,omitempty"`
	Day     *int   `json:"day,omitempty"`
	Period  *int   `json:"period,omitempty"`
}

// SlotLocation builds a location for a single slot
func SlotLocation(classID string, day, period int) *Location {
	return &Location{ClassID: classID, Day: &day, Period: &period}
}

// ValidationIssue is a single finding of a validation rule.
// RuleID and RuleName are filled in by the engine.
type ValidationIssue struct {
	Message  string    `json:"message"`
	Location *Location `json:"location"`
	RuleID   string    `json:"ruleId"`
	RuleName string    `json:"ruleName"`
}

// RuleSetting is the persisted configuration of one validation rule
type RuleSetting struct {
	RuleID    string `json:"ruleId"`
	Enabled   bool   `json:"enabled"`
	Threshold *int   `json:"threshold,omitempty"`
}
