package veqi

// planThreshold is the component score below which a remediation action is
// emitted.
const planThreshold = 70

// Action priorities
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
)

// Action is one prioritized remediation recommendation of a plan.
type Action struct {
	Component string `json:"component"`
	Priority  string `json:"priority"` // high | medium
	Action    string `json:"action"`
	Target    string `json:"target"`
}

// BuildPlan emits one action per component scoring strictly below the
// threshold, in fixed component order. Components at or above threshold emit
// nothing.
func BuildPlan(cs ComponentScores) []Action {
	actions := make([]Action, 0, 5)

	if cs.Foundational < planThreshold {
		actions = append(actions, Action{
			Component: "foundational",
			Priority:  PriorityHigh,
			Action:    "Focus on reading fluency and division mastery for Class 3 students",
			Target:    "Increase proficiency by 15 percentage points",
		})
	}
	if cs.TimeOnTask < planThreshold {
		actions = append(actions, Action{
			Component: "timeOnTask",
			Priority:  PriorityHigh,
			Action:    "Increase active instruction time to ≥35 minutes per session",
			Target:    "Improve session planning and reduce interruptions",
		})
	}
	if cs.DigitalPractice < planThreshold {
		actions = append(actions, Action{
			Component: "digitalPractice",
			Priority:  PriorityMedium,
			Action:    "Establish QR practice routine ≥3 days/week",
			Target:    "Schedule regular DIKSHA QR sessions",
		})
	}
	if cs.TransitionExposure < planThreshold {
		actions = append(actions, Action{
			Component: "transitionExposure",
			Priority:  PriorityMedium,
			Action:    "Ensure all students complete FLN activity sets",
			Target:    "Track activity completion and provide support",
		})
	}
	if cs.EnvironmentHealth < planThreshold {
		actions = append(actions, Action{
			Component: "environmentHealth",
			Priority:  PriorityHigh,
			Action:    "Improve PM POSHAN and sanitation compliance",
			Target:    "Regular monitoring and checklist adherence",
		})
	}
	return actions
}
