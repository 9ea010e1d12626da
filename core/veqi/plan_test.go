package veqi

import "testing"

func TestBuildPlan(t *testing.T) {
	healthy := ComponentScores{
		Foundational:       70,
		TimeOnTask:         85,
		DigitalPractice:    70,
		TransitionExposure: 90,
		EnvironmentHealth:  100,
	}
	if actions := BuildPlan(healthy); len(actions) != 0 {
		t.Errorf("BuildPlan() = %v, want no actions at or above threshold", actions)
	}

	failing := ComponentScores{
		Foundational:       40,
		TimeOnTask:         69.9,
		DigitalPractice:    0,
		TransitionExposure: 50,
		EnvironmentHealth:  30,
	}
	actions := BuildPlan(failing)
	if len(actions) != 5 {
		t.Fatalf("BuildPlan() returned %d actions, want 5", len(actions))
	}

	// fixed component order, fixed priorities
	wantComponents := []string{"foundational", "timeOnTask", "digitalPractice", "transitionExposure", "environmentHealth"}
	wantPriorities := []string{PriorityHigh, PriorityHigh, PriorityMedium, PriorityMedium, PriorityHigh}
	for i, action := range actions {
		if action.Component != wantComponents[i] {
			t.Errorf("actions[%d].Component = %q, want %q", i, action.Component, wantComponents[i])
		}
		if action.Priority != wantPriorities[i] {
			t.Errorf("actions[%d].Priority = %q, want %q", i, action.Priority, wantPriorities[i])
		}
		if action.Action == "" || action.Target == "" {
			t.Errorf("actions[%d] has empty action/target text", i)
		}
	}
}

func TestBuildPlan_singleComponent(t *testing.T) {
	cs := ComponentScores{
		Foundational:       100,
		TimeOnTask:         100,
		DigitalPractice:    65,
		TransitionExposure: 100,
		EnvironmentHealth:  100,
	}

	actions := BuildPlan(cs)
	if len(actions) != 1 {
		t.Fatalf("BuildPlan() returned %d actions, want 1", len(actions))
	}
	if actions[0].Component != "digitalPractice" {
		t.Errorf("Component = %q, want digitalPractice", actions[0].Component)
	}
}
