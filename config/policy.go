package config

import "time"

// SkillLevel is one label on the ordinal skill scale used for game filtering.
type SkillLevel struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// TimeOfDayOption maps a named part of the day to the hour a "time_of_day"
// game resolves to on its scheduled date.
type TimeOfDayOption struct {
	Name string `json:"name"`
	Hour int    `json:"hour"`
}

// Policy bundles the fixed business constants of the lifecycle engine and the
// notification pipeline. It is built once at startup and injected; nothing in
// the codebase mutates it afterwards.
type Policy struct {
	// SweepHorizon is the grace window after a game's scheduled time before
	// the stale sweep retires it as completed.
	SweepHorizon time.Duration

	// ReminderLead is how long before the scheduled time a pre-game reminder
	// push is scheduled for, once a game confirms.
	ReminderLead time.Duration

	// WorkerBatchLimit caps how many pending queue items one worker run picks up.
	WorkerBatchLimit int

	SkillLevels      []SkillLevel
	TimeOfDayOptions []TimeOfDayOption
}

// DefaultPolicy returns the production policy constants.
func DefaultPolicy() Policy {
	return Policy{
		SweepHorizon:     3 * time.Hour,
		ReminderLead:     30 * time.Minute,
		WorkerBatchLimit: 50,
		SkillLevels: []SkillLevel{
			{Value: 1, Label: "beginner"},
			{Value: 2, Label: "casual"},
			{Value: 3, Label: "intermediate"},
			{Value: 4, Label: "competitive"},
			{Value: 5, Label: "expert"},
		},
		TimeOfDayOptions: []TimeOfDayOption{
			{Name: "morning", Hour: 9},
			{Name: "noon", Hour: 12},
			{Name: "afternoon", Hour: 15},
			{Name: "evening", Hour: 18},
			{Name: "night", Hour: 21},
		},
	}
}

// SkillInRange reports whether the value is a known skill level inside the
// inclusive [min, max] range. Nil bounds are open ends.
func (p Policy) SkillInRange(value int, min, max *int) bool {
	known := false
	for _, lvl := range p.SkillLevels {
		if lvl.Value == value {
			known = true
			break
		}
	}
	if !known {
		return false
	}
	if min != nil && value < *min {
		return false
	}
	if max != nil && value > *max {
		return false
	}
	return true
}

// ValidSkill reports whether the value exists on the skill scale.
func (p Policy) ValidSkill(value int) bool {
	for _, lvl := range p.SkillLevels {
		if lvl.Value == value {
			return true
		}
	}
	return false
}
