package wizard

import "fmt"

// Stage is a step of the event-creation wizard.
type Stage string

const (
	StageBasicInfo     Stage = "basic_info"
	StageVenueSchedule Stage = "venue_schedule"
	StagePaymentSubmit Stage = "payment_submit"
	StageSubmitted     Stage = "submitted"
	StageAbandoned     Stage = "abandoned"
)

// validTransitions defines the wizard's state machine. Backward moves are allowed between
// the three working stages; submitted and abandoned are terminal.
var validTransitions = map[Stage][]Stage{
	StageBasicInfo:     {StageVenueSchedule, StageAbandoned},
	StageVenueSchedule: {StageBasicInfo, StagePaymentSubmit, StageAbandoned},
	StagePaymentSubmit: {StageVenueSchedule, StageSubmitted, StageAbandoned},
	StageSubmitted:     {},
	StageAbandoned:     {},
}

var (
	next = map[Stage]Stage{
		StageBasicInfo:     StageVenueSchedule,
		StageVenueSchedule: StagePaymentSubmit,
	}
	previous = map[Stage]Stage{
		StageVenueSchedule: StageBasicInfo,
		StagePaymentSubmit: StageVenueSchedule,
	}
)

// IsValid returns true if the stage is recognised.
func (s Stage) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if moving from s to target is allowed.
func (s Stage) CanTransitionTo(target Stage) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible.
func (s Stage) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// Number returns the 1-based position of a working stage, or 0 for terminal stages.
func (s Stage) Number() int {
	switch s {
	case StageBasicInfo:
		return 1
	case StageVenueSchedule:
		return 2
	case StagePaymentSubmit:
		return 3
	}
	return 0
}

func (s Stage) String() string {
	return string(s)
}

// ParseStage converts a string to a Stage.
func ParseStage(s string) (Stage, error) {
	stage := Stage(s)
	if !stage.IsValid() {
		return "", fmt.Errorf("invalid wizard stage: %s", s)
	}
	return stage, nil
}
