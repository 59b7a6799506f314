package pipeline

import "fmt"

// Stage marks where a session is in the two-call interview flow.
type Stage int

const (
	StageIntake Stage = iota
	StageAwaitingAnswers
	// StageMockEvaluation grades the answers and stops.
	StageMockEvaluation
	// StageFullEvaluation also predicts the outcome and builds an improvement plan.
	StageFullEvaluation
	StageCompleted
)

var stageNames = map[Stage]string{
	StageIntake:          "intake",
	StageAwaitingAnswers: "awaiting_answers",
	StageMockEvaluation:  "mock_evaluation",
	StageFullEvaluation:  "full_evaluation",
	StageCompleted:       "completed",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

func (s Stage) MarshalText() ([]byte, error) {
	if _, ok := stageNames[s]; !ok {
		return nil, fmt.Errorf("unknown stage %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Stage) UnmarshalText(b []byte) error {
	for stage, name := range stageNames {
		if name == string(b) {
			*s = stage
			return nil
		}
	}
	return fmt.Errorf("unknown stage %q", string(b))
}
