package lifecycle

import "slices"

// validTransitions defines allowed (from → to) stage transitions.
var validTransitions = map[Stage][]Stage{
	StagePending:             {StageClassified, StageDisqualified, StageReview},
	StageReview:              {StageClassified, StageDisqualified},
	StageClassified:          {StageInterviewPending},
	StageDisqualified:        nil, // terminal
	StageInterviewPending:    {StageInterviewInProgress},
	StageInterviewInProgress: {StageInterviewEvaluated},
	StageInterviewEvaluated:  nil, // terminal
}

// CanTransition reports whether moving from `from` to `to` is allowed.
// Staying in the same stage is not a transition.
func CanTransition(from, to Stage) bool {
	return slices.Contains(validTransitions[from], to)
}

// NextStages returns the stages reachable from s in one step.
func NextStages(s Stage) []Stage {
	return slices.Clone(validTransitions[s])
}

// Terminal reports whether no transition leaves s.
func (s Stage) Terminal() bool {
	return s.Valid() && len(validTransitions[s]) == 0
}
