package lifecycle

import (
	"fmt"
	"strconv"
)

// Criterion is one scored aspect of the interview.
type Criterion string

const (
	CriterionPresentation  Criterion = "presentation"
	CriterionCommunication Criterion = "communication"
	CriterionKnowledge     Criterion = "knowledge"
	CriterionTeamwork      Criterion = "teamwork"
	CriterionExperience    Criterion = "experience"
)

// criteria lists every criterion with its maximum, in form order.
var criteria = []struct {
	name Criterion
	max  int
}{
	{CriterionPresentation, 10},
	{CriterionCommunication, 15},
	{CriterionKnowledge, 30},
	{CriterionTeamwork, 10},
	{CriterionExperience, 15},
}

// MaxScore is the ceiling of an interview total.
const MaxScore = 80

// InterviewScore holds the five sub-scores of an interview evaluation.
type InterviewScore struct {
	Presentation  int `json:"presentation"`
	Communication int `json:"communication"`
	Knowledge     int `json:"knowledge"`
	Teamwork      int `json:"teamwork"`
	Experience    int `json:"experience"`
}

func (s InterviewScore) values() []int {
	return []int{s.Presentation, s.Communication, s.Knowledge, s.Teamwork, s.Experience}
}

// Total is the exact sum of the sub-scores.
func (s InterviewScore) Total() int {
	total := 0
	for _, v := range s.values() {
		total += v
	}
	return total
}

// Validate checks every sub-score is within [0, max] for its criterion.
func (s InterviewScore) Validate() error {
	for i, v := range s.values() {
		c := criteria[i]
		if v < 0 || v > c.max {
			return fmt.Errorf("%s score %d out of range [0, %d]", c.name, v, c.max)
		}
	}
	return nil
}

// params encodes the sub-scores and their total.
func (s InterviewScore) params(p map[string]string) {
	for i, v := range s.values() {
		p[scoreKey(criteria[i].name)] = strconv.Itoa(v)
	}
	p[ParamTotalScore] = strconv.Itoa(s.Total())
}

// scoreFromParams decodes the sub-scores. A supplied total must match the
// sum.
func scoreFromParams(p map[string]string) (InterviewScore, error) {
	vals := make([]int, len(criteria))
	for i, c := range criteria {
		raw, ok := p[scoreKey(c.name)]
		if !ok {
			return InterviewScore{}, fmt.Errorf("missing %s score", c.name)
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return InterviewScore{}, fmt.Errorf("%s score %q is not an integer", c.name, raw)
		}
		vals[i] = v
	}
	s := InterviewScore{
		Presentation:  vals[0],
		Communication: vals[1],
		Knowledge:     vals[2],
		Teamwork:      vals[3],
		Experience:    vals[4],
	}
	if raw, ok := p[ParamTotalScore]; ok {
		total, err := strconv.Atoi(raw)
		if err != nil || total != s.Total() {
			return InterviewScore{}, fmt.Errorf("total score %q does not match the sub-scores (%d)", raw, s.Total())
		}
	}
	return s, nil
}

func scoreKey(c Criterion) string { return "score_" + string(c) }

// InterviewResult is the recorded outcome of an interview.
type InterviewResult struct {
	Score          InterviewScore `json:"score"`
	Total          int            `json:"total"`
	Recommendation Recommendation `json:"recommendation"`
	Notes          string         `json:"notes,omitempty"`
}
