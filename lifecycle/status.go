package lifecycle

import (
	"encoding/json"
	"strings"
)

// Labels the remote store shows for each stage. Writes and records may use
// either the label or the stage name.
var stageLabels = map[Stage]string{
	StagePending:             "Pendente",
	StageClassified:          "Classificado",
	StageDisqualified:        "Desclassificado",
	StageReview:              "Em Análise",
	StageInterviewPending:    "Aguardando Entrevista",
	StageInterviewInProgress: "Em Entrevista",
	StageInterviewEvaluated:  "Entrevista Avaliada",
}

var triageLabels = map[string]TriageStatus{
	"pendente":        TriagePending,
	"classificado":    TriageClassified,
	"desclassificado": TriageDisqualified,
	"em análise":      TriageReview,
	"em analise":      TriageReview,
}

var interviewLabels = map[string]InterviewStatus{
	"aguardando":            InterviewAwaiting,
	"aguardando entrevista": InterviewAwaiting,
	"em entrevista":         InterviewInProgress,
	"em andamento":          InterviewInProgress,
	"avaliado":              InterviewEvaluated,
	"entrevista avaliada":   InterviewEvaluated,
}

// Label returns the store's label for s, or s itself when it has none.
func (s Stage) Label() string {
	if l, ok := stageLabels[s]; ok {
		return l
	}
	return string(s)
}

// ParseStage resolves a stage name or store label, ignoring case and
// surrounding space.
func ParseStage(raw string) (Stage, bool) {
	raw = strings.TrimSpace(raw)
	for _, s := range allStages {
		if strings.EqualFold(raw, string(s)) || strings.EqualFold(raw, stageLabels[s]) {
			return s, true
		}
	}
	return "", false
}

// parseStageParam resolves raw, keeping unknown values as-is so Validate
// can report them.
func parseStageParam(raw string) Stage {
	if s, ok := ParseStage(raw); ok {
		return s
	}
	return Stage(raw)
}

// UnmarshalJSON accepts the status names and the store's labels.
func (t *TriageStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	norm := strings.ToLower(strings.TrimSpace(raw))
	if v, ok := triageLabels[norm]; ok {
		*t = v
		return nil
	}
	for _, v := range []TriageStatus{TriagePending, TriageClassified, TriageDisqualified, TriageReview} {
		if strings.EqualFold(norm, string(v)) {
			*t = v
			return nil
		}
	}
	*t = TriageStatus(raw)
	return nil
}

// UnmarshalJSON accepts the status names and the store's labels.
func (i *InterviewStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	norm := strings.ToLower(strings.TrimSpace(raw))
	if v, ok := interviewLabels[norm]; ok {
		*i = v
		return nil
	}
	for _, v := range []InterviewStatus{InterviewUnassigned, InterviewAwaiting, InterviewInProgress, InterviewEvaluated} {
		if strings.EqualFold(norm, string(v)) {
			*i = v
			return nil
		}
	}
	*i = InterviewStatus(raw)
	return nil
}
