package lifecycle

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/Keksclan/goRawrSheets/ops"
)

// Parameter names used by lifecycle writes.
const (
	ParamID             = "id"
	ParamExpectedStage  = "expectedStage"
	ParamStatus         = "status"
	ParamRole           = "role"
	ParamPCD            = "pcd"
	ParamDocuments      = "documents"
	ParamReason         = "reason"
	ParamChannel        = "channel"
	ParamEmailSent      = "emailSent"
	ParamSMSSent        = "smsSent"
	ParamInterviewer    = "interviewer"
	ParamRecommendation = "recommendation"
	ParamNotes          = "notes"
	ParamTotalScore     = "totalScore"
)

// targets maps each stage-changing operation to the stage it moves the
// candidate to. UpdateCandidateStatus names its target in ParamStatus.
var targets = map[ops.Operation]Stage{
	ops.Classify:                  StageClassified,
	ops.Disqualify:                StageDisqualified,
	ops.SendToReview:              StageReview,
	ops.MoveToInterview:           StageInterviewPending,
	ops.StartInterview:            StageInterviewInProgress,
	ops.SubmitInterviewEvaluation: StageInterviewEvaluated,
}

// Guarded reports whether op is validated by the lifecycle before it is
// sent.
func Guarded(op ops.Operation) bool {
	if _, ok := targets[op]; ok {
		return true
	}
	switch op {
	case ops.UpdateCandidateStatus, ops.MarkMessageSent, ops.AssignInterviewer:
		return true
	}
	return false
}

// Command is one lifecycle write in decoded form. Only the fields relevant
// to Op are encoded.
type Command struct {
	Op          ops.Operation
	CandidateID string

	// Expected is the stage the caller believes the candidate is in. It is
	// sent along so the remote store can refuse a write made against a
	// stale copy.
	Expected Stage

	// Target is the destination of an UpdateCandidateStatus write.
	Target Stage

	Role      JobRole
	PCD       bool
	Documents map[Document]Evaluation
	Reason    string

	Channel   Channel
	EmailSent bool
	SMSSent   bool

	Interviewer string

	Score          InterviewScore
	Recommendation Recommendation
	Notes          string
}

// commandFor seeds a command for op from a candidate snapshot.
func commandFor(op ops.Operation, c Candidate) Command {
	return Command{
		Op:          op,
		CandidateID: c.ID,
		Expected:    c.Stage(),
		Role:        c.Role,
		PCD:         c.PCD,
		Documents:   c.Documents,
		EmailSent:   c.EmailSent,
		SMSSent:     c.SMSSent,
	}
}

// TargetStage returns the stage the command moves the candidate to, or the
// empty stage for writes that do not change it.
func (c Command) TargetStage() Stage {
	if c.Op == ops.UpdateCandidateStatus {
		return c.Target
	}
	return targets[c.Op]
}

// Params encodes the command as write parameters.
func (c Command) Params() ops.Params {
	p := ops.Params{ParamID: c.CandidateID}
	if c.Expected != "" {
		p[ParamExpectedStage] = string(c.Expected)
	}
	if c.Op == ops.UpdateCandidateStatus {
		p[ParamStatus] = string(c.Target)
	}
	if c.Role != "" {
		p[ParamRole] = string(c.Role)
		p[ParamPCD] = strconv.FormatBool(c.PCD)
	}
	if len(c.Documents) > 0 {
		// Map keys marshal in sorted order, so equal commands encode equally.
		raw, _ := json.Marshal(c.Documents)
		p[ParamDocuments] = string(raw)
	}
	if c.Reason != "" {
		p[ParamReason] = c.Reason
	}
	if c.Channel != "" {
		p[ParamChannel] = string(c.Channel)
	}
	if c.Interviewer != "" {
		p[ParamInterviewer] = c.Interviewer
	}

	switch c.TargetStage() {
	case StageInterviewPending:
		p[ParamEmailSent] = strconv.FormatBool(c.EmailSent)
		p[ParamSMSSent] = strconv.FormatBool(c.SMSSent)
	case StageInterviewEvaluated:
		c.Score.params(p)
		p[ParamRecommendation] = string(c.Recommendation)
		if c.Notes != "" {
			p[ParamNotes] = c.Notes
		}
	}
	return p
}

// DecodeCommand parses write parameters back into a command. Malformed
// values are reported as invalid transitions.
func DecodeCommand(op ops.Operation, p ops.Params) (Command, error) {
	c := Command{
		Op:             op,
		CandidateID:    p[ParamID],
		Expected:       parseStageParam(p[ParamExpectedStage]),
		Target:         parseStageParam(p[ParamStatus]),
		Role:           JobRole(p[ParamRole]),
		Reason:         p[ParamReason],
		Channel:        Channel(p[ParamChannel]),
		Interviewer:    p[ParamInterviewer],
		Recommendation: Recommendation(p[ParamRecommendation]),
		Notes:          p[ParamNotes],
	}

	var err error
	if c.PCD, err = parseBool(p, ParamPCD); err != nil {
		return Command{}, ops.InvalidTransition(op, "%v", err)
	}
	if c.EmailSent, err = parseBool(p, ParamEmailSent); err != nil {
		return Command{}, ops.InvalidTransition(op, "%v", err)
	}
	if c.SMSSent, err = parseBool(p, ParamSMSSent); err != nil {
		return Command{}, ops.InvalidTransition(op, "%v", err)
	}
	if raw := p[ParamDocuments]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &c.Documents); err != nil {
			return Command{}, ops.InvalidTransition(op, "malformed %s parameter", ParamDocuments)
		}
		for d, e := range c.Documents {
			if !e.Valid() {
				return Command{}, ops.InvalidTransition(op, "unknown evaluation %q for document %s", e, d)
			}
		}
	}
	if c.TargetStage() == StageInterviewEvaluated {
		if c.Score, err = scoreFromParams(p); err != nil {
			return Command{}, ops.InvalidTransition(op, "%v", err)
		}
	}
	return c, nil
}

func parseBool(p ops.Params, key string) (bool, error) {
	raw, ok := p[key]
	if !ok || raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, &ops.Error{Kind: ops.KindInvalidTransition, Msg: key + " must be true or false"}
	}
	return v, nil
}

// Validate checks the command against the lifecycle rules. The expected
// stage is optional: when present the transition from it is checked,
// otherwise only the rules on the write's own payload apply. A bare status
// update, one without expected stage or role, only needs a known target. A
// non-nil result is always an *ops.Error of kind KindInvalidTransition.
func (c Command) Validate() error {
	if strings.TrimSpace(c.CandidateID) == "" {
		return ops.InvalidTransition(c.Op, "missing candidate %s", ParamID)
	}
	known := c.Expected != ""
	if known && !c.Expected.Valid() {
		return ops.InvalidTransition(c.Op, "unknown %s %q", ParamExpectedStage, c.Expected)
	}

	switch c.Op {
	case ops.MarkMessageSent:
		if !c.Channel.Valid() {
			return ops.InvalidTransition(c.Op, "unknown channel %q", c.Channel)
		}
		if known && !c.Expected.TriageDecided() {
			return ops.InvalidTransition(c.Op, "candidate in stage %s cannot be messaged before the triage decision", c.Expected)
		}
		return nil
	case ops.AssignInterviewer:
		if strings.TrimSpace(c.Interviewer) == "" {
			return ops.InvalidTransition(c.Op, "missing %s", ParamInterviewer)
		}
		if known && c.Expected != StageInterviewPending {
			return ops.InvalidTransition(c.Op, "interviewers can only be assigned in stage %s, not %s", StageInterviewPending, c.Expected)
		}
		return nil
	}

	to := c.TargetStage()
	if !to.Valid() {
		return ops.InvalidTransition(c.Op, "unknown target stage %q", to)
	}
	if known && !CanTransition(c.Expected, to) {
		return ops.InvalidTransition(c.Op, "cannot move candidate from %s to %s", c.Expected, to)
	}
	if c.bare() {
		return nil
	}

	switch to {
	case StageClassified:
		report, err := CheckDocuments(c.Role, c.PCD, c.Documents)
		if err != nil {
			return ops.InvalidTransition(c.Op, "%v", err)
		}
		if !report.OK() {
			return ops.InvalidTransition(c.Op, "required documents not accepted (%s)", report.Reason())
		}
	case StageDisqualified:
		if c.DisqualificationReason() == "" {
			return ops.InvalidTransition(c.Op, "disqualification requires a reason or a non-conforming document")
		}
	case StageInterviewPending:
		if known && !c.EmailSent && !c.SMSSent {
			return ops.InvalidTransition(c.Op, "candidate must be messaged by email or SMS before the interview")
		}
	case StageInterviewEvaluated:
		if err := c.Score.Validate(); err != nil {
			return ops.InvalidTransition(c.Op, "%v", err)
		}
		if !c.Recommendation.Valid() {
			return ops.InvalidTransition(c.Op, "unknown recommendation %q", c.Recommendation)
		}
	}
	return nil
}

// bare reports whether the command is a plain status update that carries
// no snapshot of the candidate. The store applies those as-is.
func (c Command) bare() bool {
	return c.Op == ops.UpdateCandidateStatus && c.Expected == "" && c.Role == "" && len(c.Documents) == 0
}

// DisqualificationReason returns the explicit reason, or one derived from
// the required documents that are non-conforming or unevaluated. It is
// empty when neither exists.
func (c Command) DisqualificationReason() string {
	if r := strings.TrimSpace(c.Reason); r != "" {
		return r
	}
	if c.Role == "" {
		return ""
	}
	report, err := CheckDocuments(c.Role, c.PCD, c.Documents)
	if err != nil {
		return ""
	}
	return report.Reason()
}

// Apply returns a copy of cand updated as if the command had succeeded.
func (c Command) Apply(cand Candidate) Candidate {
	out := cand.clone()
	switch c.Op {
	case ops.MarkMessageSent:
		if c.Channel == ChannelEmail {
			out.EmailSent = true
		} else {
			out.SMSSent = true
		}
		return out
	case ops.AssignInterviewer:
		out.Interviewer = c.Interviewer
		return out
	}

	switch c.TargetStage() {
	case StageClassified:
		out.Triage = TriageClassified
	case StageDisqualified:
		out.Triage = TriageDisqualified
		out.DisqualificationReason = c.DisqualificationReason()
	case StageReview:
		out.Triage = TriageReview
	case StageInterviewPending:
		out.Interview = InterviewAwaiting
	case StageInterviewInProgress:
		out.Interview = InterviewInProgress
	case StageInterviewEvaluated:
		out.Interview = InterviewEvaluated
		out.Result = &InterviewResult{
			Score:          c.Score,
			Total:          c.Score.Total(),
			Recommendation: c.Recommendation,
			Notes:          c.Notes,
		}
	}
	return out
}
