package lifecycle

import (
	"context"

	"github.com/Keksclan/goRawrSheets/ops"
)

// Writer sends a write operation. The orchestrator satisfies it.
type Writer interface {
	Write(ctx context.Context, op ops.Operation, params ops.Params) ops.Response
}

// Workflow is a typed API over candidate snapshots. Each method validates
// the transition locally, sends it through the Writer, and on success
// returns the snapshot as it now stands. On failure the input snapshot is
// returned unchanged together with the error.
type Workflow struct {
	w Writer
}

// NewWorkflow creates a Workflow writing through w.
func NewWorkflow(w Writer) *Workflow {
	return &Workflow{w: w}
}

// Classify accepts the candidate after screening.
func (wf *Workflow) Classify(ctx context.Context, c Candidate) (Candidate, error) {
	return wf.run(ctx, c, commandFor(ops.Classify, c))
}

// Disqualify rejects the candidate. An empty reason is derived from the
// candidate's failing documents.
func (wf *Workflow) Disqualify(ctx context.Context, c Candidate, reason string) (Candidate, error) {
	cmd := commandFor(ops.Disqualify, c)
	cmd.Reason = reason
	if cmd.Reason == "" {
		cmd.Reason = cmd.DisqualificationReason()
	}
	return wf.run(ctx, c, cmd)
}

// SendToReview defers the triage decision to a second look.
func (wf *Workflow) SendToReview(ctx context.Context, c Candidate, note string) (Candidate, error) {
	cmd := commandFor(ops.SendToReview, c)
	cmd.Reason = note
	return wf.run(ctx, c, cmd)
}

// MarkMessageSent records that the candidate was contacted on ch.
func (wf *Workflow) MarkMessageSent(ctx context.Context, c Candidate, ch Channel) (Candidate, error) {
	cmd := commandFor(ops.MarkMessageSent, c)
	cmd.Channel = ch
	return wf.run(ctx, c, cmd)
}

// MoveToInterview schedules a classified, messaged candidate for interview.
func (wf *Workflow) MoveToInterview(ctx context.Context, c Candidate) (Candidate, error) {
	return wf.run(ctx, c, commandFor(ops.MoveToInterview, c))
}

// AssignInterviewer assigns the interviewer for a pending interview.
func (wf *Workflow) AssignInterviewer(ctx context.Context, c Candidate, interviewer string) (Candidate, error) {
	cmd := commandFor(ops.AssignInterviewer, c)
	cmd.Interviewer = interviewer
	return wf.run(ctx, c, cmd)
}

// StartInterview marks the interview as under way.
func (wf *Workflow) StartInterview(ctx context.Context, c Candidate) (Candidate, error) {
	return wf.run(ctx, c, commandFor(ops.StartInterview, c))
}

// SubmitEvaluation records the interview score and recommendation.
func (wf *Workflow) SubmitEvaluation(ctx context.Context, c Candidate, score InterviewScore, rec Recommendation, notes string) (Candidate, error) {
	cmd := commandFor(ops.SubmitInterviewEvaluation, c)
	cmd.Score = score
	cmd.Recommendation = rec
	cmd.Notes = notes
	return wf.run(ctx, c, cmd)
}

func (wf *Workflow) run(ctx context.Context, c Candidate, cmd Command) (Candidate, error) {
	if err := cmd.Validate(); err != nil {
		return c, err
	}
	resp := wf.w.Write(ctx, cmd.Op, cmd.Params())
	if !resp.Success {
		return c, resp.Err()
	}
	return cmd.Apply(c), nil
}
