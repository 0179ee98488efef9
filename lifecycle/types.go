// Package lifecycle is the candidate state machine: screening, triage
// decision, messaging, interview and interview decision. It validates every
// lifecycle write locally before it reaches the remote store, encodes
// transitions as write parameters and decodes candidate records from read
// responses.
package lifecycle

import (
	"maps"
	"slices"
)

// Stage is a candidate's position in the lifecycle. It combines the triage
// status with the interview status.
type Stage string

const (
	StagePending             Stage = "pending"
	StageClassified          Stage = "classified"
	StageDisqualified        Stage = "disqualified"
	StageReview              Stage = "review"
	StageInterviewPending    Stage = "interviewPending"
	StageInterviewInProgress Stage = "interviewInProgress"
	StageInterviewEvaluated  Stage = "interviewEvaluated"
)

var allStages = []Stage{
	StagePending,
	StageClassified,
	StageDisqualified,
	StageReview,
	StageInterviewPending,
	StageInterviewInProgress,
	StageInterviewEvaluated,
}

// Stages returns every stage in lifecycle order.
func Stages() []Stage { return slices.Clone(allStages) }

// Valid reports whether s is a declared stage.
func (s Stage) Valid() bool { return slices.Contains(allStages, s) }

// TriageDecided reports whether the screening outcome is settled, which is
// when messaging the candidate becomes allowed.
func (s Stage) TriageDecided() bool {
	return s.Valid() && s != StagePending && s != StageReview
}

// TriageStatus is the screening outcome stored on the record.
type TriageStatus string

const (
	TriagePending      TriageStatus = "pending"
	TriageClassified   TriageStatus = "classified"
	TriageDisqualified TriageStatus = "disqualified"
	TriageReview       TriageStatus = "review"
)

// InterviewStatus is the interview progress stored on the record.
type InterviewStatus string

const (
	InterviewUnassigned InterviewStatus = "unassigned"
	InterviewAwaiting   InterviewStatus = "awaiting"
	InterviewInProgress InterviewStatus = "inProgress"
	InterviewEvaluated  InterviewStatus = "evaluated"
)

// Channel is a messaging channel.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Valid reports whether c is a declared channel.
func (c Channel) Valid() bool { return c == ChannelEmail || c == ChannelSMS }

// Recommendation is the interviewer's verdict, independent of the score.
type Recommendation string

const (
	RecommendClassified   Recommendation = "classified"
	RecommendDisqualified Recommendation = "disqualified"
)

// Valid reports whether r is a declared recommendation.
func (r Recommendation) Valid() bool {
	return r == RecommendClassified || r == RecommendDisqualified
}

// Candidate is a client-side copy of a candidate record. The remote store
// owns the authoritative record.
type Candidate struct {
	ID         string `json:"id"`
	NationalID string `json:"nationalId,omitempty"`
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`

	Role JobRole `json:"role"`
	PCD  bool    `json:"pcd,omitempty"`

	Triage    TriageStatus    `json:"triageStatus"`
	Interview InterviewStatus `json:"interviewStatus,omitempty"`

	EmailSent bool `json:"emailSent,omitempty"`
	SMSSent   bool `json:"smsSent,omitempty"`

	Documents              map[Document]Evaluation `json:"documents,omitempty"`
	DisqualificationReason string                  `json:"disqualificationReason,omitempty"`

	Analyst     string           `json:"analyst,omitempty"`
	Interviewer string           `json:"interviewer,omitempty"`
	Result      *InterviewResult `json:"interviewResult,omitempty"`
}

// Stage derives the lifecycle stage from the triage and interview status.
// An empty triage status reads as pending.
func (c Candidate) Stage() Stage {
	switch c.Interview {
	case InterviewEvaluated:
		return StageInterviewEvaluated
	case InterviewInProgress:
		return StageInterviewInProgress
	case InterviewAwaiting:
		return StageInterviewPending
	}
	switch c.Triage {
	case TriageClassified:
		return StageClassified
	case TriageDisqualified:
		return StageDisqualified
	case TriageReview:
		return StageReview
	}
	return StagePending
}

// Messaged reports whether the candidate was contacted on any channel.
func (c Candidate) Messaged() bool { return c.EmailSent || c.SMSSent }

// clone returns a deep copy so updated snapshots never alias the input.
func (c Candidate) clone() Candidate {
	out := c
	out.Documents = maps.Clone(c.Documents)
	if c.Result != nil {
		r := *c.Result
		out.Result = &r
	}
	return out
}
