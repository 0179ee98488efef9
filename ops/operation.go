// Package ops defines the closed catalogue of remote operations, the cache
// key derivation shared by the cache and the in-flight coordinator, and the
// normalized response and error shapes every layer speaks.
package ops

import "fmt"

// Kind distinguishes operations that only observe remote state from those
// that change it.
type Kind int

const (
	// Read operations may be cached and deduplicated.
	Read Kind = iota
	// Write operations are never cached or deduplicated and drive
	// invalidation on success.
	Write
)

func (k Kind) String() string {
	if k == Write {
		return "write"
	}
	return "read"
}

// Operation identifies one remote action. The set is closed: every value
// below has exactly one descriptor in the table and [Parse] rejects anything
// else.
type Operation int

const (
	ListCandidates Operation = iota
	GetCandidate
	GetCandidatesByStatus
	GetCandidatesByAnalyst
	GetInterviewCandidates
	GetReportStats
	ListAnalysts
	ListInterviewers
	GetMessageTemplates

	UpdateCandidateStatus
	Classify
	Disqualify
	SendToReview
	AssignCandidates
	MarkMessageSent
	MoveToInterview
	AssignInterviewer
	StartInterview
	SubmitInterviewEvaluation
	SaveMessageTemplate
	AddAnalyst
	RemoveAnalyst

	numOperations
)

type descriptor struct {
	name string
	kind Kind
}

// descriptors is indexed by Operation. Its length is pinned to
// numOperations so adding a constant without a descriptor leaves a zero
// entry, which TestEveryOperationHasDescriptor catches.
var descriptors = [numOperations]descriptor{
	ListCandidates:         {"listCandidates", Read},
	GetCandidate:           {"getCandidate", Read},
	GetCandidatesByStatus:  {"getCandidatesByStatus", Read},
	GetCandidatesByAnalyst: {"getCandidatesByAnalyst", Read},
	GetInterviewCandidates: {"getInterviewCandidates", Read},
	GetReportStats:         {"getReportStats", Read},
	ListAnalysts:           {"listAnalysts", Read},
	ListInterviewers:       {"listInterviewers", Read},
	GetMessageTemplates:    {"getMessageTemplates", Read},

	UpdateCandidateStatus:     {"updateCandidateStatus", Write},
	Classify:                  {"classify", Write},
	Disqualify:                {"disqualify", Write},
	SendToReview:              {"sendToReview", Write},
	AssignCandidates:          {"assignCandidates", Write},
	MarkMessageSent:           {"markMessageSent", Write},
	MoveToInterview:           {"moveToInterview", Write},
	AssignInterviewer:         {"assignInterviewer", Write},
	StartInterview:            {"startInterview", Write},
	SubmitInterviewEvaluation: {"submitInterviewEvaluation", Write},
	SaveMessageTemplate:       {"saveMessageTemplate", Write},
	AddAnalyst:                {"addAnalyst", Write},
	RemoveAnalyst:             {"removeAnalyst", Write},
}

var byName = func() map[string]Operation {
	m := make(map[string]Operation, numOperations)
	for op := range numOperations {
		m[descriptors[op].name] = op
	}
	return m
}()

// String returns the wire name sent to the remote store.
func (o Operation) String() string {
	if !o.Valid() {
		return fmt.Sprintf("Operation(%d)", int(o))
	}
	return descriptors[o].name
}

// Kind reports whether o reads or writes.
func (o Operation) Kind() Kind {
	if !o.Valid() {
		return Read
	}
	return descriptors[o].kind
}

// IsWrite is shorthand for o.Kind() == Write.
func (o Operation) IsWrite() bool { return o.Kind() == Write }

// Valid reports whether o is one of the declared operations.
func (o Operation) Valid() bool { return o >= 0 && o < numOperations }

// Parse maps a wire name back to its Operation.
func Parse(name string) (Operation, error) {
	op, ok := byName[name]
	if !ok {
		return 0, &Error{Kind: KindUsage, Msg: fmt.Sprintf("unknown operation %q", name)}
	}
	return op, nil
}

// All returns every declared operation in declaration order.
func All() []Operation {
	out := make([]Operation, 0, numOperations)
	for op := range numOperations {
		out = append(out, op)
	}
	return out
}

// Reads returns every read operation.
func Reads() []Operation { return filter(Read) }

// Writes returns every write operation.
func Writes() []Operation { return filter(Write) }

func filter(k Kind) []Operation {
	var out []Operation
	for op := range numOperations {
		if descriptors[op].kind == k {
			out = append(out, op)
		}
	}
	return out
}
