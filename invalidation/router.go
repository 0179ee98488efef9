// Package invalidation maps each write operation to the cached reads it can
// make stale and purges them after the write succeeds.
package invalidation

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Keksclan/goRawrSheets/ops"
	"github.com/Keksclan/goRawrSheets/policy"
)

// Rules maps a write operation to the patterns of the cache keys it
// invalidates.
type Rules map[ops.Operation][]policy.Pattern

// Purger is the subset of the cache the router drives.
type Purger interface {
	InvalidateMatching(ctx context.Context, m policy.Matcher) int
}

var (
	candidateReads = []ops.Operation{
		ops.ListCandidates,
		ops.GetCandidate,
		ops.GetCandidatesByStatus,
		ops.GetCandidatesByAnalyst,
		ops.GetInterviewCandidates,
		ops.GetReportStats,
	}
	assignmentReads = []ops.Operation{
		ops.ListCandidates,
		ops.GetCandidate,
		ops.GetCandidatesByAnalyst,
		ops.GetInterviewCandidates,
		ops.GetReportStats,
	}
	interviewReads = []ops.Operation{
		ops.ListCandidates,
		ops.GetCandidate,
		ops.GetInterviewCandidates,
		ops.GetReportStats,
	}
)

// DefaultRules returns the built-in table. Every pattern is an operation
// pattern, so a rule covers every parameterization of the read it names.
func DefaultRules() Rules {
	r := Rules{
		ops.UpdateCandidateStatus: patterns(candidateReads...),
		ops.Classify:              patterns(candidateReads...),
		ops.Disqualify:            patterns(candidateReads...),
		ops.SendToReview:          patterns(candidateReads...),

		ops.AssignCandidates:  patterns(slices.Concat(candidateReads, []ops.Operation{ops.ListAnalysts})...),
		ops.AssignInterviewer: patterns(slices.Concat(assignmentReads, []ops.Operation{ops.ListInterviewers})...),

		ops.MarkMessageSent: patterns(candidateReads...),

		ops.MoveToInterview:           patterns(interviewReads...),
		ops.StartInterview:            patterns(interviewReads...),
		ops.SubmitInterviewEvaluation: patterns(slices.Concat(interviewReads, []ops.Operation{ops.GetCandidatesByStatus})...),

		ops.SaveMessageTemplate: patterns(ops.GetMessageTemplates),
		ops.AddAnalyst:          patterns(ops.ListAnalysts, ops.ListInterviewers),
		ops.RemoveAnalyst:       patterns(ops.ListAnalysts, ops.ListInterviewers, ops.GetCandidatesByAnalyst),
	}
	return r
}

func patterns(reads ...ops.Operation) []policy.Pattern {
	out := make([]policy.Pattern, len(reads))
	for i, op := range reads {
		out[i] = policy.Operation(op)
	}
	return out
}

// Validate checks that every write has at least one rule, that rules are
// only keyed by writes, and that every read is invalidated by at least one
// write. All problems are reported together.
func Validate(rules Rules) error {
	var errs []error
	for op := range rules {
		if !op.IsWrite() {
			errs = append(errs, fmt.Errorf("invalidation: rule keyed by read operation %s", op))
		}
	}
	for _, w := range ops.Writes() {
		if len(rules[w]) == 0 {
			errs = append(errs, fmt.Errorf("invalidation: write %s has no rules", w))
		}
	}
	for _, r := range ops.Reads() {
		if !covered(rules, r) {
			errs = append(errs, fmt.Errorf("invalidation: read %s is never invalidated", r))
		}
	}
	return errors.Join(errs...)
}

// covered reports whether some rule matches both the bare and the
// parameterized key of read.
func covered(rules Rules, read ops.Operation) bool {
	bare := ops.Key(read, nil)
	withParams := ops.Key(read, ops.Params{"id": "1"})
	for _, pats := range rules {
		for _, p := range pats {
			if p.Match(bare) && p.Match(withParams) {
				return true
			}
		}
	}
	return false
}

// Router applies a fixed rule table to a cache. It is safe for concurrent
// use; the table cannot change after construction.
type Router struct {
	rules  Rules
	purger Purger
	logger *zap.Logger

	// gen counts applied writes. Reads compare it before and after their
	// remote call to tell whether a write may have raced them.
	gen atomic.Uint64
}

// Option configures a Router.
type Option func(*Router)

// WithRules replaces the default table. The table is copied.
func WithRules(rules Rules) Option {
	return func(r *Router) { r.rules = rules }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(r *Router) { r.logger = l }
}

// New creates a Router purging purger. The table is validated once here.
func New(purger Purger, opts ...Option) (*Router, error) {
	r := &Router{rules: DefaultRules(), purger: purger, logger: zap.NewNop()}
	for _, o := range opts {
		o(r)
	}
	if err := Validate(r.rules); err != nil {
		return nil, err
	}
	cp := make(Rules, len(r.rules))
	for op, pats := range r.rules {
		cp[op] = append([]policy.Pattern(nil), pats...)
	}
	r.rules = cp
	return r, nil
}

// RulesFor returns the patterns invalidated by op. Reads have none.
func (r *Router) RulesFor(op ops.Operation) []policy.Matcher {
	pats := r.rules[op]
	out := make([]policy.Matcher, len(pats))
	for i, p := range pats {
		out[i] = p
	}
	return out
}

// Generation returns the number of writes applied so far.
func (r *Router) Generation() uint64 {
	return r.gen.Load()
}

// Apply purges every cached key matched by op's rules and returns how many
// keys were removed. Call it only after op succeeded. The generation is
// bumped before purging, so a read that observed the old generation never
// keeps an entry it stored after the purge.
func (r *Router) Apply(ctx context.Context, op ops.Operation) int {
	r.gen.Add(1)
	removed := 0
	for _, p := range r.rules[op] {
		removed += r.purger.InvalidateMatching(ctx, p)
	}
	r.logger.Debug("invalidation: applied",
		zap.Stringer("op", op),
		zap.Int("removed", removed),
	)
	return removed
}
