package policy

import (
	"fmt"
	"time"
)

// ReadPolicy holds the cache behaviour for a group of read operations.
type ReadPolicy struct {
	// TTL is how long a successful response stays valid. Zero means the
	// response is never cached.
	TTL time.Duration
}

// GroupBuilder constructs a named group of operation-name patterns sharing
// one ReadPolicy.
type GroupBuilder struct {
	name     string
	patterns []Pattern
	policy   *ReadPolicy
}

// Group starts building a new group with the given name.
func Group(name string) *GroupBuilder {
	return &GroupBuilder{name: name}
}

// Exact adds an exact-match rule for name.
func (g *GroupBuilder) Exact(name string) *GroupBuilder {
	g.patterns = append(g.patterns, Exact(name))
	return g
}

// Prefix adds a prefix-match rule.
func (g *GroupBuilder) Prefix(prefix string) *GroupBuilder {
	g.patterns = append(g.patterns, Prefix(prefix))
	return g
}

// Regex adds a regex-match rule. The expression is compiled immediately; an
// invalid regex panics.
func (g *GroupBuilder) Regex(expr string) *GroupBuilder {
	g.patterns = append(g.patterns, MustRegex(expr))
	return g
}

// Match adds an already-built pattern.
func (g *GroupBuilder) Match(p Pattern) *GroupBuilder {
	g.patterns = append(g.patterns, p)
	return g
}

// Policy attaches the ReadPolicy and returns the finished builder.
func (g *GroupBuilder) Policy(p ReadPolicy) *GroupBuilder {
	g.policy = &p
	return g
}

// Resolver maps an operation name to the best-matching group's ReadPolicy.
type Resolver struct {
	groups []*GroupBuilder
}

// NewResolver creates a Resolver from the supplied groups.
func NewResolver(groups ...*GroupBuilder) *Resolver {
	return &Resolver{groups: groups}
}

// Resolve finds the best-matching group for name.
//
// Priority rules:
//   - Exact matches beat prefix matches, which beat regex matches.
//   - Among matches of the same kind the longer match wins.
//   - Equal kind and length: the group registered first wins.
//
// Groups without a policy are skipped. If nothing matches, ok is false.
func (res *Resolver) Resolve(name string) (group string, pol ReadPolicy, ok bool) {
	if res == nil {
		return "", ReadPolicy{}, false
	}
	bestKind := matchKind(-1)
	bestLen := -1

	for _, g := range res.groups {
		if g.policy == nil {
			continue
		}
		for _, p := range g.patterns {
			matched, mLen := p.match(name)
			if !matched {
				continue
			}
			better := bestKind < 0 ||
				p.kind < bestKind ||
				(p.kind == bestKind && mLen > bestLen)
			if better {
				bestKind = p.kind
				bestLen = mLen
				group = g.name
				pol = *g.policy
				ok = true
			}
		}
	}
	return group, pol, ok
}

// FromTTLs builds a Resolver from a configuration map. Each key is a
// pattern in ParsePattern form; a bare operation name is an exact match.
func FromTTLs(ttls map[string]time.Duration) (*Resolver, error) {
	groups := make([]*GroupBuilder, 0, len(ttls))
	for key, ttl := range ttls {
		if ttl < 0 {
			return nil, fmt.Errorf("policy: negative ttl %s for %q", ttl, key)
		}
		p, err := ParsePattern(key)
		if err != nil {
			return nil, err
		}
		if p.kind == kindOperation {
			p = Exact(p.text)
		}
		groups = append(groups, Group(key).Match(p).Policy(ReadPolicy{TTL: ttl}))
	}
	return NewResolver(groups...), nil
}
