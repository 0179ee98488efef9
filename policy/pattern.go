// Package policy provides key patterns and the per-operation read policy
// resolver. Patterns describe which cached reads a write makes stale; read
// policies carry the cache TTL for each read operation.
package policy

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Keksclan/goRawrSheets/ops"
)

// matchKind distinguishes the matching strategies. Lower values win when
// several rules match the same name.
type matchKind int

const (
	kindExact     matchKind = iota // highest priority
	kindOperation                  // exact name or name + "?" + params
	kindPrefix                     // medium priority
	kindRegex                      // lowest priority
)

func (k matchKind) String() string {
	switch k {
	case kindExact:
		return "exact"
	case kindOperation:
		return "op"
	case kindPrefix:
		return "prefix"
	default:
		return "regex"
	}
}

// Pattern matches cache keys (or operation names). The zero Pattern matches
// only the empty string.
type Pattern struct {
	kind matchKind
	text string
	re   *regexp.Regexp
}

// Matcher is satisfied by Pattern and lets callers supply their own
// predicates to bulk invalidation.
type Matcher interface {
	Match(key string) bool
}

// Exact matches text and nothing else.
func Exact(text string) Pattern {
	return Pattern{kind: kindExact, text: text}
}

// Prefix matches any key starting with text.
func Prefix(text string) Pattern {
	return Pattern{kind: kindPrefix, text: text}
}

// Regex compiles expr into a pattern.
func Regex(expr string) (Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, fmt.Errorf("policy: invalid regex %q: %w", expr, err)
	}
	return Pattern{kind: kindRegex, text: expr, re: re}, nil
}

// MustRegex is like Regex but panics on an invalid expression. Use it for
// patterns fixed at build time.
func MustRegex(expr string) Pattern {
	p, err := Regex(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// Operation matches every cache key produced by op, with or without
// parameters. It is the coarse pattern invalidation rules use by default.
func Operation(op ops.Operation) Pattern {
	return Pattern{kind: kindOperation, text: op.String()}
}

// Match reports whether key matches p.
func (p Pattern) Match(key string) bool {
	ok, _ := p.match(key)
	return ok
}

// match also returns the length of the matched portion, used for
// tie-breaking among rules of the same kind.
func (p Pattern) match(s string) (bool, int) {
	switch p.kind {
	case kindExact:
		if s == p.text {
			return true, len(p.text)
		}
	case kindOperation:
		if s == p.text || strings.HasPrefix(s, p.text+ops.KeySeparator) {
			return true, len(p.text)
		}
	case kindPrefix:
		if strings.HasPrefix(s, p.text) {
			return true, len(p.text)
		}
	case kindRegex:
		if p.re == nil {
			return false, 0
		}
		if loc := p.re.FindStringIndex(s); loc != nil {
			return true, loc[1] - loc[0]
		}
	}
	return false, 0
}

func (p Pattern) String() string {
	return p.kind.String() + ":" + p.text
}

// ParsePattern reads the "kind:text" form produced by String. A bare name
// without a kind is treated as an operation pattern.
func ParsePattern(s string) (Pattern, error) {
	kind, text, ok := strings.Cut(s, ":")
	if !ok {
		return Pattern{kind: kindOperation, text: s}, nil
	}
	switch kind {
	case "exact":
		return Exact(text), nil
	case "op":
		return Pattern{kind: kindOperation, text: text}, nil
	case "prefix":
		return Prefix(text), nil
	case "regex":
		return Regex(text)
	}
	return Pattern{}, fmt.Errorf("policy: unknown pattern kind %q", kind)
}
