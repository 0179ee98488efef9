package policy

import (
	"testing"
	"time"

	"github.com/Keksclan/goRawrSheets/ops"
)

func TestResolve_ExactMatch(t *testing.T) {
	r := NewResolver(
		Group("stats").
			Exact("getReportStats").
			Policy(ReadPolicy{TTL: time.Minute}),
	)

	name, pol, ok := r.Resolve("getReportStats")
	if !ok {
		t.Fatal("expected a match")
	}
	if name != "stats" {
		t.Fatalf("got group %q, want %q", name, "stats")
	}
	if pol.TTL != time.Minute {
		t.Fatalf("got ttl %v, want %v", pol.TTL, time.Minute)
	}
}

func TestResolve_NoMatch(t *testing.T) {
	r := NewResolver(Group("stats").Exact("getReportStats").Policy(ReadPolicy{}))
	if _, _, ok := r.Resolve("listCandidates"); ok {
		t.Fatal("expected no match")
	}
}

func TestResolve_ExactBeatsPrefix(t *testing.T) {
	r := NewResolver(
		Group("lists").
			Prefix("getCandidates").
			Policy(ReadPolicy{TTL: 30 * time.Second}),
		Group("per-analyst").
			Exact("getCandidatesByAnalyst").
			Policy(ReadPolicy{TTL: 10 * time.Second}),
	)

	name, pol, _ := r.Resolve("getCandidatesByAnalyst")
	if name != "per-analyst" {
		t.Fatalf("exact should beat prefix: got %q", name)
	}
	if pol.TTL != 10*time.Second {
		t.Fatalf("got ttl %v", pol.TTL)
	}
}

func TestResolve_PrefixBeatsRegex(t *testing.T) {
	r := NewResolver(
		Group("regex").Regex(`^get`).Policy(ReadPolicy{TTL: time.Second}),
		Group("prefix").Prefix("getCandidates").Policy(ReadPolicy{TTL: 2 * time.Second}),
	)

	name, _, _ := r.Resolve("getCandidatesByStatus")
	if name != "prefix" {
		t.Fatalf("prefix should beat regex: got %q", name)
	}
}

func TestResolve_LongerPrefixWins(t *testing.T) {
	r := NewResolver(
		Group("short").Prefix("get").Policy(ReadPolicy{TTL: time.Second}),
		Group("long").Prefix("getCandidates").Policy(ReadPolicy{TTL: 2 * time.Second}),
	)

	name, _, _ := r.Resolve("getCandidatesByStatus")
	if name != "long" {
		t.Fatalf("longer prefix should win: got %q", name)
	}
}

func TestResolve_StableFallback(t *testing.T) {
	r := NewResolver(
		Group("first").Exact("listAnalysts").Policy(ReadPolicy{TTL: time.Second}),
		Group("second").Exact("listAnalysts").Policy(ReadPolicy{TTL: 2 * time.Second}),
	)

	name, pol, _ := r.Resolve("listAnalysts")
	if name != "first" || pol.TTL != time.Second {
		t.Fatalf("first-registered group should win: got %q (%v)", name, pol.TTL)
	}
}

func TestResolve_NilResolver(t *testing.T) {
	var r *Resolver
	if _, _, ok := r.Resolve("listCandidates"); ok {
		t.Fatal("nil resolver must not match")
	}
}

func TestFromTTLs(t *testing.T) {
	r, err := FromTTLs(map[string]time.Duration{
		"listCandidates":       30 * time.Second,
		"prefix:getCandidates": 20 * time.Second,
		"regex:Stats$":         time.Minute,
	})
	if err != nil {
		t.Fatalf("FromTTLs: %v", err)
	}

	cases := map[string]time.Duration{
		"listCandidates":        30 * time.Second,
		"getCandidatesByStatus": 20 * time.Second,
		"getReportStats":        time.Minute,
	}
	for name, want := range cases {
		_, pol, ok := r.Resolve(name)
		if !ok {
			t.Fatalf("expected a match for %s", name)
		}
		if pol.TTL != want {
			t.Fatalf("%s: got %v, want %v", name, pol.TTL, want)
		}
	}
}

func TestFromTTLs_Invalid(t *testing.T) {
	if _, err := FromTTLs(map[string]time.Duration{"regex:(": time.Second}); err == nil {
		t.Fatal("expected error for invalid regex")
	}
	if _, err := FromTTLs(map[string]time.Duration{"listCandidates": -time.Second}); err == nil {
		t.Fatal("expected error for negative ttl")
	}
	if _, err := FromTTLs(map[string]time.Duration{"glob:*": time.Second}); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestOperationPattern(t *testing.T) {
	p := Operation(ops.GetCandidate)

	for _, key := range []string{
		ops.Key(ops.GetCandidate, nil),
		ops.Key(ops.GetCandidate, ops.Params{"id": "123"}),
	} {
		if !p.Match(key) {
			t.Fatalf("expected %q to match", key)
		}
	}

	// getCandidatesByStatus shares the getCandidate prefix but is a
	// different operation.
	if p.Match(ops.Key(ops.GetCandidatesByStatus, ops.Params{"status": "x"})) {
		t.Fatal("operation pattern must not match a longer operation name")
	}
}

func TestParsePattern(t *testing.T) {
	cases := []struct {
		in, key string
		want    bool
	}{
		{"listCandidates", "listCandidates?page=2", true},
		{"exact:listCandidates", "listCandidates?page=2", false},
		{"prefix:list", "listAnalysts", true},
		{"regex:status=Classificado", "getCandidatesByStatus?status=Classificado", true},
	}
	for _, c := range cases {
		p, err := ParsePattern(c.in)
		if err != nil {
			t.Fatalf("ParsePattern(%q): %v", c.in, err)
		}
		if got := p.Match(c.key); got != c.want {
			t.Fatalf("%s.Match(%q) = %v, want %v", p, c.key, got, c.want)
		}
	}
}
