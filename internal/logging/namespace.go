package logging

import "strings"

// Rule controls how a named logger subtree behaves. Rules are applied
// once at Setup against the logger registry; they are not re-evaluated
// per event.
//
// DetachSinks removes any sinks attached directly to the subtree so it
// stops double-emitting through its own output. Propagate decides
// whether the subtree's records still flow through the shared pipeline
// (true: redirected once through the root sink; false: fully silenced).
type Rule struct {
	Prefix      string
	DetachSinks bool
	Propagate   bool
}

// DefaultRules mirrors the policy the application ships with: the task
// broker's operational subtrees are redirected into the shared
// pipeline, its raw per-delivery access subtree is silenced (the worker
// re-derives a richer record itself), and the Redis driver's internal
// logger is redirected.
func DefaultRules() []Rule {
	return []Rule{
		{Prefix: "broker", DetachSinks: true, Propagate: true},
		{Prefix: "broker.worker", DetachSinks: true, Propagate: true},
		{Prefix: "broker.scheduler", DetachSinks: true, Propagate: true},
		{Prefix: "broker.access", DetachSinks: true, Propagate: false},
		{Prefix: "redis", DetachSinks: true, Propagate: true},
	}
}

// matchRule returns the most specific rule covering name: the longest
// prefix that equals name or names one of its ancestors.
func matchRule(rules []Rule, name string) (Rule, bool) {
	var best Rule
	found := false
	for _, rule := range rules {
		if rule.Prefix == "" {
			continue
		}
		if name != rule.Prefix && !strings.HasPrefix(name, rule.Prefix+".") {
			continue
		}
		if !found || len(rule.Prefix) > len(best.Prefix) {
			best = rule
			found = true
		}
	}
	return best, found
}
