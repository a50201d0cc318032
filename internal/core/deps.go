package core

// deps.go encodes and decodes inter-step dependencies. The source sheet
// gives each step a comma-separated predecessor cell plus a single
// relation-kind cell that applies to every predecessor on that row. The
// format cannot express mixed relation kinds per row; that is a known
// limitation of the source data, preserved here rather than fixed.

import (
	"fmt"
	"strings"
)

// Relation kinds between process steps.
const (
	RelationFinish = "finish" // finish-to-start
	RelationStart  = "start"  // start-to-start
)

// DefaultRelation is assumed when a dependency is stated without a
// relation kind.
const DefaultRelation = RelationFinish

// relationKinds is the closed set of valid relation kinds.
var relationKinds = map[string]bool{
	RelationFinish: true,
	RelationStart:  true,
}

// ValidRelation reports whether a lower-cased relation kind is known.
func ValidRelation(kind string) bool { return relationKinds[kind] }

// Dep is one decoded dependency edge: the predecessor step code and the
// relation kind ordering the two steps.
type Dep struct {
	Code     string
	Relation string
}

// EncodeDeps converts a raw predecessor cell and its relation cell into the
// interchange encoding: "code:relation" pairs joined by commas, relation
// lower-cased. An empty predecessor cell yields "". A stated predecessor is
// never dropped for lack of a relation kind; it is emitted bare and the
// decoder applies the default.
//
//	EncodeDeps("CFA1, CTA1", "Finish") == "CFA1:finish,CTA1:finish"
//	EncodeDeps("CFA1", "")             == "CFA1"
//	EncodeDeps("", "Finish")           == ""
func EncodeDeps(predecessors, relation string) string {
	predecessors = CleanCell(predecessors)
	if predecessors == "" {
		return ""
	}

	suffix := ""
	if kind := strings.ToLower(CleanCell(relation)); kind != "" {
		suffix = ":" + kind
	}

	parts := strings.Split(predecessors, ",")
	encoded := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		encoded = append(encoded, p+suffix)
	}
	return strings.Join(encoded, ",")
}

// DecodeDeps parses the interchange encoding back into dependency edges.
// Bare codes take the default relation kind. Unknown relation kinds are
// reported, not silently coerced.
func DecodeDeps(encoded string) ([]Dep, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, nil
	}

	var deps []Dep
	for _, part := range strings.Split(encoded, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		code, relation := part, DefaultRelation
		if i := strings.Index(part, ":"); i >= 0 {
			code = strings.TrimSpace(part[:i])
			relation = strings.ToLower(strings.TrimSpace(part[i+1:]))
			if relation == "" {
				relation = DefaultRelation
			}
		}
		if code == "" {
			return nil, fmt.Errorf("dependency %q has no predecessor code", part)
		}
		if !ValidRelation(relation) {
			return nil, fmt.Errorf("unknown relation kind %q", relation)
		}
		deps = append(deps, Dep{Code: code, Relation: relation})
	}
	return deps, nil
}

// FindCycle looks for a cycle in a step dependency graph (step code ->
// predecessor codes). It returns the codes forming the first cycle found,
// or nil when the graph is a DAG. Edges to codes absent from the graph are
// ignored here; unresolved references are a separate validation.
func FindCycle(graph map[string][]string) []string {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)

	state := make(map[string]int, len(graph))
	var stack []string
	var cycle []string

	var visit func(code string) bool
	visit = func(code string) bool {
		state[code] = visiting
		stack = append(stack, code)

		for _, pred := range graph[code] {
			if _, known := graph[pred]; !known {
				continue
			}
			switch state[pred] {
			case visiting:
				// Slice the stack from the first occurrence of pred.
				for i, c := range stack {
					if c == pred {
						cycle = append([]string(nil), stack[i:]...)
						return true
					}
				}
			case unvisited:
				if visit(pred) {
					return true
				}
			}
		}

		stack = stack[:len(stack)-1]
		state[code] = done
		return false
	}

	for code := range graph {
		if state[code] == unvisited {
			if visit(code) {
				return cycle
			}
		}
	}
	return nil
}
