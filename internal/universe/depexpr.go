// Package universe builds the immutable PackageUniverse (§3, §4.A): for each
// binary, its CNF dependency clauses (as interned sets of BinaryId),
// negative deps, reverse deps and equivalence class.
package universe

import (
	"strings"

	"github.com/distr1/archmigrate"
)

// Constraint is one "name (op version)" conjunct or disjunct in a raw
// dependency/conflict expression.
type Constraint struct {
	Name    string
	Op      string // "", ">=", "<=", ">>", "<<", "="
	Version archmigrate.Version
}

// Satisfies reports whether the candidate version v satisfies this
// constraint.
func (c Constraint) Satisfies(v archmigrate.Version) bool {
	cmp := v.Compare(c.Version)
	switch c.Op {
	case "", "any":
		return true
	case ">=":
		return cmp >= 0
	case "<=":
		return cmp <= 0
	case ">>", ">":
		return cmp > 0
	case "<<", "<":
		return cmp < 0
	case "=":
		return cmp == 0
	default:
		return true
	}
}

// ParseDependsExpr parses a raw Depends/Pre-Depends/Conflicts/Breaks-style
// expression into CNF: an AND of OR-groups of Constraints. Pre-Depends must
// already have been merged into Depends, and Breaks into Conflicts, by the
// archive ingestion step (§6), not here.
func ParseDependsExpr(raw string) [][]Constraint {
	raw = strings.ReplaceAll(raw, "\n", " ")
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var clauses [][]Constraint
	for _, conjunct := range strings.Split(raw, ",") {
		conjunct = strings.TrimSpace(conjunct)
		if conjunct == "" {
			continue
		}
		var alts []Constraint
		for _, alt := range strings.Split(conjunct, "|") {
			if c, ok := parseOne(alt); ok {
				alts = append(alts, c)
			}
		}
		if len(alts) > 0 {
			clauses = append(clauses, alts)
		}
	}
	return clauses
}

func parseOne(s string) (Constraint, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Constraint{}, false
	}
	open := strings.IndexByte(s, '(')
	if open == -1 {
		return Constraint{Name: strings.TrimSpace(s)}, true
	}
	name := strings.TrimSpace(s[:open])
	rest := strings.TrimSpace(strings.TrimSuffix(s[open+1:], ")"))
	rest = strings.TrimSuffix(rest, "[")
	parts := strings.SplitN(rest, " ", 2)
	if len(parts) != 2 {
		return Constraint{Name: name}, true
	}
	return Constraint{
		Name:    name,
		Op:      strings.TrimSpace(parts[0]),
		Version: archmigrate.ParseVersion(strings.TrimSpace(parts[1])),
	}, true
}
