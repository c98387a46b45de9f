// Package solve resolves a manifest's direct dependency set to one
// concrete version per package. Requirements are encoded as a boolean
// satisfiability instance over (package, candidate version) choices and
// handed to a SAT solver; the model is projected back into a resolved
// dependency list.
package solve

import (
	"strings"

	"github.com/Masterminds/semver"
)

// Wildcard is the constraint that admits any version.
const Wildcard = "*"

var operators = []string{">=", "<=", "==", "!=", ">", "<"}

// splitConstraint separates a constraint into its operator and version
// text. Constraints stored by the manifest parser usually carry no
// operator at all, because `requires "foo >= 1.2"` splits on the ">=" and
// keeps only the version; such bare constraints retain their
// minimum-bound meaning.
func splitConstraint(c string) (op, ver string) {
	c = strings.TrimSpace(c)
	for _, o := range operators {
		if strings.HasPrefix(c, o) {
			return o, strings.TrimSpace(c[len(o):])
		}
	}
	return ">=", c
}

// Satisfies reports whether version meets constraint. A wildcard or empty
// constraint always holds. When either side is not valid semver the
// comparison degrades to exact string equality on the version text, which
// keeps non-semver toolchain builds from failing spuriously.
func Satisfies(version, constraint string) bool {
	constraint = strings.TrimSpace(constraint)
	if constraint == "" || constraint == Wildcard {
		return true
	}
	op, want := splitConstraint(constraint)

	have, errHave := semver.NewVersion(version)
	target, errWant := semver.NewVersion(want)
	if errHave != nil || errWant != nil {
		eq := version == want
		switch op {
		case "!=":
			return !eq
		case ">", "<":
			return false
		default:
			return eq
		}
	}

	cmp := have.Compare(target)
	switch op {
	case ">=":
		return cmp >= 0
	case ">":
		return cmp > 0
	case "<=":
		return cmp <= 0
	case "<":
		return cmp < 0
	case "==":
		return cmp == 0
	case "!=":
		return cmp != 0
	}
	return false
}

// Order is the total order over version strings: -1, 0 or 1 as a sorts
// before, equal to, or after b. Valid semver pairs compare by semver
// precedence; anything else falls back to lexical comparison so the order
// stays total and consistent with Satisfies.
func Order(a, b string) int {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	if errA == nil && errB == nil {
		switch c := va.Compare(vb); {
		case c < 0:
			return -1
		case c > 0:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}
