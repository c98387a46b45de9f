package solve

import (
	"fmt"
	"strings"
)

// NoCandidateError is raised eagerly when a required package has no
// candidate version satisfying its constraint. Catching this before the
// SAT solver runs keeps the message specific; an empty clause would be
// indistinguishable from a harder infeasibility.
type NoCandidateError struct {
	Name       string
	Constraint string
	Candidates []string
}

func (e *NoCandidateError) Error() string {
	if len(e.Candidates) == 0 {
		return fmt.Sprintf("no candidate versions of %s available for constraint %q", e.Name, e.Constraint)
	}
	return fmt.Sprintf("no version of %s satisfies %q (candidates: %s)",
		e.Name, e.Constraint, strings.Join(e.Candidates, ", "))
}

// ResolutionError is raised only after the full clause set is built and
// the solver reports that no assignment exists. It can only arise from
// interactions between requirements on the same package, since
// single-requirement infeasibility is caught as a NoCandidateError.
type ResolutionError struct {
	Packages []string
}

func (e *ResolutionError) Error() string {
	if len(e.Packages) == 0 {
		return "dependency constraints are unsatisfiable"
	}
	return fmt.Sprintf("dependency constraints over %s are mutually unsatisfiable",
		strings.Join(e.Packages, ", "))
}
