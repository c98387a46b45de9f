package solve

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	gsat "github.com/crillab/gophersat/solver"
)

// ToolchainPackage names the dependency that stands for the language
// compiler itself. It is resolved by probing the installed toolchain,
// never by the SAT model, and can never block resolution.
const ToolchainPackage = "nim"

// sentinelVersion pads a package's otherwise-empty candidate set so the
// satisfiability encoding stays well-formed.
const sentinelVersion = "0.0.0"

// Solver resolves the direct dependencies of one manifest at a time. All
// mutable state is scoped to a single Resolve call, so a Solver is safe
// for concurrent use across independent manifests.
type Solver struct {
	sm        SourceManager
	logger    *log.Logger
	toolchain string
}

// NewSolver returns a Solver drawing candidates from sm. The logger is an
// explicit capability; passing nil silences the solver.
func NewSolver(sm SourceManager, logger *log.Logger) *Solver {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Solver{sm: sm, logger: logger, toolchain: ToolchainPackage}
}

// atom is one (package, candidate version) choice.
type atom struct {
	name    string
	version string
}

// varTable is the bidirectional mapping between SAT variable ids and
// atoms. It lives for one Resolve call and is discarded afterwards.
type varTable struct {
	byID   map[int]atom
	byAtom map[atom]int
}

func newVarTable() *varTable {
	return &varTable{byID: make(map[int]atom), byAtom: make(map[atom]int)}
}

func (t *varTable) id(a atom) int {
	if id, ok := t.byAtom[a]; ok {
		return id
	}
	id := len(t.byID) + 1
	t.byID[id] = a
	t.byAtom[a] = id
	return id
}

// depKey identifies a (name, requested constraint) pair for the per-run
// result cache.
type depKey struct {
	name       string
	constraint string
}

// run is the per-resolution state reset at the top of every Resolve.
type run struct {
	vars     *varTable
	versions map[string][]string
	order    []string
	clauses  [][]int
	cache    map[depKey]ResolvedDependency
}

// Resolve picks one concrete version per required package, subject to the
// manifest's range constraints. It fails with *NoCandidateError when a
// single requirement has no satisfying candidate and with
// *ResolutionError when the requirements are jointly unsatisfiable. Any
// satisfying assignment is acceptable; no optimality is promised.
func (s *Solver) Resolve(ctx context.Context, m Manifest) ([]ResolvedDependency, error) {
	deps := m.DependencyConstraints()
	r := &run{
		vars:     newVarTable(),
		versions: make(map[string][]string),
		cache:    make(map[depKey]ResolvedDependency),
	}

	// Candidate discovery, one query per distinct package. The toolchain
	// is checked against the live compiler instead of being modeled.
	for _, d := range deps {
		if d.Name == s.toolchain {
			s.checkToolchain(ctx, d)
			continue
		}
		if _, seen := r.versions[d.Name]; seen {
			continue
		}
		vs, err := s.sm.ListVersions(d.Name)
		if err != nil {
			// Discovery trouble means "no information", not failure.
			s.logger.Warn("candidate discovery failed", "package", d.Name, "err", err)
			vs = nil
		}
		vs = dedupeDescending(vs)
		if len(vs) == 0 {
			vs = []string{sentinelVersion}
		}
		r.versions[d.Name] = vs
		r.order = append(r.order, d.Name)
	}

	// Exactly one version per package: at-least-one plus pairwise
	// at-most-one, or a unit clause for singleton domains. Keeping this
	// group separate from the requirement clauses leaves room for future
	// cross-package conflict clauses.
	for _, name := range r.order {
		vs := r.versions[name]
		ids := make([]int, len(vs))
		for i, v := range vs {
			ids[i] = r.vars.id(atom{name: name, version: v})
		}
		if len(ids) == 1 {
			r.clauses = append(r.clauses, []int{ids[0]})
			continue
		}
		r.clauses = append(r.clauses, append([]int(nil), ids...))
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				r.clauses = append(r.clauses, []int{-ids[i], -ids[j]})
			}
		}
	}

	// At least one in-range version per requirement.
	for _, d := range deps {
		if d.Name == s.toolchain {
			continue
		}
		vs := r.versions[d.Name]
		var lits []int
		for _, v := range vs {
			if Satisfies(v, d.Constraint) {
				lits = append(lits, r.vars.byAtom[atom{name: d.Name, version: v}])
			}
		}
		if len(lits) == 0 {
			return nil, &NoCandidateError{Name: d.Name, Constraint: d.Constraint, Candidates: vs}
		}
		r.clauses = append(r.clauses, lits)
	}

	// Nothing modeled, nothing to solve.
	if len(r.vars.byID) == 0 {
		return nil, nil
	}

	s.logger.Debug("built satisfiability instance",
		"packages", len(r.order), "variables", len(r.vars.byID), "clauses", len(r.clauses))

	sat := gsat.New(gsat.ParseSlice(r.clauses))
	if sat.Solve() != gsat.Sat {
		return nil, &ResolutionError{Packages: r.order}
	}

	// Project the model back onto package -> version. The exactly-one
	// group guarantees a single true variable per package.
	model := sat.Model()
	selected := make(map[string]string, len(r.order))
	for id, a := range r.vars.byID {
		if id-1 < len(model) && model[id-1] {
			selected[a.name] = a.version
		}
	}

	out := make([]ResolvedDependency, 0, len(deps))
	for _, d := range deps {
		k := depKey{name: d.Name, constraint: d.Constraint}
		if _, done := r.cache[k]; done {
			continue
		}
		rd := ResolvedDependency{Name: d.Name, SourceURL: d.SourceURL}
		if v, ok := selected[d.Name]; ok {
			rd.Version = v
			_, rd.Installed = s.sm.InstalledVersion(d.Name)
		} else {
			// Unmodeled package (the toolchain case): the original
			// constraint passes through verbatim.
			rd.Version = d.Constraint
			_, rd.Installed = s.sm.ToolchainVersion(ctx)
		}
		r.cache[k] = rd
		out = append(out, rd)
		s.logger.Debug("resolved", "package", rd.Name, "version", rd.Version, "installed", rd.Installed)
	}
	return out, nil
}

// checkToolchain probes the installed compiler and warns, never fails,
// when it is missing or out of range.
func (s *Solver) checkToolchain(ctx context.Context, d Dependency) {
	v, ok := s.sm.ToolchainVersion(ctx)
	if !ok {
		s.logger.Warn("could not determine toolchain version",
			"package", d.Name, "constraint", d.Constraint)
		return
	}
	if !Satisfies(v, d.Constraint) {
		s.logger.Warn("installed toolchain does not satisfy requirement",
			"package", d.Name, "have", v, "want", d.Constraint)
	}
}

// dedupeDescending drops duplicate versions and sorts the rest highest
// first.
func dedupeDescending(vs []string) []string {
	seen := make(map[string]struct{}, len(vs))
	out := vs[:0:0]
	for _, v := range vs {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && Order(out[j-1], out[j]) < 0; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
