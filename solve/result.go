package solve

// Dependency is the resolver's view of one manifest requirement.
type Dependency struct {
	Name       string
	Constraint string
	SourceURL  string
}

// Manifest is the narrow slice of a parsed manifest the resolver
// consumes.
type Manifest interface {
	DependencyConstraints() []Dependency
}

// ResolvedDependency is one entry of a resolution result. Version holds
// the concrete version chosen by the solver; for packages that were never
// modeled (the toolchain, or anything without candidates) it carries the
// original constraint string verbatim.
type ResolvedDependency struct {
	Name      string
	Version   string
	SourceURL string
	Installed bool

	// Deps is reserved for transitive requirements. Resolution currently
	// covers the direct dependency set only, so it is always empty; the
	// installer re-resolves per fetched manifest instead.
	Deps []ResolvedDependency
}
