// Package bunim implements the manifest model and parser for a Nim
// package manager: it turns .nimble-style manifest text into a structured
// package description and exposes it to the resolution engine in solve.
package bunim

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/bung87/bunim/solve"
)

// DependencySpec is a single requirement extracted from a requires
// statement: a package name, a version constraint, and, for URL
// requirements, the explicit source location.
//
// Constraint is "*", "", or a version string optionally prefixed with a
// comparison operator. The parser's ">="-split convention stores
// `requires "nim >= 1.6.0"` as Name "nim", Constraint "1.6.0".
type DependencySpec struct {
	Name       string
	Constraint string
	SourceURL  string
}

// PackageManifest is the parsed form of one manifest file.
//
// Every field is best-effort: text the grammar cannot place is dropped or
// left on the field it was mis-attributed to, never reported as an error.
type PackageManifest struct {
	Name        string
	Version     string
	Author      string
	Description string
	License     string
	SrcDir      string

	// Bin lists binary names in declaration order. SkipDirs names
	// directories excluded from the content digest at install time.
	Bin      []string
	SkipDirs []string

	Dependencies []DependencySpec
	Features     map[string][]DependencySpec
}

// DependencyConstraints adapts the manifest's direct dependencies to the
// resolver's input type.
func (m *PackageManifest) DependencyConstraints() []solve.Dependency {
	return toSolveDeps(m.Dependencies)
}

// FeatureConstraints returns the direct dependencies with the named
// feature's dependencies appended. An unknown feature contributes
// nothing.
func (m *PackageManifest) FeatureConstraints(feature string) []solve.Dependency {
	deps := toSolveDeps(m.Dependencies)
	return append(deps, toSolveDeps(m.Features[feature])...)
}

func toSolveDeps(specs []DependencySpec) []solve.Dependency {
	out := make([]solve.Dependency, 0, len(specs))
	for _, d := range specs {
		out = append(out, solve.Dependency{
			Name:       d.Name,
			Constraint: d.Constraint,
			SourceURL:  d.SourceURL,
		})
	}
	return out
}

var (
	featurePattern  = regexp.MustCompile(`^feature\s+"([^"]+)"\s*:`)
	assignPattern   = regexp.MustCompile(`^(\w+)\s*=\s*(.*)$`)
	operatorPattern = regexp.MustCompile(`>=|<=|==|!=|>|<`)
	backtickPattern = regexp.MustCompile("`([^`]+)`")
	dquotePattern   = regexp.MustCompile(`"([^"]+)"`)
	selectorPattern = regexp.MustCompile(`\[[^\]]*\]$`)
)

// ParseManifest parses manifest text into a PackageManifest. It is total:
// malformed constructs degrade to absent fields rather than errors.
func ParseManifest(text string) *PackageManifest {
	p := &manifestParser{
		m: &PackageManifest{Features: make(map[string][]DependencySpec)},
	}
	for _, line := range strings.Split(text, "\n") {
		p.line(line)
	}
	p.flush()
	return p.m
}

// ParseManifestFile reads and parses the manifest at path. The only error
// condition is the underlying read; parse problems never surface. A
// manifest without an explicit name is named after the file's base name,
// extension stripped.
func ParseManifestFile(path string) (*PackageManifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading manifest %s", path)
	}
	m := ParseManifest(string(raw))
	if m.Name == "" {
		base := filepath.Base(path)
		m.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return m, nil
}

// manifestParser holds the line-machine state: a pending multi-line value
// accumulation and the feature scope requires statements attach to.
type manifestParser struct {
	m *PackageManifest

	pendingKey string
	pendingVal []string
	feature    string // "" while outside any feature block
}

func (p *manifestParser) line(raw string) {
	if i := strings.Index(raw, "#"); i >= 0 {
		raw = raw[:i]
	}
	line := strings.TrimSpace(raw)
	if line == "" {
		return
	}
	// Scope delimiters are optional; content is processed the same with
	// or without them.
	if line == "begin" || line == "end" {
		return
	}

	switch {
	case line == "requires" || strings.HasPrefix(line, "requires "):
		p.requires(strings.TrimSpace(strings.TrimPrefix(line, "requires")))
	case featurePattern.MatchString(line):
		p.flush()
		name := featurePattern.FindStringSubmatch(line)[1]
		p.feature = name
		if _, ok := p.m.Features[name]; !ok {
			p.m.Features[name] = nil
		}
	case p.isAssignment(line):
		p.flush()
		p.feature = ""
		m := assignPattern.FindStringSubmatch(line)
		p.pendingKey = m[1]
		p.pendingVal = []string{m[2]}
	default:
		if p.pendingKey != "" {
			p.pendingVal = append(p.pendingVal, line)
		}
	}
}

// isAssignment reports whether line starts a key/value assignment. A "=="
// comparison inside continuation text must not be mistaken for one.
func (p *manifestParser) isAssignment(line string) bool {
	m := assignPattern.FindStringSubmatch(line)
	return m != nil && !strings.HasPrefix(m[2], "=")
}

func (p *manifestParser) flush() {
	if p.pendingKey == "" {
		return
	}
	v := parseValue(strings.Join(p.pendingVal, "\n"))
	p.assign(p.pendingKey, v)
	p.pendingKey = ""
	p.pendingVal = nil
}

func (p *manifestParser) assign(key string, v value) {
	switch key {
	case "name", "packageName":
		p.m.Name = v.asString()
	case "version":
		p.m.Version = v.asString()
	case "author":
		p.m.Author = v.asString()
	case "description":
		p.m.Description = v.asString()
	case "license":
		p.m.License = v.asString()
	case "srcDir":
		p.m.SrcDir = v.asString()
	case "bin":
		p.m.Bin = v.asList()
	case "skipDirs":
		p.m.SkipDirs = v.asList()
	}
}

// requires splits a requires statement's argument on commas and converts
// each quoted token into a DependencySpec, appending to the active scope.
func (p *manifestParser) requires(args string) {
	for _, tok := range strings.Split(args, ",") {
		text, rest, ok := extractQuoted(tok)
		if !ok {
			continue
		}
		// An operator after the closing quote carries the constraint:
		// `requires "foo" >= 1.2` reads the same as `requires "foo >= 1.2"`.
		if loc := operatorPattern.FindStringIndex(rest); loc != nil {
			op := rest[loc[0]:loc[1]]
			text = text + " " + op + " " + cleanToken(rest[loc[1]:])
		}
		dep := parseDependency(text)
		if dep.Name == "" {
			continue
		}
		if p.feature != "" {
			p.m.Features[p.feature] = append(p.m.Features[p.feature], dep)
		} else {
			p.m.Dependencies = append(p.m.Dependencies, dep)
		}
	}
}

// extractQuoted pulls the dependency text out of one comma-separated
// token. Backtick quoting wins over double quotes since it is reserved
// for URLs that may themselves sit inside a double-quoted string.
func extractQuoted(tok string) (text, rest string, ok bool) {
	if m := backtickPattern.FindStringSubmatchIndex(tok); m != nil {
		return tok[m[2]:m[3]], tok[m[1]:], true
	}
	if m := dquotePattern.FindStringSubmatchIndex(tok); m != nil {
		return tok[m[2]:m[3]], tok[m[1]:], true
	}
	return "", "", false
}

// cleanToken strips whitespace and leftover quoting from a fragment.
func cleanToken(s string) string {
	return strings.Trim(s, " \t`\"")
}

// parseDependency converts cleaned dependency text into a spec.
//
// URL requirements derive their name from the final path segment, minus a
// .git suffix and a bracketed feature selector. Plain requirements split
// on the first ">="; any other operator embedded in the text is not
// decomposed and the full text becomes the name with a wildcard
// constraint, matching the grammar's historical behavior.
func parseDependency(text string) DependencySpec {
	if strings.Contains(text, "://") {
		url := text
		constraint := "*"
		if i := strings.Index(text, ">="); i >= 0 {
			url = text[:i]
			if c := cleanToken(text[i+2:]); c != "" {
				constraint = c
			}
		}
		url = cleanToken(url)
		url = selectorPattern.ReplaceAllString(url, "")
		name := url
		if i := strings.LastIndex(name, "/"); i >= 0 {
			name = name[i+1:]
		}
		name = strings.TrimSuffix(name, ".git")
		return DependencySpec{Name: name, Constraint: constraint, SourceURL: url}
	}

	if i := strings.Index(text, ">="); i >= 0 {
		constraint := cleanToken(text[i+2:])
		if constraint == "" {
			constraint = "*"
		}
		return DependencySpec{Name: strings.TrimSpace(text[:i]), Constraint: constraint}
	}
	return DependencySpec{Name: strings.TrimSpace(text), Constraint: "*"}
}
