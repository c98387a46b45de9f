package bunim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseManifestRoundTrip(t *testing.T) {
	m := ParseManifest("version = \"1.0.0\"\nrequires \"nim >= 1.6.0\"")

	assert.Equal(t, "1.0.0", m.Version)
	require.Len(t, m.Dependencies, 1)
	assert.Equal(t, DependencySpec{Name: "nim", Constraint: "1.6.0"}, m.Dependencies[0])
}

func TestParseManifestMultipleRequirementsOneLine(t *testing.T) {
	m := ParseManifest(`requires "nim >= 0.19.4", "hmac"`)

	require.Len(t, m.Dependencies, 2)
	assert.Equal(t, DependencySpec{Name: "nim", Constraint: "0.19.4"}, m.Dependencies[0])
	assert.Equal(t, DependencySpec{Name: "hmac", Constraint: "*"}, m.Dependencies[1])
}

func TestParseManifestBacktickURLWithConstraint(t *testing.T) {
	m := ParseManifest("requires \"`https://github.com/user/repo/pkg` >= 0.18.9\"")

	require.Len(t, m.Dependencies, 1)
	assert.Equal(t, DependencySpec{
		Name:       "pkg",
		Constraint: "0.18.9",
		SourceURL:  "https://github.com/user/repo/pkg",
	}, m.Dependencies[0])
}

func TestParseManifestURLNameDerivation(t *testing.T) {
	m := ParseManifest("requires \"`https://github.com/user/pkgs.git[windy]`\"")

	require.Len(t, m.Dependencies, 1)
	d := m.Dependencies[0]
	assert.Equal(t, "pkgs", d.Name)
	assert.Equal(t, "*", d.Constraint)
	assert.Equal(t, "https://github.com/user/pkgs.git", d.SourceURL)
}

func TestParseManifestOperatorAfterClosingQuote(t *testing.T) {
	m := ParseManifest(`requires "foo" >= 1.2.0`)

	require.Len(t, m.Dependencies, 1)
	assert.Equal(t, DependencySpec{Name: "foo", Constraint: "1.2.0"}, m.Dependencies[0])
}

func TestParseManifestUnsupportedOperatorKeptInName(t *testing.T) {
	// The grammar only decomposes ">="; any other embedded operator
	// leaves the whole text as the name. Longstanding behavior, kept.
	m := ParseManifest(`requires "nim == 1.6.0"`)

	require.Len(t, m.Dependencies, 1)
	assert.Equal(t, DependencySpec{Name: "nim == 1.6.0", Constraint: "*"}, m.Dependencies[0])
}

func TestParseManifestFeatureScoping(t *testing.T) {
	m := ParseManifest(`
version = "0.2.0"
requires "hmac"
feature "extra":
  requires "zippy >= 0.10.0", "jsony"
license = "MIT"
requires "regex"
`)

	require.Len(t, m.Dependencies, 2)
	assert.Equal(t, "hmac", m.Dependencies[0].Name)
	assert.Equal(t, "regex", m.Dependencies[1].Name)
	assert.Equal(t, "MIT", m.License)

	require.Len(t, m.Features["extra"], 2)
	assert.Equal(t, DependencySpec{Name: "zippy", Constraint: "0.10.0"}, m.Features["extra"][0])
	assert.Equal(t, DependencySpec{Name: "jsony", Constraint: "*"}, m.Features["extra"][1])
}

func TestParseManifestCommentsAndScopeDelimiters(t *testing.T) {
	m := ParseManifest(`
begin
version = "1.1.0" # trailing comment
# a full-line comment
requires "hmac" # another
end
`)

	assert.Equal(t, "1.1.0", m.Version)
	require.Len(t, m.Dependencies, 1)
	assert.Equal(t, "hmac", m.Dependencies[0].Name)
}

func TestParseManifestScalarFields(t *testing.T) {
	m := ParseManifest(`
version = "3.4.1"
author = "A. Hacker"
description = "does things"
license = "Apache-2.0"
srcDir = "src"
bin = @["clienttool", "servertool"]
skipDirs = @["tests", "examples"]
`)

	assert.Equal(t, "3.4.1", m.Version)
	assert.Equal(t, "A. Hacker", m.Author)
	assert.Equal(t, "does things", m.Description)
	assert.Equal(t, "Apache-2.0", m.License)
	assert.Equal(t, "src", m.SrcDir)
	assert.Equal(t, []string{"clienttool", "servertool"}, m.Bin)
	assert.Equal(t, []string{"tests", "examples"}, m.SkipDirs)
}

func TestParseManifestMultiLineArray(t *testing.T) {
	m := ParseManifest(`
skipDirs = @[
  "tests",
  "examples"
]
requires "foo"
`)

	assert.Equal(t, []string{"tests", "examples"}, m.SkipDirs)
	require.Len(t, m.Dependencies, 1)
	assert.Equal(t, "foo", m.Dependencies[0].Name)
}

func TestParseManifestBinAsMap(t *testing.T) {
	m := ParseManifest(`bin = {"client": "src/client", "server": "src/server"}`)

	assert.Equal(t, []string{"client", "server"}, m.Bin)
}

func TestParseManifestMalformedIsBestEffort(t *testing.T) {
	m := ParseManifest("}{ not a manifest\nrequires\n= = =\nfeature :\n")

	assert.Empty(t, m.Dependencies)
	assert.Empty(t, m.Version)
}

func TestParseManifestFileInfersName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mypkg.nimble")
	require.NoError(t, os.WriteFile(path, []byte(`version = "0.1.0"`), 0o644))

	m, err := ParseManifestFile(path)
	require.NoError(t, err)
	assert.Equal(t, "mypkg", m.Name)
	assert.Equal(t, "0.1.0", m.Version)

	_, err = ParseManifestFile(filepath.Join(dir, "absent.nimble"))
	assert.Error(t, err)
}
