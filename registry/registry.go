// Package registry maps package names to source URLs using the
// ecosystem's packages.json index, loaded from a local file or fetched
// over HTTP.
package registry

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	radix "github.com/armon/go-radix"
	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
)

// Package is one registry record.
type Package struct {
	Name        string   `json:"name"`
	URL         string   `json:"url,omitempty"`
	Method      string   `json:"method,omitempty"`
	Description string   `json:"description,omitempty"`
	License     string   `json:"license,omitempty"`
	Web         string   `json:"web,omitempty"`
	Tags        []string `json:"tags,omitempty"`

	// Alias points at the canonical record for renamed packages. An
	// alias record carries no URL of its own.
	Alias string `json:"alias,omitempty"`
}

// Registry is an in-memory index over registry records. Names are
// compared case-insensitively. The zero value is unusable; construct with
// New.
type Registry struct {
	logger *log.Logger
	index  *radix.Tree
}

// New returns an empty registry. Passing a nil logger silences it.
func New(logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Registry{logger: logger, index: radix.New()}
}

// Len reports the number of indexed records.
func (r *Registry) Len() int {
	return r.index.Len()
}

// LoadFile reads a packages.json file into the index. Records parsed
// earlier are kept; later files win on name collisions.
func (r *Registry) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading registry file %s", path)
	}
	return r.load(raw)
}

// LoadURL fetches a packages.json document over HTTP with retries.
func (r *Registry) LoadURL(ctx context.Context, url string) error {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.Logger = nil

	req, err := retryablehttp.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return errors.Wrapf(err, "building registry request for %s", url)
	}
	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "fetching registry %s", url)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return errors.Errorf("fetching registry %s: unexpected status %s", url, resp.Status)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "reading registry body from %s", url)
	}
	return r.load(raw)
}

func (r *Registry) load(raw []byte) error {
	var pkgs []Package
	if err := json.Unmarshal(raw, &pkgs); err != nil {
		return errors.Wrap(err, "decoding registry index")
	}
	for _, p := range pkgs {
		if p.Name == "" {
			continue
		}
		r.index.Insert(strings.ToLower(p.Name), p)
	}
	r.logger.Debug("registry loaded", "packages", len(pkgs), "indexed", r.index.Len())
	return nil
}

// Lookup returns the record for name, following at most one alias hop.
func (r *Registry) Lookup(name string) (Package, bool) {
	v, ok := r.index.Get(strings.ToLower(name))
	if !ok {
		return Package{}, false
	}
	p := v.(Package)
	if p.Alias != "" {
		if v, ok = r.index.Get(strings.ToLower(p.Alias)); ok {
			return v.(Package), true
		}
		return Package{}, false
	}
	return p, true
}

// ResolveSourceURL maps a package name to its source URL.
func (r *Registry) ResolveSourceURL(name string) (string, bool) {
	p, ok := r.Lookup(name)
	if !ok || p.URL == "" {
		return "", false
	}
	return p.URL, true
}

// Search returns every record whose name starts with prefix, in lexical
// name order. Alias records are skipped.
func (r *Registry) Search(prefix string) []Package {
	var out []Package
	r.index.WalkPrefix(strings.ToLower(prefix), func(_ string, v interface{}) bool {
		p := v.(Package)
		if p.Alias == "" {
			out = append(out, p)
		}
		return false
	})
	return out
}
