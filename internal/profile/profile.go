// Package profile resolves and parses sparse-checkout profiles: YAML
// documents declaring, per submodule, which paths to materialize.
//
//	submodules:
//	  decg-be-monorepo:
//	    include: [apps/api, apps/worker]
//	  decg-fe-monorepo:
//	    exclude: [apps/storybook]
//	  decg-go-monorepo:        # listed without a scope: full checkout
//
// When the top-level submodules key is absent, every submodule participates
// with a full checkout. When it is present, only the listed submodules
// participate.
package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned for an explicit profile path that does not exist.
var ErrNotFound = errors.New("profile not found")

// Mode is the active sparse-checkout mode of a Scope.
type Mode int

const (
	// ModeNone leaves the working copy as a full checkout.
	ModeNone Mode = iota
	// ModeInclude materializes only the listed paths (cone mode).
	ModeInclude
	// ModeExclude materializes everything except the listed paths.
	ModeExclude
)

func (m Mode) String() string {
	switch m {
	case ModeInclude:
		return "include"
	case ModeExclude:
		return "exclude"
	default:
		return "none"
	}
}

// Scope is the checkout scope of one submodule.
type Scope struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// Mode reports the active mode. A non-empty Include wins over Exclude.
func (s Scope) Mode() Mode {
	switch {
	case len(s.Include) > 0:
		return ModeInclude
	case len(s.Exclude) > 0:
		return ModeExclude
	default:
		return ModeNone
	}
}

// Paths returns the path list of the active mode.
func (s Scope) Paths() []string {
	switch s.Mode() {
	case ModeInclude:
		return s.Include
	case ModeExclude:
		return s.Exclude
	default:
		return nil
	}
}

// Document is a parsed profile.
type Document struct {
	// Path is the file the document was read from.
	Path string

	listed bool
	scopes map[string]Scope
	order  []string
}

type rawDocument struct {
	Submodules yaml.Node `yaml:"submodules"`
}

// Parse decodes a profile document.
func Parse(data []byte) (*Document, error) {
	var raw rawDocument
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	doc := &Document{scopes: make(map[string]Scope)}
	// A missing or null submodules value counts as absent.
	node := &raw.Submodules
	if node.Kind == 0 || node.ShortTag() == "!!null" {
		return doc, nil
	}
	doc.listed = true

	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: submodules must be a mapping", node.Line)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		var scope Scope
		if value.ShortTag() != "!!null" {
			if err := value.Decode(&scope); err != nil {
				return nil, fmt.Errorf("submodule %s: %w", key.Value, err)
			}
		}
		if _, dup := doc.scopes[key.Value]; !dup {
			doc.order = append(doc.order, key.Value)
		}
		doc.scopes[key.Value] = scope
	}
	return doc, nil
}

// Load reads and parses the profile at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing profile %s: %w", path, err)
	}
	doc.Path = path
	return doc, nil
}

// Lists reports whether the document restricts participation with a
// top-level submodules key.
func (d *Document) Lists() bool {
	return d != nil && d.listed
}

// Participates reports whether the named submodule takes part.
func (d *Document) Participates(name string) bool {
	if !d.Lists() {
		return true
	}
	_, ok := d.scopes[name]
	return ok
}

// ScopeFor returns the named submodule's scope. Unlisted submodules get the
// empty scope.
func (d *Document) ScopeFor(name string) Scope {
	if d == nil {
		return Scope{}
	}
	return d.scopes[name]
}

// Listed returns the submodule names under submodules, in document order.
func (d *Document) Listed() []string {
	if d == nil {
		return nil
	}
	return append([]string(nil), d.order...)
}

// Skipped returns the names that do not participate, preserving order.
func (d *Document) Skipped(names []string) []string {
	var skipped []string
	for _, n := range names {
		if !d.Participates(n) {
			skipped = append(skipped, n)
		}
	}
	return skipped
}

// Resolver locates profiles under a hub.
type Resolver struct {
	// Root is the hub root; relative explicit paths are joined to it.
	Root string
	// Dir is the conventional profiles directory, relative to Root.
	Dir string
}

// ConventionalPath is <Root>/<Dir>/<service>-<version>.yaml.
func (r Resolver) ConventionalPath(service, version string) string {
	return filepath.Join(r.Root, filepath.FromSlash(r.Dir), service+"-"+version+".yaml")
}

// Resolve loads the profile for service/version. An explicit path that does
// not exist fails with ErrNotFound. Without an explicit path a missing
// conventional profile yields (nil, nil).
func (r Resolver) Resolve(service, version, explicitPath string) (*Document, error) {
	if explicitPath != "" {
		path := explicitPath
		if !filepath.IsAbs(path) {
			path = filepath.Join(r.Root, path)
		}
		doc, err := Load(path)
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return doc, err
	}

	doc, err := Load(r.ConventionalPath(service, version))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return doc, err
}

// FromIncludeFlags builds the scope for --include paths given without a
// profile. Paths under apps/ name hub-level modules rather than submodule
// paths and are dropped; the rest become one include scope that applies to
// every target submodule.
func FromIncludeFlags(paths []string) (scope Scope, dropped []string) {
	for _, p := range paths {
		if strings.HasPrefix(p, "apps/") {
			dropped = append(dropped, p)
			continue
		}
		scope.Include = append(scope.Include, p)
	}
	return scope, dropped
}
