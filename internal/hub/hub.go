// Package hub models the workspace: the hub repository root, its submodules
// and the conventional locations of docs, releases, sparse profiles and the
// dev compose file. A Hub is discovered once per invocation and passed down
// explicitly.
package hub

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/decg-project/decg/internal/config"
)

// ErrRootNotFound is returned when no ancestor of the start directory holds
// the hub marker.
var ErrRootNotFound = errors.New("hub root not found")

// Submodule is a repository embedded in the hub.
type Submodule struct {
	Name string
	// Path is relative to the hub root, slash separated.
	Path  string
	Alias string
}

// Label is the short name shown to the operator.
func (s Submodule) Label() string {
	if s.Alias != "" {
		return s.Alias
	}
	return s.Name
}

// Matches reports whether sel names this submodule by alias, name, path or
// the last path element.
func (s Submodule) Matches(sel string) bool {
	sel = strings.TrimSuffix(sel, "/")
	switch sel {
	case "":
		return false
	case s.Alias, s.Name, s.Path, filepath.Base(s.Path):
		return true
	}
	return false
}

// Hub is a discovered workspace.
type Hub struct {
	Root       string
	Submodules []Submodule

	docsDir     string
	releasesDir string
	profilesDir string
	composeFile string
}

// FindRoot walks up from start until a directory containing marker is found.
func FindRoot(start, marker string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", start, err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: no %s above %s", ErrRootNotFound, marker, start)
		}
		dir = parent
	}
}

// New builds the Hub rooted at root. Submodules come from cfg when it lists
// any, otherwise from root/.gitmodules in file order.
func New(root string, cfg *config.Configuration) (*Hub, error) {
	h := &Hub{
		Root:        root,
		docsDir:     cfg.Paths.DocsDir,
		releasesDir: cfg.Paths.ReleasesDir,
		profilesDir: cfg.Paths.ProfilesDir,
		composeFile: cfg.Dev.ComposeFile,
	}

	if len(cfg.Submodules) > 0 {
		for _, sm := range cfg.Submodules {
			h.Submodules = append(h.Submodules, Submodule{
				Name:  sm.Name,
				Path:  filepath.ToSlash(sm.Path),
				Alias: sm.Alias,
			})
		}
		return h, nil
	}

	subs, err := ReadGitmodules(filepath.Join(root, ".gitmodules"))
	if err != nil {
		return nil, err
	}
	h.Submodules = subs
	return h, nil
}

// Discover finds the hub root above start and builds the Hub.
func Discover(start string, cfg *config.Configuration) (*Hub, error) {
	root, err := FindRoot(start, cfg.Hub.Marker)
	if err != nil {
		return nil, err
	}
	return New(root, cfg)
}

// Abs joins a hub-relative path to the root. Absolute paths are returned
// unchanged.
func (h *Hub) Abs(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(h.Root, filepath.FromSlash(rel))
}

// Exists reports whether the hub-relative path exists.
func (h *Hub) Exists(rel string) bool {
	_, err := os.Stat(h.Abs(rel))
	return err == nil
}

// SubmoduleDir returns the absolute working-copy path of sm.
func (h *Hub) SubmoduleDir(sm Submodule) string {
	return h.Abs(sm.Path)
}

// Present reports whether sm is checked out. A clone of the hub leaves an
// empty directory for every uninitialized submodule, so the working copy
// counts only once it has a .git entry (a gitdir file for real submodules).
func (h *Hub) Present(sm Submodule) bool {
	_, err := os.Stat(filepath.Join(h.SubmoduleDir(sm), ".git"))
	return err == nil
}

// Lookup finds a submodule by any selector Matches accepts.
func (h *Hub) Lookup(sel string) (Submodule, bool) {
	for _, sm := range h.Submodules {
		if sm.Matches(sel) {
			return sm, true
		}
	}
	return Submodule{}, false
}

// Select resolves selectors to submodules in selector order, skipping
// duplicates. Selectors that match nothing are returned in unknown.
func (h *Hub) Select(selectors []string) (selected []Submodule, unknown []string) {
	seen := make(map[string]bool)
	for _, sel := range selectors {
		sm, ok := h.Lookup(sel)
		if !ok {
			unknown = append(unknown, sel)
			continue
		}
		if seen[sm.Name] {
			continue
		}
		seen[sm.Name] = true
		selected = append(selected, sm)
	}
	return selected, unknown
}

// Names returns the submodule names in order.
func (h *Hub) Names() []string {
	names := make([]string, len(h.Submodules))
	for i, sm := range h.Submodules {
		names[i] = sm.Name
	}
	return names
}

// DocsRoot is the absolute docs tree root.
func (h *Hub) DocsRoot() string { return h.Abs(h.docsDir) }

// DocsDir is the hub-relative docs directory of a service.
func (h *Hub) DocsDir(service string) string { return joinRel(h.docsDir, service) }

// DocsVersionDir is the hub-relative docs directory of a service version.
func (h *Hub) DocsVersionDir(service, version string) string {
	return joinRel(h.docsDir, service, version)
}

// ReleasesDir is the hub-relative releases directory of a service.
func (h *Hub) ReleasesDir(service string) string { return joinRel(h.releasesDir, service) }

// ReleaseVersionDir is the hub-relative release directory of a service version.
func (h *Hub) ReleaseVersionDir(service, version string) string {
	return joinRel(h.releasesDir, service, version)
}

// ProfilePath is the absolute conventional sparse profile of a service version.
func (h *Hub) ProfilePath(service, version string) string {
	return h.Abs(joinRel(h.profilesDir, service+"-"+version+".yaml"))
}

// ComposeFile is the absolute dev compose file path.
func (h *Hub) ComposeFile() string { return h.Abs(h.composeFile) }

// ComposeFileRel is the compose file as configured, for messages.
func (h *Hub) ComposeFileRel() string { return h.composeFile }

func joinRel(parts ...string) string {
	return filepath.ToSlash(filepath.Join(parts...))
}

// HubBranch is the hub branch for a service version.
func HubBranch(service, version string) string {
	return "workspace/" + service + "-" + version
}

// SubmoduleBranch is the development branch created in each submodule.
func SubmoduleBranch(service, version string) string {
	return service + "/develop/" + version
}

// TaskBranch is the branch created by `branch create`.
func TaskBranch(taskID, description string) string {
	return "task/" + taskID + "-" + description
}

// ParseHubBranch extracts service and version from a workspace branch,
// splitting at the last '-'.
func ParseHubBranch(branch string) (service, version string, ok bool) {
	rest, found := strings.CutPrefix(branch, "workspace/")
	if !found {
		return "", "", false
	}
	i := strings.LastIndex(rest, "-")
	if i <= 0 || i == len(rest)-1 {
		return "", "", false
	}
	return rest[:i], rest[i+1:], true
}
