package hub

import (
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/config"
)

// ReadGitmodules parses a .gitmodules file. A missing file yields no
// submodules.
func ReadGitmodules(file string) ([]Submodule, error) {
	f, err := os.Open(file)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", file, err)
	}
	defer f.Close()

	subs, err := ParseGitmodules(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", file, err)
	}
	return subs, nil
}

// ParseGitmodules decodes [submodule "name"] sections in file order.
// Entries without a path are skipped. Each submodule gets the alias derived
// from its name unless an earlier one already claimed it.
func ParseGitmodules(r io.Reader) ([]Submodule, error) {
	cfg := config.New()
	if err := config.NewDecoder(r).Decode(cfg); err != nil {
		return nil, err
	}

	var subs []Submodule
	claimed := make(map[string]bool)
	for _, section := range cfg.Sections {
		if !section.IsName("submodule") {
			continue
		}
		for _, sub := range section.Subsections {
			p := sub.Options.Get("path")
			if p == "" {
				continue
			}
			sm := Submodule{Name: sub.Name, Path: path.Clean(p)}
			if alias := DeriveAlias(sub.Name); alias != "" && !claimed[alias] {
				claimed[alias] = true
				sm.Alias = alias
			}
			subs = append(subs, sm)
		}
	}
	return subs, nil
}

// DeriveAlias returns the short name of a "<org>-<alias>-monorepo"
// submodule: "decg-fe-monorepo" becomes "fe". Other names have no alias.
func DeriveAlias(name string) string {
	stem, ok := strings.CutSuffix(name, "-monorepo")
	if !ok {
		return ""
	}
	_, alias, ok := strings.Cut(stem, "-")
	if !ok {
		return ""
	}
	return alias
}
