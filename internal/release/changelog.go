package release

import (
	"fmt"
	"strings"
)

// Sections groups commit subjects by changelog heading.
type Sections struct {
	Added   []string
	Changed []string
	Fixed   []string
}

// Classify sorts conventional-commit subjects into sections by prefix.
// Subjects matching no prefix are left out.
func Classify(subjects []string) Sections {
	var s Sections
	for _, subject := range subjects {
		switch {
		case strings.HasPrefix(subject, "feat"):
			s.Added = append(s.Added, subject)
		case strings.HasPrefix(subject, "fix"):
			s.Fixed = append(s.Fixed, subject)
		case strings.HasPrefix(subject, "refactor"),
			strings.HasPrefix(subject, "perf"),
			strings.HasPrefix(subject, "style"):
			s.Changed = append(s.Changed, subject)
		}
	}
	return s
}

// RenderChangelog renders a CHANGELOG.md for one version.
func RenderChangelog(version, date string, s Sections) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Changelog\n\n## [%s] - %s\n", version, date)
	writeSection(&sb, "Added", s.Added)
	writeSection(&sb, "Changed", s.Changed)
	writeSection(&sb, "Fixed", s.Fixed)
	return sb.String()
}

func writeSection(sb *strings.Builder, heading string, items []string) {
	fmt.Fprintf(sb, "\n### %s\n", heading)
	if len(items) == 0 {
		sb.WriteString("- (none)\n")
		return
	}
	for _, item := range items {
		fmt.Fprintf(sb, "- %s\n", item)
	}
}
