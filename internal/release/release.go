// Package release manages per-version release artifacts of the hub: the
// release templates, the generated changelog, annotated tags and GitHub
// releases.
package release

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	clierrors "github.com/decg-project/decg/internal/errors"
	"github.com/decg-project/decg/internal/git"
	"github.com/decg-project/decg/internal/health"
	"github.com/decg-project/decg/internal/hub"
	"github.com/decg-project/decg/internal/logging"
	"github.com/decg-project/decg/internal/output"
	"github.com/decg-project/decg/internal/scaffold"
	"github.com/decg-project/decg/internal/shell"
	"go.uber.org/zap"
)

// ErrTagExists is returned by Tag when the tag is already present.
var ErrTagExists = errors.New("tag already exists")

const ghInstall = "https://cli.github.com"

// Manager runs release operations against a hub.
type Manager struct {
	hub      *hub.Hub
	runner   shell.Runner
	git      git.Reader
	scaffold *scaffold.Scaffolder
	checker  *health.Checker
	gh       string
	out      io.Writer
	logger   *zap.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithChecker sets the tool checker used before invoking gh.
func WithChecker(c *health.Checker) Option {
	return func(m *Manager) {
		m.checker = c
	}
}

// WithGitHubCommand sets the gh command string.
func WithGitHubCommand(command string) Option {
	return func(m *Manager) {
		m.gh = health.Executable(command, "gh")
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// New creates a Manager. sc must be rooted at the hub root.
func New(h *hub.Hub, runner shell.Runner, reader git.Reader, sc *scaffold.Scaffolder, out io.Writer, opts ...Option) *Manager {
	m := &Manager{
		hub:      h,
		runner:   runner,
		git:      reader,
		scaffold: sc,
		checker:  health.NewChecker(),
		gh:       "gh",
		out:      out,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = logging.OrNop(m.logger)
	return m
}

// TagName is the release tag of service at version.
func TagName(service, version string) string {
	return service + "-" + version
}

// Init creates the release templates for a new version. An existing
// release directory only warns.
func (m *Manager) Init(service, version string) error {
	dir := m.hub.ReleaseVersionDir(service, version)
	output.Title(m.out, "Creating release folder: %s %s", service, version)

	err := m.scaffold.CreateReleaseTemplates(dir, scaffold.Data{Service: service, Version: version})
	if scaffold.IsExists(err) {
		output.Warning(m.out, "Already exists: %s", dir)
		return nil
	}
	if err != nil {
		return err
	}
	output.Success(m.out, "Release folder created: %s", dir)
	return nil
}

// ChangelogOptions configures Changelog.
type ChangelogOptions struct {
	Service string
	Version string
	// Date is the release date heading. Empty means "TBD".
	Date string
	// Since bounds the commits considered.
	Since time.Time
}

// Changelog writes CHANGELOG.md for a version from the hub's recent commit
// subjects. It returns the written path, relative to the hub root.
func (m *Manager) Changelog(opts ChangelogOptions) (string, error) {
	output.Title(m.out, "Generating changelog: %s %s", opts.Service, opts.Version)

	subjects, err := m.git.CommitSubjects(m.hub.Root, opts.Since)
	if err != nil {
		return "", fmt.Errorf("reading commit history: %w", err)
	}
	m.logger.Debug("changelog commits", zap.Int("count", len(subjects)), zap.Time("since", opts.Since))

	date := opts.Date
	if date == "" {
		date = "TBD"
	}
	content := RenderChangelog(opts.Version, date, Classify(subjects))

	file := path.Join(m.hub.ReleaseVersionDir(opts.Service, opts.Version), scaffold.ChangelogFile)
	if err := m.scaffold.WriteFile(file, []byte(content)); err != nil {
		return "", err
	}
	output.Success(m.out, "Changelog written: %s", file)
	return file, nil
}

// TagOptions configures Tag.
type TagOptions struct {
	Service string
	Version string
	// Message is the annotation. Empty means "Release <service> <version>".
	Message string
	// Push sends the tag to origin after creating it.
	Push bool
}

// Tag creates the annotated release tag in the hub and optionally pushes it.
func (m *Manager) Tag(ctx context.Context, opts TagOptions) (string, error) {
	tag := TagName(opts.Service, opts.Version)
	output.Title(m.out, "Creating tag: %s", tag)

	exists, err := m.git.TagExists(m.hub.Root, tag)
	if err != nil {
		return "", err
	}
	if exists {
		return "", &clierrors.CLIError{
			Category:    clierrors.Prerequisite,
			Message:     fmt.Sprintf("tag %s already exists", tag),
			Remediation: []string{fmt.Sprintf("Delete it first with: git tag -d %s", tag)},
			Err:         ErrTagExists,
		}
	}

	msg := opts.Message
	if msg == "" {
		msg = fmt.Sprintf("Release %s %s", opts.Service, opts.Version)
	}
	if _, err := m.runner.Run(ctx, shell.Git(m.hub.Root, "tag", "-a", tag, "-m", msg)); err != nil {
		return "", err
	}

	if opts.Push {
		if _, err := m.runner.Run(ctx, shell.Git(m.hub.Root, "push", "origin", tag)); err != nil {
			return "", err
		}
	}

	output.Success(m.out, "Tag created: %s", tag)
	return tag, nil
}

// PublishOptions configures Publish.
type PublishOptions struct {
	Service string
	Version string
	Draft   bool
}

// Publish creates a GitHub release for the version's tag, using the
// version's RELEASE-NOTES.md as notes when present.
func (m *Manager) Publish(ctx context.Context, opts PublishOptions) error {
	if err := m.checker.RequireTool(m.gh, ghInstall); err != nil {
		return err
	}

	tag := TagName(opts.Service, opts.Version)
	output.Title(m.out, "Creating GitHub release: %s", tag)

	args := []string{"release", "create", tag}
	notes := path.Join(m.hub.ReleaseVersionDir(opts.Service, opts.Version), scaffold.ReleaseNotesFile)
	if m.scaffold.Exists(notes) {
		args = append(args, "--notes-file", m.hub.Abs(notes))
	}
	if opts.Draft {
		args = append(args, "--draft")
	}

	if _, err := m.runner.Run(ctx, shell.Command{Name: m.gh, Args: args, Dir: m.hub.Root, Interactive: true}); err != nil {
		return err
	}
	output.Success(m.out, "GitHub release created")
	return nil
}
