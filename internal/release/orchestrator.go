// Package release sequences a full release: resolve version, validate
// repository state, confirm, tag and push, build each package kind, collect
// notes, publish the remote release, summarize.
package release

import (
	"context"
	"errors"
	"fmt"

	"github.com/farman20ali/kdist/internal/config"
	"github.com/farman20ali/kdist/internal/debpkg"
	"github.com/farman20ali/kdist/internal/execx"
	"github.com/farman20ali/kdist/internal/gitx"
	"github.com/farman20ali/kdist/internal/project"
	"github.com/farman20ali/kdist/internal/pypkg"
	"github.com/farman20ali/kdist/internal/ui"
)

// Options select which parts of the pipeline run.
type Options struct {
	// Version overrides the version resolved from project metadata.
	Version string

	SkipPyPI   bool
	SkipDeb    bool
	SkipGitHub bool

	// DryRun performs every read-only check, logs intended mutations, and
	// executes none of them.
	DryRun bool

	Remote string
	Branch string
}

func (o *Options) setDefaults() {
	if o.Remote == "" {
		o.Remote = "origin"
	}
	if o.Branch == "" {
		o.Branch = "main"
	}
}

// gitAPI is the slice of gitx.Client the orchestrator needs.
type gitAPI interface {
	IsClean(ctx context.Context) (bool, error)
	TagExists(ctx context.Context, tag string) (bool, error)
	CreateTag(ctx context.Context, tag, message string) error
	PushBranch(ctx context.Context, remote, branch string) error
	PushTags(ctx context.Context, remote string) error
}

// Summary reports what the pipeline did, per package kind. Build failures in
// one kind are recorded here rather than aborting the rest.
type Summary struct {
	Version string
	Tag     string
	DryRun  bool

	PyPIAttempted bool
	PyPIErr       error
	Wheels        []string

	DebAttempted bool
	DebErr       error
	DebArtifact  string

	GitHubAttempted bool
	GitHubPublished bool
}

// Orchestrator drives the pipeline. Fields are exported dependencies so
// tests can substitute any collaborator; NewOrchestrator wires the real ones.
type Orchestrator struct {
	Opts   Options
	Config config.Config
	Root   string
	Out    *ui.Printer
	Prompt Prompter
	Runner execx.Runner

	Git       gitAPI
	Publisher *Publisher

	// ResolveVersion reads the declared version from project metadata.
	ResolveVersion func() (string, bool)

	// BuildDeb and BuildPyPI attempt one package kind each.
	BuildDeb  func(ctx context.Context) (string, error)
	BuildPyPI func(ctx context.Context) ([]string, error)
}

func NewOrchestrator(runner execx.Runner, cfg config.Config, root string, out *ui.Printer, prompt Prompter, opts Options) *Orchestrator {
	opts.setDefaults()

	deb := debpkg.NewBuilder(runner, cfg, root, out)
	py := pypkg.NewBuilder(runner, cfg, root, out)

	return &Orchestrator{
		Opts:      opts,
		Config:    cfg,
		Root:      root,
		Out:       out,
		Prompt:    prompt,
		Runner:    runner,
		Git:       gitx.New(runner, root),
		Publisher: &Publisher{Runner: runner, Config: cfg, Root: root, Out: out},
		ResolveVersion: func() (string, bool) {
			return project.LoadMetadataVersion(root)
		},
		BuildDeb:  deb.Build,
		BuildPyPI: buildPyPI(py),
	}
}

// buildPyPI is the PyPI package kind: requirement check, clean, build,
// verify wheels.
func buildPyPI(py *pypkg.Builder) func(ctx context.Context) ([]string, error) {
	return func(ctx context.Context) ([]string, error) {
		missing, err := py.CheckRequirements(ctx)
		if err != nil {
			return nil, err
		}
		if len(missing) > 0 {
			if err := py.InstallRequirements(ctx, missing); err != nil {
				return nil, err
			}
		}
		if err := py.Clean(); err != nil {
			return nil, err
		}
		return py.Build(ctx)
	}
}

// Run executes the pipeline. Precondition failures return an error and stop
// everything; per-kind build failures and publish failures are recorded in
// the summary and do not block later steps.
func (o *Orchestrator) Run(ctx context.Context) (*Summary, error) {
	o.Opts.setDefaults()
	s := &Summary{DryRun: o.Opts.DryRun}

	o.Out.Header(fmt.Sprintf("%s release", o.Config.Package))

	// Resolve version.
	version := o.Opts.Version
	if version == "" {
		v, ok := o.ResolveVersion()
		if !ok {
			return s, ErrMetadataUnavailable
		}
		version = v
	}
	s.Version = version
	s.Tag = "v" + version

	o.Out.Field("Release version", s.Version)
	o.Out.Field("Git tag", s.Tag)
	if o.Opts.DryRun {
		o.Out.Warn("dry run mode - no changes will be made")
	}

	// Validate repository state. Both checks are fresh queries; a stale
	// answer here could tag a dirty tree.
	o.Out.Header("Pre-flight checks")
	clean, err := o.Git.IsClean(ctx)
	if err != nil {
		return s, err
	}
	if !clean {
		o.Out.Fail("working directory has uncommitted changes")
		o.Out.Plain("Commit or stash changes before releasing")
		return s, ErrRepositoryNotClean
	}
	o.Out.Success("working directory is clean")

	exists, err := o.Git.TagExists(ctx, s.Tag)
	if err != nil {
		return s, err
	}
	if exists {
		o.Out.Fail(fmt.Sprintf("tag %s already exists", s.Tag))
		o.Out.Plain("Delete it first or use a different version:")
		o.Out.Plain("  git tag -d %s", s.Tag)
		o.Out.Plain("  git push %s :refs/tags/%s", o.Opts.Remote, s.Tag)
		return s, fmt.Errorf("%w: %s", ErrTagExists, s.Tag)
	}
	o.Out.Success(fmt.Sprintf("tag %s is available", s.Tag))

	// Confirm.
	if !o.Opts.DryRun {
		ok, err := o.Prompt.Confirm(fmt.Sprintf("Ready to release %s %s. Proceed?", o.Config.Package, version))
		if err != nil {
			return s, err
		}
		if !ok {
			return s, ErrCancelled
		}
	}

	// Tag and push.
	o.Out.Header("Creating git tag")
	if o.Opts.DryRun {
		o.Out.Warn(fmt.Sprintf("dry run: would create and push tag %s", s.Tag))
	} else {
		if err := o.Git.CreateTag(ctx, s.Tag, "Release "+version); err != nil {
			return s, err
		}
		if err := o.Git.PushBranch(ctx, o.Opts.Remote, o.Opts.Branch); err != nil {
			return s, err
		}
		if err := o.Git.PushTags(ctx, o.Opts.Remote); err != nil {
			return s, err
		}
		o.Out.Success("tag created and pushed")
	}

	o.buildPackages(ctx, s)

	// Collect notes. The templated default stands in whenever prompting is
	// skipped.
	notes := DefaultNotes(o.Config.Package, version)
	if !o.Opts.SkipGitHub && !o.Opts.DryRun {
		o.Out.Step("release notes")
		notes, err = o.Prompt.ReadNotes(notes)
		if err != nil {
			return s, err
		}
	}

	// Publish.
	if !o.Opts.SkipGitHub {
		s.GitHubAttempted = true
		if o.Opts.DryRun && o.Runner.LookPath("gh") {
			o.Out.Warn(fmt.Sprintf("dry run: would create GitHub release %s", s.Tag))
		} else if o.Opts.DryRun {
			// gh is absent; the publisher only prints the manual
			// instructions, which is side-effect free.
			_, _ = o.Publisher.Publish(ctx, s.Tag, version, notes)
		} else {
			published, err := o.Publisher.Publish(ctx, s.Tag, version, notes)
			if err != nil {
				return s, err
			}
			s.GitHubPublished = published
		}
	}

	o.summarize(s)
	return s, nil
}

func (o *Orchestrator) buildPackages(ctx context.Context, s *Summary) {
	if !o.Opts.SkipPyPI {
		s.PyPIAttempted = true
		if o.Opts.DryRun {
			o.Out.Warn("dry run: would build PyPI packages")
		} else {
			o.Out.Header("Building PyPI packages")
			wheels, err := o.BuildPyPI(ctx)
			if err != nil {
				s.PyPIErr = err
				o.Out.Fail("PyPI package build failed: " + err.Error())
			} else {
				s.Wheels = wheels
				o.Out.Success("PyPI packages built")
			}
		}
	}

	if !o.Opts.SkipDeb {
		s.DebAttempted = true
		if o.Opts.DryRun {
			o.Out.Warn("dry run: would build Debian package")
		} else {
			o.Out.Header("Building Debian package")
			artifact, err := o.BuildDeb(ctx)
			switch {
			case err != nil:
				s.DebErr = err
				o.Out.Fail("Debian package build failed: " + err.Error())
			case artifact == "":
				o.Out.Warn("build finished but no new .deb was located")
			default:
				s.DebArtifact = artifact
				o.Out.Success("Debian package built: " + artifact)
			}
		}
	}
}

func (o *Orchestrator) summarize(s *Summary) {
	o.Out.Header("Release summary")
	o.Out.Field("Version", s.Version)
	o.Out.Field("Tag", s.Tag)

	if s.PyPIAttempted {
		if s.PyPIErr != nil {
			o.Out.Fail("PyPI packages: " + s.PyPIErr.Error())
		} else {
			o.Out.Success("PyPI packages built")
		}
	}
	if s.DebAttempted {
		switch {
		case s.DebErr != nil:
			o.Out.Fail("Debian package: " + s.DebErr.Error())
		case s.DebArtifact != "" || s.DryRun:
			o.Out.Success("Debian package built")
		}
	}

	o.Out.Plain("")
	o.Out.Field("Next steps", "")
	if s.PyPIAttempted && s.PyPIErr == nil && !s.DryRun {
		o.Out.Plain("  1. Upload to PyPI: kdist pypi upload")
	}
	o.Out.Plain("  2. Check GitHub release: %s/releases/tag/%s", o.Config.Homepage, s.Tag)
	o.Out.Plain("  3. Test installation: pip install %s==%s", o.Config.Package, s.Version)
}

// Failed reports whether any attempted package kind failed.
func (s *Summary) Failed() bool {
	return s.PyPIErr != nil || s.DebErr != nil
}

// IsPrecondition reports whether err is one of the release preconditions, as
// opposed to an infrastructure failure.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrMetadataUnavailable) ||
		errors.Is(err, ErrRepositoryNotClean) ||
		errors.Is(err, ErrTagExists)
}
