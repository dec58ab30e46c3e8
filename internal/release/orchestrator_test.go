package release

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farman20ali/kdist/internal/config"
	"github.com/farman20ali/kdist/internal/execx"
	"github.com/farman20ali/kdist/internal/testutil/fakerunner"
	"github.com/farman20ali/kdist/internal/ui"
)

// fixture wires an orchestrator over a fake runner and a temp project with
// setup.py declaring version 2.0.0. Package builds are stubbed closures that
// record whether they ran.
type fixture struct {
	runner *fakerunner.Runner
	orch   *Orchestrator
	out    *bytes.Buffer

	debBuilt  bool
	pypiBuilt bool
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "setup.py"), []byte(`version = "2.0.0"`), 0o644))

	f := &fixture{runner: fakerunner.New(), out: &bytes.Buffer{}}
	f.orch = NewOrchestrator(f.runner, config.Defaults(), root, ui.New(f.out), &NonInteractive{Answer: true}, opts)
	f.orch.BuildDeb = func(context.Context) (string, error) {
		f.debBuilt = true
		return filepath.Join(root, "dist", "deb", "kport_2.0.0-1_all.deb"), nil
	}
	f.orch.BuildPyPI = func(context.Context) ([]string, error) {
		f.pypiBuilt = true
		return []string{filepath.Join(root, "dist", "kport-2.0.0-py3-none-any.whl")}, nil
	}
	return f
}

func TestRun_FullPipeline(t *testing.T) {
	f := newFixture(t, Options{})
	f.runner.MarkMissing("gh")

	s, err := f.orch.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2.0.0", s.Version)
	assert.Equal(t, "v2.0.0", s.Tag)
	assert.True(t, f.pypiBuilt)
	assert.True(t, f.debBuilt)
	assert.False(t, s.Failed())

	assert.True(t, f.runner.CalledWith("git", "tag", "-a", "v2.0.0", "-m", "Release 2.0.0"))
	assert.True(t, f.runner.CalledWith("git", "push", "origin", "main"))
	assert.True(t, f.runner.CalledWith("git", "push", "origin", "--tags"))

	// gh is absent, so the release is reported as not published but the run
	// still succeeds with manual instructions printed.
	assert.True(t, s.GitHubAttempted)
	assert.False(t, s.GitHubPublished)
	assert.False(t, f.runner.CalledWith("gh"))
	assert.Contains(t, f.out.String(), "cli.github.com")
}

func TestRun_TagExistsAbortsEverything(t *testing.T) {
	f := newFixture(t, Options{})
	f.runner.Stub("git", []string{"tag", "-l", "v2.0.0"}, execx.Result{Stdout: "v2.0.0\n"})

	_, err := f.orch.Run(context.Background())
	require.ErrorIs(t, err, ErrTagExists)

	assert.False(t, f.debBuilt)
	assert.False(t, f.pypiBuilt)
	assert.False(t, f.runner.CalledWith("git", "tag", "-a"))
	assert.False(t, f.runner.CalledWith("git", "push"))
	assert.False(t, f.runner.CalledWith("gh"))
	assert.Contains(t, f.out.String(), "git tag -d v2.0.0")
}

func TestRun_DirtyTreeAborts(t *testing.T) {
	f := newFixture(t, Options{})
	f.runner.Stub("git", []string{"status", "--porcelain"}, execx.Result{Stdout: " M setup.py\n"})

	_, err := f.orch.Run(context.Background())
	require.ErrorIs(t, err, ErrRepositoryNotClean)
	assert.False(t, f.debBuilt)
	assert.False(t, f.pypiBuilt)
}

func TestRun_DryRunMutatesNothing(t *testing.T) {
	f := newFixture(t, Options{DryRun: true})

	s, err := f.orch.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, s.DryRun)
	assert.True(t, s.PyPIAttempted)
	assert.True(t, s.DebAttempted)
	assert.False(t, f.debBuilt)
	assert.False(t, f.pypiBuilt)

	// Only the two read-only git queries may run.
	for _, c := range f.runner.Calls {
		require.Equal(t, "git", c.Name)
		require.NotEmpty(t, c.Args)
		assert.Contains(t, []string{"status", "tag"}, c.Args[0])
	}
	assert.False(t, f.runner.CalledWith("git", "tag", "-a"))
	assert.False(t, f.runner.CalledWith("git", "push"))
	assert.False(t, f.runner.CalledWith("gh", "release"))
}

func TestRun_DeclinedConfirmationCancels(t *testing.T) {
	f := newFixture(t, Options{})
	f.orch.Prompt = &NonInteractive{Answer: false}

	_, err := f.orch.Run(context.Background())
	require.ErrorIs(t, err, ErrCancelled)
	assert.False(t, f.runner.CalledWith("git", "tag", "-a"))
	assert.False(t, f.debBuilt)
}

func TestRun_MetadataUnavailable(t *testing.T) {
	f := newFixture(t, Options{})
	f.orch.ResolveVersion = func() (string, bool) { return "", false }

	_, err := f.orch.Run(context.Background())
	require.ErrorIs(t, err, ErrMetadataUnavailable)
}

func TestRun_ExplicitVersionOverridesMetadata(t *testing.T) {
	f := newFixture(t, Options{Version: "9.9.9", SkipGitHub: true})

	s, err := f.orch.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v9.9.9", s.Tag)
	assert.True(t, f.runner.CalledWith("git", "tag", "-a", "v9.9.9"))
}

func TestRun_BuildFailureDoesNotBlockOtherKinds(t *testing.T) {
	f := newFixture(t, Options{})
	f.runner.MarkMissing("gh")
	buildErr := errors.New("wheel build exploded")
	f.orch.BuildPyPI = func(context.Context) ([]string, error) { return nil, buildErr }

	s, err := f.orch.Run(context.Background())
	require.NoError(t, err)

	assert.ErrorIs(t, s.PyPIErr, buildErr)
	assert.True(t, f.debBuilt)
	assert.True(t, s.GitHubAttempted)
	assert.True(t, s.Failed())
}

func TestRun_SkipFlags(t *testing.T) {
	f := newFixture(t, Options{SkipPyPI: true, SkipDeb: true, SkipGitHub: true})

	s, err := f.orch.Run(context.Background())
	require.NoError(t, err)

	assert.False(t, s.PyPIAttempted)
	assert.False(t, s.DebAttempted)
	assert.False(t, s.GitHubAttempted)
	assert.False(t, f.debBuilt)
	assert.False(t, f.pypiBuilt)
	// Tagging still happens; skipping package kinds never skips the tag.
	assert.True(t, f.runner.CalledWith("git", "tag", "-a", "v2.0.0"))
}

func TestIsPrecondition(t *testing.T) {
	assert.True(t, IsPrecondition(ErrMetadataUnavailable))
	assert.True(t, IsPrecondition(ErrRepositoryNotClean))
	assert.True(t, IsPrecondition(fmt.Errorf("%w: v1.0.0", ErrTagExists)))
	assert.False(t, IsPrecondition(errors.New("disk failure")))
}
