package release

import (
	"bytes"
	"context"
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

func testPublisher(t *testing.T, runner execx.Runner) (*Publisher, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	return &Publisher{Runner: runner, Config: config.Defaults(), Root: t.TempDir(), Out: ui.New(out)}, out
}

func seedAssets(t *testing.T, root string) (wheel, deb string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "dist", "deb"), 0o755))
	wheel = filepath.Join(root, "dist", "kport-2.0.0-py3-none-any.whl")
	deb = filepath.Join(root, "dist", "deb", "kport_2.0.0-1_all.deb")
	require.NoError(t, os.WriteFile(wheel, []byte("whl"), 0o644))
	require.NoError(t, os.WriteFile(deb, []byte("deb"), 0o644))

	// Source tarballs are never attached.
	require.NoError(t, os.WriteFile(filepath.Join(root, "dist", "kport-2.0.0.tar.gz"), []byte("sdist"), 0o644))
	return wheel, deb
}

func TestAssets(t *testing.T) {
	runner := fakerunner.New()
	p, _ := testPublisher(t, runner)
	wheel, deb := seedAssets(t, p.Root)

	assets, err := p.Assets()
	require.NoError(t, err)
	assert.Equal(t, []string{wheel, deb}, assets)
}

func TestPublish_CreatesRelease(t *testing.T) {
	runner := fakerunner.New()
	p, _ := testPublisher(t, runner)
	wheel, deb := seedAssets(t, p.Root)

	published, err := p.Publish(context.Background(), "v2.0.0", "2.0.0", "the notes")
	require.NoError(t, err)
	assert.True(t, published)

	require.Len(t, runner.Calls, 1)
	call := runner.Calls[0]
	assert.Equal(t, "gh", call.Name)
	assert.Equal(t, []string{
		"release", "create", "v2.0.0",
		"--title", "kport 2.0.0",
		"--notes", "the notes",
		wheel, deb,
	}, call.Args)
	assert.Equal(t, p.Root, call.Dir)
}

func TestPublish_GhMissingIsSoft(t *testing.T) {
	runner := fakerunner.New()
	runner.MarkMissing("gh")
	p, out := testPublisher(t, runner)

	published, err := p.Publish(context.Background(), "v2.0.0", "2.0.0", "notes")
	require.NoError(t, err)
	assert.False(t, published)
	assert.Empty(t, runner.Calls)
	assert.Contains(t, out.String(), "https://cli.github.com/")
}

func TestPublish_GhFailureIsSoft(t *testing.T) {
	runner := fakerunner.New()
	runner.StubPrefix("gh release create", execx.Result{ExitCode: 1, Stderr: "HTTP 422"})
	p, out := testPublisher(t, runner)
	seedAssets(t, p.Root)

	published, err := p.Publish(context.Background(), "v2.0.0", "2.0.0", "notes")
	require.NoError(t, err)
	assert.False(t, published)
	assert.Contains(t, out.String(), "/releases/new?tag=v2.0.0")
}
