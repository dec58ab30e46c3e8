package gitx

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farman20ali/kdist/internal/execx"
	"github.com/farman20ali/kdist/internal/testutil/fakerunner"
)

func TestIsClean(t *testing.T) {
	tests := []struct {
		name   string
		stdout string
		want   bool
	}{
		{name: "empty status", stdout: "", want: true},
		{name: "whitespace only", stdout: "\n", want: true},
		{name: "modified file", stdout: " M kport.py\n", want: false},
		{name: "untracked file", stdout: "?? notes.txt\n", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := fakerunner.New()
			runner.Stub("git", []string{"status", "--porcelain"}, execx.Result{Stdout: tt.stdout})

			c := New(runner, "/repo")
			clean, err := c.IsClean(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, clean)
		})
	}
}

func TestIsClean_SubprocessFailure(t *testing.T) {
	runner := fakerunner.New()
	runner.StubErr("git", []string{"status", "--porcelain"}, errors.New("git not found"))

	c := New(runner, "/repo")
	_, err := c.IsClean(context.Background())

	var qerr *QueryError
	require.ErrorAs(t, err, &qerr)
	assert.Equal(t, "status", qerr.Op)
}

func TestTagExists(t *testing.T) {
	runner := fakerunner.New()
	runner.Stub("git", []string{"tag", "-l", "v1.2.3"}, execx.Result{Stdout: "v1.2.3\n"})
	runner.Stub("git", []string{"tag", "-l", "v9.9.9"}, execx.Result{Stdout: ""})

	c := New(runner, "/repo")

	exists, err := c.TagExists(context.Background(), "v1.2.3")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = c.TagExists(context.Background(), "v9.9.9")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTagExists_NonZeroExit(t *testing.T) {
	runner := fakerunner.New()
	runner.Stub("git", []string{"tag", "-l", "v1.0.0"}, execx.Result{ExitCode: 128, Stderr: "not a git repository"})

	c := New(runner, "/repo")
	_, err := c.TagExists(context.Background(), "v1.0.0")

	var qerr *QueryError
	assert.ErrorAs(t, err, &qerr)
}

func TestMutations_ArgvAndDir(t *testing.T) {
	runner := fakerunner.New()
	c := New(runner, "/repo")
	ctx := context.Background()

	require.NoError(t, c.CreateTag(ctx, "v2.0.0", "Release 2.0.0"))
	require.NoError(t, c.PushBranch(ctx, "origin", "main"))
	require.NoError(t, c.PushTags(ctx, "origin"))

	require.Len(t, runner.Calls, 3)
	assert.Equal(t, []string{"tag", "-a", "v2.0.0", "-m", "Release 2.0.0"}, runner.Calls[0].Args)
	assert.Equal(t, []string{"push", "origin", "main"}, runner.Calls[1].Args)
	assert.Equal(t, []string{"push", "origin", "--tags"}, runner.Calls[2].Args)
	for _, call := range runner.Calls {
		assert.Equal(t, "/repo", call.Dir)
	}
}

func TestCreateTag_Failure(t *testing.T) {
	runner := fakerunner.New()
	runner.Stub("git", []string{"tag", "-a", "v1.0.0", "-m", "Release 1.0.0"},
		execx.Result{ExitCode: 128, Stderr: "tag 'v1.0.0' already exists"})

	c := New(runner, "/repo")
	err := c.CreateTag(context.Background(), "v1.0.0", "Release 1.0.0")
	assert.ErrorContains(t, err, "already exists")
}
