// Package gitx wraps the git operations the release pipeline depends on.
// State queries are read-only and computed fresh on every call; nothing here
// caches across steps that mutate the repository.
package gitx

import (
	"context"
	"fmt"
	"strings"

	"github.com/farman20ali/kdist/internal/execx"
)

// QueryError reports that git itself could not answer a state query, as
// opposed to answering it negatively.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("git %s: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// Client issues git commands in a fixed repository directory.
type Client struct {
	runner execx.Runner
	dir    string
}

func New(runner execx.Runner, dir string) *Client {
	return &Client{runner: runner, dir: dir}
}

func (c *Client) git(ctx context.Context, args ...string) (execx.Result, error) {
	return c.runner.Run(ctx, execx.Command{Name: "git", Args: args, Dir: c.dir})
}

// IsClean reports whether the working tree has no changed or untracked
// entries.
func (c *Client) IsClean(ctx context.Context) (bool, error) {
	res, err := c.git(ctx, "status", "--porcelain")
	if err != nil {
		return false, &QueryError{Op: "status", Err: err}
	}
	if !res.Ok() {
		return false, &QueryError{Op: "status", Err: fmt.Errorf("exit %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))}
	}
	return strings.TrimSpace(res.Stdout) == "", nil
}

// TagExists reports whether the named tag is present locally.
func (c *Client) TagExists(ctx context.Context, tag string) (bool, error) {
	res, err := c.git(ctx, "tag", "-l", tag)
	if err != nil {
		return false, &QueryError{Op: "tag -l", Err: err}
	}
	if !res.Ok() {
		return false, &QueryError{Op: "tag -l", Err: fmt.Errorf("exit %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))}
	}
	return strings.TrimSpace(res.Stdout) != "", nil
}

// CreateTag creates an annotated tag at HEAD.
func (c *Client) CreateTag(ctx context.Context, tag, message string) error {
	res, err := c.git(ctx, "tag", "-a", tag, "-m", message)
	if err != nil {
		return fmt.Errorf("creating tag %s: %w", tag, err)
	}
	if !res.Ok() {
		return fmt.Errorf("creating tag %s: exit %d: %s", tag, res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return nil
}

// PushBranch pushes the named branch to the remote.
func (c *Client) PushBranch(ctx context.Context, remote, branch string) error {
	res, err := c.git(ctx, "push", remote, branch)
	if err != nil {
		return fmt.Errorf("pushing %s: %w", branch, err)
	}
	if !res.Ok() {
		return fmt.Errorf("pushing %s: exit %d: %s", branch, res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return nil
}

// PushTags pushes all local tags to the remote.
func (c *Client) PushTags(ctx context.Context, remote string) error {
	res, err := c.git(ctx, "push", remote, "--tags")
	if err != nil {
		return fmt.Errorf("pushing tags: %w", err)
	}
	if !res.Ok() {
		return fmt.Errorf("pushing tags: exit %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return nil
}
