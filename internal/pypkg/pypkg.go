// Package pypkg drives the Python-side packaging flow: requirement checks,
// build via `python3 -m build`, and optional twine uploads.
package pypkg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/farman20ali/kdist/internal/config"
	"github.com/farman20ali/kdist/internal/execx"
	"github.com/farman20ali/kdist/internal/ui"
)

// ErrBuildFailed reports a non-zero exit from the Python build subprocess.
var ErrBuildFailed = errors.New("python package build failed")

// ErrNoWheel reports a build that exited zero without leaving a wheel in
// dist/. Surfaced separately from ErrBuildFailed so callers can tell a broken
// toolchain from an empty result.
var ErrNoWheel = errors.New("no .whl produced in dist/")

// requirements are the Python packages needed to build and upload.
var requirements = []string{"build", "twine"}

// Builder runs the Python packaging tools inside the project root.
type Builder struct {
	Runner execx.Runner
	Config config.Config
	Root   string
	Out    *ui.Printer
}

func NewBuilder(runner execx.Runner, cfg config.Config, root string, out *ui.Printer) *Builder {
	return &Builder{Runner: runner, Config: cfg, Root: root, Out: out}
}

func (b *Builder) python(ctx context.Context, args ...string) (execx.Result, error) {
	return b.Runner.Run(ctx, execx.Command{Name: "python3", Args: args, Dir: b.Root})
}

// CheckRequirements returns the build/upload packages pip does not know
// about.
func (b *Builder) CheckRequirements(ctx context.Context) ([]string, error) {
	if !b.Runner.LookPath("python3") {
		return nil, &MissingInterpreterError{}
	}
	var missing []string
	for _, pkg := range requirements {
		res, err := b.python(ctx, "-m", "pip", "show", pkg)
		if err != nil {
			return nil, fmt.Errorf("checking %s: %w", pkg, err)
		}
		if !res.Ok() {
			missing = append(missing, pkg)
		}
	}
	return missing, nil
}

// InstallRequirements pip-installs the given packages.
func (b *Builder) InstallRequirements(ctx context.Context, pkgs []string) error {
	if len(pkgs) == 0 {
		return nil
	}
	args := append([]string{"-m", "pip", "install"}, pkgs...)
	b.Out.Command(append([]string{"python3"}, args...)...)
	res, err := b.python(ctx, args...)
	if err != nil {
		return fmt.Errorf("installing %s: %w", strings.Join(pkgs, ", "), err)
	}
	if !res.Ok() {
		return fmt.Errorf("installing %s: exit %d: %s", strings.Join(pkgs, ", "), res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return nil
}

// Clean removes previous build output from the project root.
func (b *Builder) Clean() error {
	targets := []string{b.Config.DistDir, "build"}
	eggInfo, err := filepath.Glob(filepath.Join(b.Root, "*.egg-info"))
	if err != nil {
		return err
	}
	for _, e := range eggInfo {
		targets = append(targets, filepath.Base(e))
	}
	for _, t := range targets {
		if err := os.RemoveAll(filepath.Join(b.Root, t)); err != nil {
			return fmt.Errorf("cleaning %s: %w", t, err)
		}
	}
	return nil
}

// Build runs `python3 -m build` and verifies a wheel landed in dist/.
// Returns the wheel paths.
func (b *Builder) Build(ctx context.Context) ([]string, error) {
	b.Out.Command("python3", "-m", "build")
	res, err := b.python(ctx, "-m", "build")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildFailed, err)
	}
	if !res.Ok() {
		return nil, fmt.Errorf("%w: exit %d: %s", ErrBuildFailed, res.ExitCode, strings.TrimSpace(res.Stderr))
	}

	wheels, err := b.Wheels()
	if err != nil {
		return nil, err
	}
	if len(wheels) == 0 {
		return nil, ErrNoWheel
	}
	return wheels, nil
}

// Wheels lists the .whl files currently in dist/.
func (b *Builder) Wheels() ([]string, error) {
	return filepath.Glob(filepath.Join(b.Root, b.Config.DistDir, "*.whl"))
}

// Upload pushes everything in dist/ to PyPI through twine. When test is set,
// the testpypi repository is targeted instead of production.
func (b *Builder) Upload(ctx context.Context, test bool) error {
	files, err := filepath.Glob(filepath.Join(b.Root, b.Config.DistDir, "*"))
	if err != nil {
		return err
	}
	var dist []string
	for _, f := range files {
		if info, err := os.Stat(f); err == nil && !info.IsDir() {
			dist = append(dist, f)
		}
	}
	if len(dist) == 0 {
		return fmt.Errorf("nothing to upload in %s/", b.Config.DistDir)
	}

	args := []string{"-m", "twine", "upload"}
	if test {
		args = append(args, "--repository", "testpypi")
	}
	args = append(args, dist...)

	b.Out.Command(append([]string{"python3"}, args...)...)
	res, err := b.python(ctx, args...)
	if err != nil {
		return fmt.Errorf("twine upload: %w", err)
	}
	if !res.Ok() {
		return fmt.Errorf("twine upload: exit %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return nil
}

// MissingInterpreterError reports that python3 is not installed.
type MissingInterpreterError struct{}

func (e *MissingInterpreterError) Error() string {
	return "python3 not found on PATH"
}
