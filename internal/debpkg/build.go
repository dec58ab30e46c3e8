package debpkg

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/farman20ali/kdist/internal/config"
	"github.com/farman20ali/kdist/internal/execx"
	"github.com/farman20ali/kdist/internal/project"
	"github.com/farman20ali/kdist/internal/ui"
)

// Builder produces a .deb from an isolated copy of the project tree. The
// generated packaging never enters the permanent tree, and nothing is copied
// into the stable dist directory until the build subprocess has exited
// successfully.
type Builder struct {
	Runner   execx.Runner
	Config   config.Config
	Root     string
	Out      *ui.Printer
	Skeleton *SkeletonGenerator
}

func NewBuilder(runner execx.Runner, cfg config.Config, root string, out *ui.Printer) *Builder {
	return &Builder{
		Runner:   runner,
		Config:   cfg,
		Root:     root,
		Out:      out,
		Skeleton: NewSkeletonGenerator(runner, cfg),
	}
}

func (b *Builder) distDir() string {
	return filepath.Join(b.Root, b.Config.DistDir, "deb")
}

// Preflight generates a throwaway skeleton in a temp copy of the tree and
// reports unmet Build-Depends. The temp tree is removed before returning.
func (b *Builder) Preflight(ctx context.Context) ([]string, error) {
	tmp, err := os.MkdirTemp("", b.Config.Package+"-deb-check-")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(tmp) }()

	workDir := filepath.Join(tmp, b.Config.Package)
	if err := b.copyTree(workDir); err != nil {
		return nil, err
	}
	version, _ := project.LoadMetadataVersion(b.Root)
	if _, err := b.Skeleton.Generate(ctx, workDir, version); err != nil {
		return nil, err
	}
	return CheckBuildDeps(ctx, b.Runner, workDir)
}

// Build runs the full sequence: isolate, generate skeleton, snapshot, invoke
// dpkg-buildpackage, diff, collect. It returns the canonical artifact path
// under dist/deb, or "" when the build succeeded but produced nothing new.
func (b *Builder) Build(ctx context.Context) (string, error) {
	if missing := MissingBuildTools(b.Runner); len(missing) > 0 {
		return "", &ToolchainError{Missing: missing}
	}

	tmp, err := os.MkdirTemp("", b.Config.Package+"-deb-")
	if err != nil {
		return "", fmt.Errorf("creating temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(tmp) }()

	workDir := filepath.Join(tmp, b.Config.Package)
	if err := b.copyTree(workDir); err != nil {
		return "", err
	}

	version, _ := project.LoadMetadataVersion(b.Root)
	debVersion, err := b.Skeleton.Generate(ctx, workDir, version)
	if err != nil {
		return "", err
	}
	b.Out.Step(fmt.Sprintf("building .deb (generated debian version: %s)", debVersion))

	// dpkg-buildpackage writes artifacts next to the working copy, not into
	// it. Snapshot what is already there so only post-build files count.
	before, err := debNames(tmp)
	if err != nil {
		return "", err
	}

	b.Out.Command("dpkg-buildpackage", "-us", "-uc")
	res, err := b.Runner.Run(ctx, execx.Command{Name: "dpkg-buildpackage", Args: []string{"-us", "-uc"}, Dir: workDir})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBuildFailed, err)
	}
	if !res.Ok() {
		return "", fmt.Errorf("%w: exit %d: %s", ErrBuildFailed, res.ExitCode, strings.TrimSpace(res.Stderr))
	}

	copied, err := b.collectNew(tmp, before)
	if err != nil {
		return "", err
	}
	if len(copied) == 0 {
		return "", nil
	}
	return canonicalArtifact(copied), nil
}

// debNames returns the set of .deb filenames directly under dir.
func debNames(dir string) (map[string]bool, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.deb"))
	if err != nil {
		return nil, err
	}
	names := make(map[string]bool, len(matches))
	for _, m := range matches {
		names[filepath.Base(m)] = true
	}
	return names, nil
}

// collectNew copies artifacts not present in the pre-build snapshot into the
// stable dist directory, preserving file metadata. The dist directory is
// append-only: prior releases' files stay, distinguished by versioned names.
func (b *Builder) collectNew(buildParent string, before map[string]bool) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(buildParent, "*.deb"))
	if err != nil {
		return nil, err
	}

	var fresh []string
	for _, m := range matches {
		if !before[filepath.Base(m)] {
			fresh = append(fresh, m)
		}
	}
	if len(fresh) == 0 {
		return nil, nil
	}

	if err := os.MkdirAll(b.distDir(), 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", b.distDir(), err)
	}

	var copied []string
	for _, src := range fresh {
		dest := filepath.Join(b.distDir(), filepath.Base(src))
		if err := copyFile(src, dest); err != nil {
			return nil, fmt.Errorf("collecting %s: %w", filepath.Base(src), err)
		}
		copied = append(copied, dest)
	}
	return copied, nil
}

// canonicalArtifact prefers the main package over dbgsym/source variants:
// debug-symbol names sort last, then lexicographically.
func canonicalArtifact(paths []string) string {
	sorted := append([]string(nil), paths...)
	sort.Slice(sorted, func(i, j int) bool {
		di := strings.Contains(filepath.Base(sorted[i]), "dbgsym")
		dj := strings.Contains(filepath.Base(sorted[j]), "dbgsym")
		if di != dj {
			return !di
		}
		return filepath.Base(sorted[i]) < filepath.Base(sorted[j])
	})
	return sorted[0]
}

// copyTree replicates the project tree into dest, leaving out VCS metadata,
// caches, virtualenvs, and prior build output.
func (b *Builder) copyTree(dest string) error {
	excluded := make(map[string]bool, len(b.Config.Exclude))
	for _, name := range b.Config.Exclude {
		excluded[name] = true
	}

	return filepath.WalkDir(b.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(b.Root, path)
		if err != nil {
			return err
		}
		if d.IsDir() {
			if rel != "." && (excluded[d.Name()] || strings.HasSuffix(d.Name(), ".egg-info")) {
				return filepath.SkipDir
			}
			return os.MkdirAll(filepath.Join(dest, rel), 0o755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return copyFile(path, filepath.Join(dest, rel))
	})
}

// copyFile copies src to dest, carrying over the mode and mtime.
func copyFile(src, dest string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	in, err := os.Open(src) //nolint:gosec // G304: paths come from directory walks under known roots
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode()) //nolint:gosec // G304: see above
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dest, info.ModTime(), info.ModTime())
}
