package debpkg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/farman20ali/kdist/internal/config"
	"github.com/farman20ali/kdist/internal/execx"
)

// minCompatLevel is the floor for the generated debhelper compat level.
// Ubuntu 20.04 ships debhelper 12, so that is the oldest level targeted.
const minCompatLevel = 12

var dhVersionPattern = regexp.MustCompile(`(?i)debhelper\s+version\s+(\d+)`)

// SkeletonGenerator renders the ephemeral debian/ descriptor tree that
// dpkg-buildpackage consumes. Every write targets a subdirectory of the
// working dir handed to Generate; the permanent project tree is never
// touched, and the skeleton is discarded with its temp dir.
type SkeletonGenerator struct {
	Runner execx.Runner
	Config config.Config

	// Now is injectable so changelog timestamps are deterministic in tests.
	Now func() time.Time
}

func NewSkeletonGenerator(runner execx.Runner, cfg config.Config) *SkeletonGenerator {
	return &SkeletonGenerator{Runner: runner, Config: cfg, Now: time.Now}
}

// CompatLevel probes the installed debhelper for its major version and
// floors the result at minCompatLevel. Absent or unparseable output falls
// back to the floor.
func (g *SkeletonGenerator) CompatLevel(ctx context.Context) int {
	if !g.Runner.LookPath("dh") {
		return minCompatLevel
	}
	res, err := g.Runner.Run(ctx, execx.Command{Name: "dh", Args: []string{"--version"}})
	if err != nil {
		return minCompatLevel
	}
	m := dhVersionPattern.FindStringSubmatch(res.Combined())
	if m == nil {
		return minCompatLevel
	}
	major, err := strconv.Atoi(m[1])
	if err != nil || major < minCompatLevel {
		return minCompatLevel
	}
	return major
}

// Generate writes the skeleton under workDir and returns the Debian version
// string used to label the build. An unresolved project version defaults to
// 0.0.0.
func (g *SkeletonGenerator) Generate(ctx context.Context, workDir, projectVersion string) (string, error) {
	debianDir := filepath.Join(workDir, "debian")
	if err := os.MkdirAll(filepath.Join(debianDir, "source"), 0o755); err != nil {
		return "", fmt.Errorf("creating debian dir: %w", err)
	}

	if projectVersion == "" {
		projectVersion = "0.0.0"
	}
	debVersion := projectVersion + "-1"
	compat := g.CompatLevel(ctx)

	files := map[string]string{
		"control":       g.renderControl(compat),
		"rules":         g.renderRules(),
		"changelog":     g.renderChangelog(debVersion),
		"compat":        strconv.Itoa(compat) + "\n",
		"source/format": "3.0 (native)\n",
	}
	for name, content := range files {
		path := filepath.Join(debianDir, name)
		mode := os.FileMode(0o644)
		if name == "rules" {
			mode = 0o755
		}
		if err := os.WriteFile(path, []byte(content), mode); err != nil {
			return "", fmt.Errorf("writing debian/%s: %w", name, err)
		}
	}

	return debVersion, nil
}

func (g *SkeletonGenerator) renderControl(compat int) string {
	cfg := g.Config

	// Build-Depends declares only the floor so the package builds on older
	// distributions even when the local debhelper is newer.
	buildDep := compat
	if buildDep > minCompatLevel {
		buildDep = minCompatLevel
	}

	depends := append([]string{"${misc:Depends}"}, cfg.RuntimeDeps...)

	var b strings.Builder
	fmt.Fprintf(&b, "Source: %s\n", cfg.Package)
	fmt.Fprintf(&b, "Section: %s\n", cfg.Section)
	b.WriteString("Priority: optional\n")
	fmt.Fprintf(&b, "Maintainer: %s\n", cfg.Maintainer)
	fmt.Fprintf(&b, "Build-Depends: debhelper (>= %d)\n", buildDep)
	b.WriteString("Standards-Version: 4.5.0\n")
	fmt.Fprintf(&b, "Homepage: %s\n", cfg.Homepage)
	b.WriteString("Rules-Requires-Root: no\n")
	b.WriteString("\n")
	fmt.Fprintf(&b, "Package: %s\n", cfg.Package)
	b.WriteString("Architecture: all\n")
	fmt.Fprintf(&b, "Depends: %s\n", strings.Join(depends, ", "))
	fmt.Fprintf(&b, "Description: %s\n", cfg.Description)
	for _, line := range strings.Split(strings.TrimRight(cfg.LongDesc, "\n"), "\n") {
		if line == "" {
			b.WriteString(" .\n")
			continue
		}
		b.WriteString(" " + line + "\n")
	}
	return b.String()
}

// renderRules emits a dh rules file where every lifecycle step except the
// install is an explicit no-op: the payload is a single script, so there is
// nothing to configure, build, or test at package time.
func (g *SkeletonGenerator) renderRules() string {
	noops := []string{
		"override_dh_update_autotools_config",
		"override_dh_autoreconf",
		"override_dh_auto_configure",
		"override_dh_auto_clean",
		"override_dh_auto_build",
		"override_dh_auto_test",
	}

	var b strings.Builder
	b.WriteString("#!/usr/bin/make -f\n\n")
	b.WriteString("%:\n\tdh $@\n")
	for _, target := range noops {
		fmt.Fprintf(&b, "\n%s:\n\ttrue\n", target)
	}
	fmt.Fprintf(&b, "\noverride_dh_auto_install:\n\tinstall -D -m 0755 %s debian/%s/%s\n",
		g.Config.EntryPoint, g.Config.Package, g.Config.InstallPath)
	return b.String()
}

func (g *SkeletonGenerator) renderChangelog(debVersion string) string {
	stamp := g.Now().UTC().Format("Mon, 02 Jan 2006 15:04:05 -0700")
	return fmt.Sprintf("%s (%s) unstable; urgency=medium\n\n  * Auto-generated Debian packaging.\n\n -- %s  %s\n",
		g.Config.Package, debVersion, g.Config.Maintainer, stamp)
}
