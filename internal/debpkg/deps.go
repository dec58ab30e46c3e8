package debpkg

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/farman20ali/kdist/internal/execx"
	"github.com/farman20ali/kdist/internal/ui"
)

var (
	unmetPattern   = regexp.MustCompile(`(?im)unmet build dependencies:\s*(.*)$`)
	pkgNamePattern = regexp.MustCompile(`(?i)^[a-z0-9+.-]+`)
)

// CheckBuildDeps runs dpkg-checkbuilddeps against a directory that already
// contains a generated debian/control and returns the missing package names.
// An absent helper yields nil: nothing to report, which callers must not read
// as "all dependencies satisfied".
func CheckBuildDeps(ctx context.Context, runner execx.Runner, dir string) ([]string, error) {
	if !runner.LookPath("dpkg-checkbuilddeps") {
		return nil, nil
	}
	res, err := runner.Run(ctx, execx.Command{Name: "dpkg-checkbuilddeps", Dir: dir})
	if err != nil {
		return nil, fmt.Errorf("running dpkg-checkbuilddeps: %w", err)
	}
	if res.Ok() {
		return nil, nil
	}
	return parseUnmetBuildDeps(res.Combined()), nil
}

// parseUnmetBuildDeps extracts package names from diagnostic text like
//
//	dpkg-checkbuilddeps: error: Unmet build dependencies: debhelper-compat (= 13), foo
//
// Version constraints are stripped; tokens that do not look like package
// names are dropped.
func parseUnmetBuildDeps(output string) []string {
	m := unmetPattern.FindStringSubmatch(output)
	if m == nil {
		return nil
	}
	var pkgs []string
	for _, part := range strings.Split(m[1], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if name := pkgNamePattern.FindString(part); name != "" {
			pkgs = append(pkgs, name)
		}
	}
	return pkgs
}

// buildTools are required on the host before a .deb build can be attempted.
var buildTools = []string{"dpkg-buildpackage", "dpkg", "fakeroot", "dpkg-checkbuilddeps"}

// MissingBuildTools returns the required tools not found on PATH.
func MissingBuildTools(runner execx.Runner) []string {
	var missing []string
	for _, tool := range buildTools {
		if !runner.LookPath(tool) {
			missing = append(missing, tool)
		}
	}
	return missing
}

// aptGet runs an apt-get subcommand through sudo, echoing the argv first.
func aptGet(ctx context.Context, runner execx.Runner, out *ui.Printer, desc string, args ...string) error {
	argv := append([]string{"apt-get"}, args...)
	out.Step(desc)
	out.Command(append([]string{"sudo"}, argv...)...)
	res, err := runner.Run(ctx, execx.Command{Name: "sudo", Args: argv})
	if err != nil {
		return fmt.Errorf("%s: %w", desc, err)
	}
	if !res.Ok() {
		return fmt.Errorf("%s: exit %d: %s", desc, res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	out.Success(desc)
	return nil
}

// InstallBuildTools installs the standard Debian build toolchain.
func InstallBuildTools(ctx context.Context, runner execx.Runner, out *ui.Printer) error {
	if err := aptGet(ctx, runner, out, "apt-get update", "update"); err != nil {
		return err
	}
	return aptGet(ctx, runner, out, "install build dependencies",
		"install", "-y", "build-essential", "dpkg-dev", "devscripts", "debhelper", "dh-python", "python3-all")
}

// InstallPackages installs the named packages, typically the output of
// CheckBuildDeps.
func InstallPackages(ctx context.Context, runner execx.Runner, out *ui.Printer, pkgs []string) error {
	if len(pkgs) == 0 {
		return nil
	}
	if err := aptGet(ctx, runner, out, "apt-get update", "update"); err != nil {
		return err
	}
	args := append([]string{"install", "-y"}, pkgs...)
	return aptGet(ctx, runner, out, "install: "+strings.Join(pkgs, " "), args...)
}
