package release

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/farman20ali/kdist/internal/config"
	"github.com/farman20ali/kdist/internal/execx"
	"github.com/farman20ali/kdist/internal/ui"
)

// Publisher creates the remote GitHub release through the gh CLI. Every
// failure here is soft: the tag and the builds are already done, so the
// fallback is printed manual instructions, never a rollback.
type Publisher struct {
	Runner execx.Runner
	Config config.Config
	Root   string
	Out    *ui.Printer
}

// Assets gathers the built artifacts to attach: wheels and .deb files.
// Source tarballs are left out; GitHub attaches source archives itself.
func (p *Publisher) Assets() ([]string, error) {
	var assets []string

	wheels, err := filepath.Glob(filepath.Join(p.Root, p.Config.DistDir, "*.whl"))
	if err != nil {
		return nil, err
	}
	assets = append(assets, wheels...)

	debs, err := filepath.Glob(filepath.Join(p.Root, p.Config.DistDir, "deb", "*.deb"))
	if err != nil {
		return nil, err
	}
	assets = append(assets, debs...)

	return assets, nil
}

// manualURL is where the operator can create the release by hand.
func (p *Publisher) manualURL(tag string) string {
	return fmt.Sprintf("%s/releases/new?tag=%s", strings.TrimRight(p.Config.Homepage, "/"), tag)
}

// Publish creates the release for tag with the given notes. The returned bool
// reports whether the remote release actually exists afterwards.
func (p *Publisher) Publish(ctx context.Context, tag, version, notes string) (bool, error) {
	if !p.Runner.LookPath("gh") {
		p.Out.Warn("GitHub CLI (gh) not installed - skipping GitHub release")
		p.Out.Plain("Install: https://cli.github.com/")
		p.Out.Plain("Then run manually:")
		p.Out.Plain("  gh release create %s --title '%s %s' --notes '...' dist/*.whl dist/deb/*.deb", tag, p.Config.Package, version)
		return false, nil
	}

	assets, err := p.Assets()
	if err != nil {
		return false, err
	}
	if len(assets) == 0 {
		p.Out.Warn("no release assets found")
	}

	args := []string{"release", "create", tag, "--title", fmt.Sprintf("%s %s", p.Config.Package, version), "--notes", notes}
	args = append(args, assets...)

	p.Out.Step("create GitHub release " + tag)
	p.Out.Command(append([]string{"gh"}, args...)...)

	res, err := p.Runner.Run(ctx, execx.Command{Name: "gh", Args: args, Dir: p.Root})
	if err != nil || !res.Ok() {
		p.Out.Fail("GitHub release creation failed")
		p.Out.Plain("You can create it manually at:")
		p.Out.Plain("  %s", p.manualURL(tag))
		return false, nil
	}

	p.Out.Success("GitHub release " + tag + " created")
	return true, nil
}
