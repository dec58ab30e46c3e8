// Package ui renders the tool's terminal output: section banners, step
// announcements, and per-step status lines.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	stepStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	boldStyle   = lipgloss.NewStyle().Bold(true)
)

const rule = "============================================================"

// Printer writes styled status output to a single destination. Commands pass
// their cobra OutOrStdout so tests can capture everything the user sees.
type Printer struct {
	Out io.Writer
}

func New(out io.Writer) *Printer {
	return &Printer{Out: out}
}

// Header prints a section banner.
func (p *Printer) Header(msg string) {
	fmt.Fprintln(p.Out)
	fmt.Fprintln(p.Out, headerStyle.Render(rule))
	fmt.Fprintln(p.Out, headerStyle.Render(msg))
	fmt.Fprintln(p.Out, headerStyle.Render(rule))
}

// Step announces an action about to run.
func (p *Printer) Step(msg string) {
	fmt.Fprintln(p.Out)
	fmt.Fprintln(p.Out, stepStyle.Render("-> "+msg))
}

// Command echoes the argv of a subprocess before it runs.
func (p *Printer) Command(argv ...string) {
	fmt.Fprintln(p.Out, "$ "+strings.Join(argv, " "))
}

func (p *Printer) Success(msg string) {
	fmt.Fprintln(p.Out, okStyle.Render("OK "+msg))
}

func (p *Printer) Warn(msg string) {
	fmt.Fprintln(p.Out, warnStyle.Render("WARN "+msg))
}

func (p *Printer) Fail(msg string) {
	fmt.Fprintln(p.Out, failStyle.Render("FAIL "+msg))
}

// Field prints an aligned "label: value" line with a bold label.
func (p *Printer) Field(label, value string) {
	fmt.Fprintf(p.Out, "%s %s\n", boldStyle.Render(label+":"), value)
}

// Plain prints unstyled text.
func (p *Printer) Plain(format string, args ...any) {
	fmt.Fprintf(p.Out, format+"\n", args...)
}
