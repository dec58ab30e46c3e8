package release

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter is the interaction capability injected into the orchestrator.
// Dry-run and scripted invocations use NonInteractive so the pipeline never
// blocks on a terminal.
type Prompter interface {
	// Confirm asks a yes/no question; the default answer is no.
	Confirm(prompt string) (bool, error)

	// ReadNotes offers the templated notes and lets the operator replace
	// them with free text.
	ReadNotes(defaultNotes string) (string, error)
}

// TTYPrompter reads answers line by line from in, echoing prompts to out.
type TTYPrompter struct {
	in  *bufio.Reader
	Out io.Writer
}

func NewTTYPrompter(in io.Reader, out io.Writer) *TTYPrompter {
	return &TTYPrompter{in: bufio.NewReader(in), Out: out}
}

func (p *TTYPrompter) Confirm(prompt string) (bool, error) {
	fmt.Fprintf(p.Out, "%s (y/N): ", prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (p *TTYPrompter) ReadNotes(defaultNotes string) (string, error) {
	fmt.Fprintln(p.Out, "Default release notes:")
	fmt.Fprintln(p.Out, strings.Repeat("-", 60))
	fmt.Fprintln(p.Out, defaultNotes)
	fmt.Fprintln(p.Out, strings.Repeat("-", 60))

	useDefault, err := p.Confirm("Use default release notes?")
	if err != nil {
		return "", err
	}
	if useDefault {
		return defaultNotes, nil
	}

	fmt.Fprintln(p.Out, "Enter custom release notes (Ctrl-D when done):")
	data, err := io.ReadAll(p.in)
	if err != nil {
		return "", err
	}
	notes := strings.TrimRight(string(data), "\n")
	if notes == "" {
		return defaultNotes, nil
	}
	return notes, nil
}

// NonInteractive answers every confirmation with a fixed value and always
// keeps the default notes.
type NonInteractive struct {
	Answer bool
}

func (p *NonInteractive) Confirm(string) (bool, error) { return p.Answer, nil }

func (p *NonInteractive) ReadNotes(defaultNotes string) (string, error) {
	return defaultNotes, nil
}
