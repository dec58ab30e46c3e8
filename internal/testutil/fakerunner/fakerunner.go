// Package fakerunner provides an in-memory execx.Runner for tests. Commands
// are stubbed by their argv; anything not stubbed succeeds with empty output.
package fakerunner

import (
	"context"
	"strings"
	"sync"

	"github.com/farman20ali/kdist/internal/execx"
)

// Call records one invocation seen by the fake.
type Call struct {
	Name  string
	Args  []string
	Dir   string
	Stdin string
}

// Runner implements execx.Runner against canned results.
type Runner struct {
	mu      sync.Mutex
	results map[string]execx.Result
	errs    map[string]error
	missing map[string]bool

	// Hook, when set, observes every call before the canned result is
	// returned. Tests use it to emulate side effects like a builder writing
	// artifact files next to its working directory.
	Hook func(Call)

	Calls []Call
}

func New() *Runner {
	return &Runner{
		results: map[string]execx.Result{},
		errs:    map[string]error{},
		missing: map[string]bool{},
	}
}

func key(name string, args []string) string {
	return strings.Join(append([]string{name}, args...), " ")
}

// Stub registers the result returned for an exact argv.
func (r *Runner) Stub(name string, args []string, res execx.Result) {
	r.results[key(name, args)] = res
}

// StubPrefix registers a result for any argv that begins with the given
// words, for commands whose tails vary (temp dirs, timestamps).
func (r *Runner) StubPrefix(prefix string, res execx.Result) {
	r.results["prefix:"+prefix] = res
}

// StubErr makes an exact argv fail at the invocation level (tool missing,
// timeout), as opposed to exiting non-zero.
func (r *Runner) StubErr(name string, args []string, err error) {
	r.errs[key(name, args)] = err
}

// MarkMissing makes LookPath report the tool as absent.
func (r *Runner) MarkMissing(name string) {
	r.missing[name] = true
}

func (r *Runner) Run(_ context.Context, c execx.Command) (execx.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	call := Call{Name: c.Name, Args: c.Args, Dir: c.Dir, Stdin: c.Stdin}
	r.Calls = append(r.Calls, call)
	if r.Hook != nil {
		r.Hook(call)
	}

	k := key(c.Name, c.Args)
	if err, ok := r.errs[k]; ok {
		return execx.Result{}, err
	}
	if res, ok := r.results[k]; ok {
		return res, nil
	}
	for pk, res := range r.results {
		if strings.HasPrefix(pk, "prefix:") && strings.HasPrefix(k, strings.TrimPrefix(pk, "prefix:")) {
			return res, nil
		}
	}
	return execx.Result{}, nil
}

func (r *Runner) LookPath(name string) bool {
	return !r.missing[name]
}

// CalledWith reports whether any recorded call begins with the given words.
func (r *Runner) CalledWith(words ...string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.Calls {
		argv := append([]string{c.Name}, c.Args...)
		if len(argv) < len(words) {
			continue
		}
		match := true
		for i, w := range words {
			if argv[i] != w {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
