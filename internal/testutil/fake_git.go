package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Invocation is one call seen by FakeGit.
type Invocation struct {
	Dir  string
	Args []string
}

// Line is the space-joined argument list, the key replies are scripted under.
func (i Invocation) Line() string {
	return strings.Join(i.Args, " ")
}

type reply struct {
	out string
	err error
}

// FakeGit stands in for the git binary. Replies scripted for an argument
// line are handed out in order and the last one keeps answering, so one
// Reply covers any number of identical calls. Unscripted lines fail.
type FakeGit struct {
	mu      sync.Mutex
	scripts map[string][]reply
	seen    []Invocation
}

func NewFakeGit() *FakeGit {
	return &FakeGit{scripts: make(map[string][]reply)}
}

// Reply scripts out as the next answer to line.
func (f *FakeGit) Reply(line, out string) *FakeGit {
	return f.script(line, reply{out: out})
}

// Fail scripts err as the next answer to line.
func (f *FakeGit) Fail(line string, err error) *FakeGit {
	return f.script(line, reply{err: err})
}

func (f *FakeGit) script(line string, r reply) *FakeGit {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scripts[line] = append(f.scripts[line], r)
	return f
}

func (f *FakeGit) Exec(_ context.Context, dir string, args ...string) (string, error) {
	inv := Invocation{Dir: dir, Args: append([]string(nil), args...)}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, inv)

	script := f.scripts[inv.Line()]
	if len(script) == 0 {
		return "", fmt.Errorf("fake git: nothing scripted for %q", inv.Line())
	}
	if len(script) > 1 {
		f.scripts[inv.Line()] = script[1:]
	}
	return script[0].out, script[0].err
}

// Invocations returns every call so far, oldest first.
func (f *FakeGit) Invocations() []Invocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Invocation(nil), f.seen...)
}

// Lines is Invocations reduced to argument lines.
func (f *FakeGit) Lines() []string {
	lines := []string{}
	for _, inv := range f.Invocations() {
		lines = append(lines, inv.Line())
	}
	return lines
}

// Count reports how many times line was run.
func (f *FakeGit) Count(line string) int {
	n := 0
	for _, l := range f.Lines() {
		if l == line {
			n++
		}
	}
	return n
}
