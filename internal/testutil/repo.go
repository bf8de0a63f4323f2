package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// Repo is a throwaway git repository rooted in a test temp dir.
type Repo struct {
	t   testing.TB
	Dir string
}

// NewRepo initialises an empty repository whose unborn branch is "main".
// The test is skipped when no git binary is available.
func NewRepo(t testing.TB) *Repo {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	IsolateGit(t)

	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("resolve temp dir: %v", err)
	}
	r := &Repo{t: t, Dir: dir}
	r.Git("init", "--quiet")
	r.Git("symbolic-ref", "HEAD", "refs/heads/main")
	r.Git("config", "user.name", "Test User")
	r.Git("config", "user.email", "test@example.com")
	r.Git("config", "commit.gpgsign", "false")
	return r
}

// Git runs a git command in the repository and returns trimmed stdout.
func (r *Repo) Git(args ...string) string {
	r.t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		r.t.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return strings.TrimSpace(string(out))
}

// WriteFile writes content to a repository-relative path.
func (r *Repo) WriteFile(path, content string) {
	r.t.Helper()
	full := filepath.Join(r.Dir, path)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		r.t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		r.t.Fatalf("write %s: %v", path, err)
	}
}

// CommitFile writes, stages and commits a single file, returning the new HEAD hash.
func (r *Repo) CommitFile(path, content, message string) string {
	r.t.Helper()
	r.WriteFile(path, content)
	r.Git("add", path)
	r.Git("commit", "--quiet", "-m", message)
	return r.Git("rev-parse", "HEAD")
}

// CommitAll stages every change in the worktree and commits it, returning the new HEAD hash.
func (r *Repo) CommitAll(message string) string {
	r.t.Helper()
	r.Git("add", "-A")
	r.Git("commit", "--quiet", "-m", message)
	return r.Git("rev-parse", "HEAD")
}

// Branch creates branch at the current HEAD and checks it out.
func (r *Repo) Branch(name string) {
	r.t.Helper()
	r.Git("checkout", "--quiet", "-b", name)
}

// Checkout switches to an existing branch.
func (r *Repo) Checkout(name string) {
	r.t.Helper()
	r.Git("checkout", "--quiet", name)
}

// DivergedReleases builds a repository where release/1 and release/2 fork
// from main. release/1 alone edits a.txt, release/2 alone edits b.txt and
// both edit c.txt, two commits per branch. main is checked out on return,
// along with the hash of the fork point.
func DivergedReleases(t testing.TB) (*Repo, string) {
	t.Helper()
	repo := NewRepo(t)
	repo.WriteFile("a.txt", "a\n")
	repo.WriteFile("b.txt", "b\n")
	repo.WriteFile("c.txt", "c\n")
	base := repo.CommitAll("initial")

	repo.Branch("release/1")
	repo.CommitFile("a.txt", "a fixed\n", "fix a")
	repo.CommitFile("c.txt", "c fixed on 1\n", "fix c on release/1")

	repo.Checkout("main")
	repo.Branch("release/2")
	repo.CommitFile("b.txt", "b changed\n", "change b")
	repo.CommitFile("c.txt", "c changed on 2\n", "change c on release/2")

	repo.Checkout("main")
	return repo, base
}
