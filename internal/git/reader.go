package git

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/RevCBH/mergetrain/internal/logger"
)

// Reader answers read-only questions about the branch graph of one repository.
//
// BranchExists, CommitCount and CommitList never fail: an unresolvable name is
// reported as missing and a failed range query degrades to zero or an empty
// list. ChangedFiles, MergeBase and CurrentBranch return the underlying error.
type Reader struct {
	dir    string
	runner Runner
	log    *slog.Logger
}

// NewReader binds a Reader to the repository containing dir.
// It fails with ErrNotGitRepo when git cannot be run there at all.
func NewReader(ctx context.Context, dir string, runner Runner) (*Reader, error) {
	if dir == "" {
		return nil, ErrEmptyPath
	}
	if runner == nil {
		runner = DefaultRunner()
	}

	toplevel, err := runner.Exec(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotGitRepo, err)
	}

	return &Reader{
		dir:    strings.TrimSpace(toplevel),
		runner: runner,
		log:    logger.With("component", "git"),
	}, nil
}

// Path returns the repository top level.
func (r *Reader) Path() string {
	return r.dir
}

func (r *Reader) exec(ctx context.Context, args ...string) (string, error) {
	return r.runner.Exec(ctx, r.dir, args...)
}

// BranchExists reports whether name resolves to a commit. Missing, ambiguous
// and malformed names all report false.
func (r *Reader) BranchExists(ctx context.Context, name string) bool {
	if !isRefName(name) {
		return false
	}
	_, err := r.exec(ctx, "rev-parse", "--verify", "--quiet", name+"^{commit}")
	return err == nil
}

// isRefName rejects input that git would parse as an option or a range.
func isRefName(name string) bool {
	if name == "" || strings.HasPrefix(name, "-") || strings.Contains(name, "..") {
		return false
	}
	return !strings.ContainsAny(name, " \t\r\n")
}

// CommitCount returns the number of commits reachable from from and not from to.
// Any failure yields 0.
func (r *Reader) CommitCount(ctx context.Context, from, to string) int {
	out, err := r.exec(ctx, "rev-list", "--count", to+".."+from)
	if err != nil {
		r.degraded(ctx, "commit count degraded", from, to, err)
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil || n < 0 {
		r.log.Debug("commit count unparsable", "from", from, "to", to, "output", out)
		return 0
	}
	return n
}

// CommitList returns the commits unique to from relative to to, newest first.
// Any failure yields an empty list.
func (r *Reader) CommitList(ctx context.Context, from, to string) []Commit {
	out, err := r.exec(ctx, "log", "--no-decorate", "--format=%h %s", to+".."+from)
	if err != nil {
		r.degraded(ctx, "commit list degraded", from, to, err)
		return []Commit{}
	}
	return parseCommitList(out)
}

// degraded logs a fail-soft read. Failures caused by the caller's context
// are logged louder since the zero value returned is then meaningless.
func (r *Reader) degraded(ctx context.Context, msg, from, to string, err error) {
	if ctx.Err() != nil {
		r.log.Warn(msg, "from", from, "to", to, "error", err, "cause", ctx.Err())
		return
	}
	r.log.Debug(msg, "from", from, "to", to, "error", err)
}

// parseCommitList splits "<hash> <subject>" lines.
func parseCommitList(out string) []Commit {
	commits := []Commit{}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		hash, message, _ := strings.Cut(line, " ")
		commits = append(commits, Commit{Hash: hash, Message: message})
	}
	return commits
}

// ChangedFiles returns the paths touched between base and branch,
// deduplicated in first-seen order. Paths are verbatim: NUL-separated output
// keeps git from quoting non-ASCII names.
func (r *Reader) ChangedFiles(ctx context.Context, base, branch string) ([]string, error) {
	out, err := r.exec(ctx, "diff", "--name-only", "-z", base+".."+branch)
	if err != nil {
		return nil, fmt.Errorf("list changed files %s..%s: %w", base, branch, err)
	}
	return parseNameList(out), nil
}

func parseNameList(out string) []string {
	files := []string{}
	seen := make(map[string]bool)
	for _, name := range strings.Split(out, "\x00") {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		files = append(files, name)
	}
	return files
}

// MergeBase returns the full hash of the best common ancestor of a and b.
func (r *Reader) MergeBase(ctx context.Context, a, b string) (string, error) {
	out, err := r.exec(ctx, "merge-base", a, b)
	if err != nil {
		return "", fmt.Errorf("%w between %s and %s: %w", ErrNoMergeBase, a, b, err)
	}
	base := strings.TrimSpace(out)
	if base == "" {
		return "", fmt.Errorf("%w between %s and %s", ErrNoMergeBase, a, b)
	}
	return base, nil
}

// CurrentBranch returns the checked out branch, or "" on a detached HEAD.
func (r *Reader) CurrentBranch(ctx context.Context) (string, error) {
	out, err := r.exec(ctx, "branch", "--show-current")
	if err != nil {
		return "", fmt.Errorf("failed to get current branch: %w", err)
	}
	return strings.TrimSpace(out), nil
}
