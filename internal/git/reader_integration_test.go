package git

import (
	"context"
	"testing"

	"github.com/RevCBH/mergetrain/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// releaseRepo builds main -> release/1 -> release/2 where release/1 carries two
// fixes that release/2 does not have yet.
func releaseRepo(t *testing.T) (*testutil.Repo, string) {
	t.Helper()
	repo := testutil.NewRepo(t)
	base := repo.CommitFile("README.md", "hello\n", "initial")
	repo.Branch("release/1")
	repo.Branch("release/2")
	repo.CommitFile("b.txt", "two\n", "release/2 only")
	repo.Checkout("release/1")
	repo.CommitFile("a.txt", "one\n", "fix: first")
	repo.CommitFile("a.txt", "one more\n", "fix: second")
	repo.Checkout("main")
	return repo, base
}

func TestReader_AgainstRealRepository(t *testing.T) {
	repo, base := releaseRepo(t)
	ctx := context.Background()

	r, err := NewReader(ctx, repo.Dir, NewOSRunner("git"))
	require.NoError(t, err)
	assert.Equal(t, repo.Dir, r.Path())

	assert.True(t, r.BranchExists(ctx, "release/1"))
	assert.True(t, r.BranchExists(ctx, "main"))
	assert.False(t, r.BranchExists(ctx, "release/3"))

	assert.Equal(t, 2, r.CommitCount(ctx, "release/1", "release/2"))
	commits := r.CommitList(ctx, "release/1", "release/2")
	require.Len(t, commits, 2)
	assert.Equal(t, "fix: second", commits[0].Message)
	assert.Equal(t, "fix: first", commits[1].Message)
	assert.GreaterOrEqual(t, len(commits[0].Hash), 7)

	mb, err := r.MergeBase(ctx, "release/1", "release/2")
	require.NoError(t, err)
	assert.Equal(t, base, mb)

	files, err := r.ChangedFiles(ctx, mb, "release/1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, files)

	current, err := r.CurrentBranch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "main", current)
}

func TestReader_ChangedFilesNonASCII(t *testing.T) {
	repo := testutil.NewRepo(t)
	base := repo.CommitFile("README.md", "hello\n", "initial")
	repo.Branch("release/1")
	repo.Checkout("release/1")
	repo.CommitFile("café.txt", "au lait\n", "fix: accents")
	repo.CommitFile("docs/日本語.md", "text\n", "fix: docs")
	repo.CommitFile("has space.txt", "x\n", "fix: spaces")

	ctx := context.Background()
	r, err := NewReader(ctx, repo.Dir, NewOSRunner("git"))
	require.NoError(t, err)

	files, err := r.ChangedFiles(ctx, base, "release/1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"café.txt", "docs/日本語.md", "has space.txt"}, files)
}

func TestReader_CountMatchesListLength(t *testing.T) {
	repo, _ := releaseRepo(t)
	ctx := context.Background()

	r, err := NewReader(ctx, repo.Dir, nil)
	require.NoError(t, err)

	pairs := [][2]string{
		{"release/1", "release/2"},
		{"release/2", "release/1"},
		{"main", "release/1"},
		{"release/1", "main"},
		{"release/1", "release/1"},
	}
	for _, p := range pairs {
		count := r.CommitCount(ctx, p[0], p[1])
		assert.GreaterOrEqual(t, count, 0)
		assert.Equal(t, len(r.CommitList(ctx, p[0], p[1])), count, "%s..%s", p[1], p[0])
	}
}

func TestReader_UnrelatedHistoryDegrades(t *testing.T) {
	repo, _ := releaseRepo(t)
	repo.Git("checkout", "--quiet", "--orphan", "orphan")
	repo.Git("rm", "-rf", "--quiet", ".")
	repo.CommitFile("other.txt", "x\n", "unrelated root")
	ctx := context.Background()

	r, err := NewReader(ctx, repo.Dir, nil)
	require.NoError(t, err)

	_, err = r.MergeBase(ctx, "orphan", "main")
	assert.ErrorIs(t, err, ErrNoMergeBase)

	assert.Equal(t, 0, r.CommitCount(ctx, "no-such", "main"))
	assert.Empty(t, r.CommitList(ctx, "no-such", "main"))
}

func TestReader_DetachedHead(t *testing.T) {
	repo, base := releaseRepo(t)
	repo.Git("checkout", "--quiet", "--detach", base)
	ctx := context.Background()

	r, err := NewReader(ctx, repo.Dir, nil)
	require.NoError(t, err)

	current, err := r.CurrentBranch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", current)
}
