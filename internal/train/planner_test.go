package train

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/RevCBH/mergetrain/internal/git"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGraph is an in-memory Graph. Ranges are keyed "to..from".
type fakeGraph struct {
	branches   map[string]bool
	counts     map[string]int
	lists      map[string][]git.Commit
	files      map[string][]string
	fileErr    error
	mergeBases map[string]string
	current    string
	currentErr error
	calls      []string
}

func newFakeGraph(branches ...string) *fakeGraph {
	g := &fakeGraph{
		branches:   make(map[string]bool),
		counts:     make(map[string]int),
		lists:      make(map[string][]git.Commit),
		files:      make(map[string][]string),
		mergeBases: make(map[string]string),
		current:    "main",
	}
	for _, b := range branches {
		g.branches[b] = true
	}
	return g
}

func (g *fakeGraph) BranchExists(_ context.Context, name string) bool {
	g.calls = append(g.calls, "exists "+name)
	return g.branches[name]
}

func (g *fakeGraph) CommitCount(_ context.Context, from, to string) int {
	g.calls = append(g.calls, "count "+to+".."+from)
	return g.counts[to+".."+from]
}

func (g *fakeGraph) CommitList(_ context.Context, from, to string) []git.Commit {
	g.calls = append(g.calls, "list "+to+".."+from)
	if l, ok := g.lists[to+".."+from]; ok {
		return l
	}
	return []git.Commit{}
}

func (g *fakeGraph) ChangedFiles(_ context.Context, base, branch string) ([]string, error) {
	if g.fileErr != nil {
		return nil, g.fileErr
	}
	if f, ok := g.files[base+".."+branch]; ok {
		return f, nil
	}
	return []string{}, nil
}

func (g *fakeGraph) MergeBase(_ context.Context, a, b string) (string, error) {
	if mb, ok := g.mergeBases[a+" "+b]; ok {
		return mb, nil
	}
	return "", git.ErrNoMergeBase
}

func (g *fakeGraph) CurrentBranch(context.Context) (string, error) {
	return g.current, g.currentErr
}

func commits(msgs ...string) []git.Commit {
	out := make([]git.Commit, len(msgs))
	for i, m := range msgs {
		out[i] = git.Commit{Hash: "c0ffee" + string(rune('0'+i)), Message: m}
	}
	return out
}

func TestPlan_NoTargets(t *testing.T) {
	p := NewPlanner(newFakeGraph("release/1"))

	plan, err := p.Plan(context.Background(), "release/1", nil)
	require.NoError(t, err)
	assert.Equal(t, "release/1", plan.SourceBranch)
	assert.Empty(t, plan.Merges)
	assert.NotNil(t, plan.Merges)
	assert.NotNil(t, plan.TargetBranches)
	assert.Equal(t, "main", plan.CurrentBranch)
}

func TestPlan_ChainsHops(t *testing.T) {
	g := newFakeGraph("release/1", "release/2", "release/3")
	g.counts["release/2..release/1"] = 2
	g.lists["release/2..release/1"] = commits("fix a", "fix b")
	g.counts["release/3..release/2"] = 1
	g.lists["release/3..release/2"] = commits("merge")

	plan, err := NewPlanner(g).Plan(context.Background(), "release/1", []string{"release/2", "release/3"})
	require.NoError(t, err)
	require.Len(t, plan.Merges, 2)

	assert.Equal(t, "release/1", plan.Merges[0].FromBranch)
	assert.Equal(t, "release/2", plan.Merges[0].IntoBranch)
	assert.Equal(t, 2, plan.Merges[0].CommitCount)
	assert.Len(t, plan.Merges[0].Commits, 2)

	assert.Equal(t, "release/2", plan.Merges[1].FromBranch)
	assert.Equal(t, "release/3", plan.Merges[1].IntoBranch)
	assert.Equal(t, 1, plan.Merges[1].CommitCount)

	for i := 1; i < len(plan.Merges); i++ {
		assert.Equal(t, plan.Merges[i-1].IntoBranch, plan.Merges[i].FromBranch)
	}
	assert.Equal(t, []string{"release/2", "release/3"}, plan.TargetBranches)
}

func TestPlan_MissingSource(t *testing.T) {
	g := newFakeGraph("release/2")

	_, err := NewPlanner(g).Plan(context.Background(), "release/0", []string{"release/2", "nope"})
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, KindSource, ve.Kind)
	assert.Equal(t, []string{"release/0"}, ve.Branches)
	assert.Equal(t, "Source branch 'release/0' does not exist", err.Error())
	assert.Equal(t, []string{"exists release/0"}, g.calls)
}

func TestPlan_ReportsAllMissingTargets(t *testing.T) {
	g := newFakeGraph("release/1", "release/2")

	_, err := NewPlanner(g).Plan(context.Background(), "release/1", []string{"X", "release/2", "Y"})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Equal(t, "Target branches do not exist: X, Y", err.Error())

	for _, c := range g.calls {
		assert.NotContains(t, c, "count", "no range queries before validation passes")
	}
}

func TestPlan_DegradedHopContinues(t *testing.T) {
	g := newFakeGraph("a", "b", "c")
	g.counts["c..b"] = 4
	g.lists["c..b"] = commits("1", "2", "3", "4")

	plan, err := NewPlanner(g).Plan(context.Background(), "a", []string{"b", "c"})
	require.NoError(t, err)
	require.Len(t, plan.Merges, 2)
	assert.Equal(t, 0, plan.Merges[0].CommitCount)
	assert.Empty(t, plan.Merges[0].Commits)
	assert.Equal(t, 4, plan.Merges[1].CommitCount)
}

func TestPlan_StopsWhenContextDone(t *testing.T) {
	g := newFakeGraph("a", "b", "c")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	plan, err := NewPlanner(g).Plan(ctx, "a", []string{"b", "c"})
	assert.Nil(t, plan)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsValidation(err))

	ranges := 0
	for _, c := range g.calls {
		if strings.HasPrefix(c, "count ") {
			ranges++
		}
	}
	assert.Equal(t, 1, ranges, "walk stops after the first hop")
}

func TestPlan_CurrentBranchError(t *testing.T) {
	g := newFakeGraph("a", "b")
	g.currentErr = errors.New("git branch failed")

	_, err := NewPlanner(g).Plan(context.Background(), "a", []string{"b"})
	require.Error(t, err)
	assert.False(t, IsValidation(err))
}

func TestPlan_JSONShape(t *testing.T) {
	g := newFakeGraph("r1", "r2")
	g.counts["r2..r1"] = 1
	g.lists["r2..r1"] = []git.Commit{{Hash: "abc1234", Message: "fix"}}

	plan, err := NewPlanner(g).Plan(context.Background(), "r1", []string{"r2"})
	require.NoError(t, err)

	data, err := json.Marshal(plan)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"source_branch": "r1",
		"target_branches": ["r2"],
		"current_branch": "main",
		"merges": [{
			"into_branch": "r2",
			"from_branch": "r1",
			"commit_count": 1,
			"commits": [{"hash": "abc1234", "message": "fix"}]
		}]
	}`, string(data))
}

// scenarioGraph: release/1 and release/2 diverged at abc123; release/1 touched
// a.txt and c.txt, release/2 touched b.txt and c.txt.
func scenarioGraph() *fakeGraph {
	g := newFakeGraph("release/1", "release/2")
	g.mergeBases["release/2 release/1"] = "abc123def4567890"
	g.lists["abc123def4567890..release/1"] = commits("r1 c", "r1 a")
	g.lists["abc123def4567890..release/2"] = commits("r2 c", "r2 b", "r2 init")
	g.files["abc123def4567890..release/1"] = []string{"a.txt", "c.txt"}
	g.files["abc123def4567890..release/2"] = []string{"b.txt", "c.txt"}
	return g
}

func TestGatherContext_SummaryMode(t *testing.T) {
	mc, err := NewPlanner(scenarioGraph()).GatherContext(context.Background(), "release/2", "release/1", DefaultContextOptions())
	require.NoError(t, err)

	assert.Equal(t, "abc123de", mc.MergeBase)
	assert.Equal(t, "abc123def4567890", mc.MergeBaseFull)
	assert.Equal(t, []string{"c.txt"}, mc.PotentialConflicts)
	assert.Equal(t, Summary{
		SourceCommitCount: 2,
		TargetCommitCount: 3,
		SourceFilesCount:  2,
		TargetFilesCount:  2,
		ConflictCount:     1,
	}, mc.Summary)
	assert.Nil(t, mc.ContextDetails)
	assert.Contains(t, mc.Note, "include_details=true")

	data, err := json.Marshal(mc)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.NotContains(t, raw, "recent_source_commits")
	assert.NotContains(t, raw, "source_files_changed")
	assert.Contains(t, raw, "potential_conflicts")
}

func TestGatherContext_DetailsMatchSummary(t *testing.T) {
	opts := DefaultContextOptions()
	opts.IncludeDetails = true

	mc, err := NewPlanner(scenarioGraph()).GatherContext(context.Background(), "release/2", "release/1", opts)
	require.NoError(t, err)
	require.NotNil(t, mc.ContextDetails)

	assert.Equal(t, mc.PotentialConflicts, mc.SourceFilesChanged.Conflicting)
	assert.Equal(t, mc.PotentialConflicts, mc.TargetFilesChanged.Conflicting)
	assert.Equal(t, []string{"a.txt"}, mc.SourceFilesChanged.NonConflicting)
	assert.Equal(t, []string{"b.txt"}, mc.TargetFilesChanged.NonConflicting)
	assert.False(t, mc.SourceFilesChanged.Truncated)
	assert.Len(t, mc.RecentSourceCommits, 2)
	assert.Len(t, mc.RecentTargetCommits, 3)
	assert.Empty(t, mc.Note)

	data, err := json.Marshal(mc)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "recent_source_commits")
	assert.Contains(t, raw, "target_files_changed")
}

func TestGatherContext_FileCapTruncates(t *testing.T) {
	g := scenarioGraph()
	g.files["abc123def4567890..release/1"] = []string{"a.txt", "d.txt", "c.txt"}

	mc, err := NewPlanner(g).GatherContext(context.Background(), "release/2", "release/1",
		ContextOptions{IncludeDetails: true, MaxCommits: 10, MaxFiles: 1})
	require.NoError(t, err)

	assert.True(t, mc.SourceFilesChanged.Truncated)
	assert.Equal(t, []string{"a.txt"}, mc.SourceFilesChanged.NonConflicting)
	assert.False(t, mc.TargetFilesChanged.Truncated)
	assert.Equal(t, []string{"b.txt"}, mc.TargetFilesChanged.NonConflicting)
}

func TestGatherContext_CapIsInclusive(t *testing.T) {
	mc, err := NewPlanner(scenarioGraph()).GatherContext(context.Background(), "release/2", "release/1",
		ContextOptions{IncludeDetails: true, MaxCommits: 3, MaxFiles: 1})
	require.NoError(t, err)

	assert.False(t, mc.SourceFilesChanged.Truncated)
	assert.False(t, mc.TargetFilesChanged.Truncated)
	assert.Empty(t, mc.Note)
}

func TestGatherContext_CommitCapNote(t *testing.T) {
	mc, err := NewPlanner(scenarioGraph()).GatherContext(context.Background(), "release/2", "release/1",
		ContextOptions{IncludeDetails: true, MaxCommits: 2, MaxFiles: 20})
	require.NoError(t, err)

	assert.Len(t, mc.RecentSourceCommits, 2)
	assert.Len(t, mc.RecentTargetCommits, 2)
	assert.Equal(t, "r2 c", mc.RecentTargetCommits[0].Message)
	assert.Equal(t,
		"Showing 2 of 2 source commits and 2 of 3 target commits. Use max_commits parameter to see more.",
		mc.Note)
}

func TestGatherContext_ZeroCaps(t *testing.T) {
	mc, err := NewPlanner(scenarioGraph()).GatherContext(context.Background(), "release/2", "release/1",
		ContextOptions{IncludeDetails: true})
	require.NoError(t, err)

	assert.Empty(t, mc.RecentSourceCommits)
	assert.NotNil(t, mc.RecentSourceCommits)
	assert.Empty(t, mc.SourceFilesChanged.NonConflicting)
	assert.True(t, mc.SourceFilesChanged.Truncated)
	assert.Equal(t, []string{"c.txt"}, mc.SourceFilesChanged.Conflicting)
}

func TestGatherContext_NegativeLimits(t *testing.T) {
	g := scenarioGraph()
	p := NewPlanner(g)

	_, err := p.GatherContext(context.Background(), "release/2", "release/1", ContextOptions{MaxCommits: -1})
	assert.ErrorIs(t, err, ErrNegativeLimit)

	_, err = p.GatherContext(context.Background(), "release/2", "release/1", ContextOptions{MaxFiles: -5})
	assert.ErrorIs(t, err, ErrNegativeLimit)
	assert.Empty(t, g.calls)
}

func TestGatherContext_MissingBranch(t *testing.T) {
	g := scenarioGraph()

	_, err := NewPlanner(g).GatherContext(context.Background(), "release/9", "release/1", DefaultContextOptions())
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, KindPair, ve.Kind)
	assert.Equal(t, []string{"release/9", "release/1"}, ve.Branches)
	assert.Equal(t, "One or both branches do not exist", err.Error())
}

func TestGatherContext_NoMergeBase(t *testing.T) {
	g := newFakeGraph("main", "orphan")

	_, err := NewPlanner(g).GatherContext(context.Background(), "main", "orphan", DefaultContextOptions())
	assert.ErrorIs(t, err, git.ErrNoMergeBase)
	assert.False(t, IsValidation(err))
}

func TestGatherContext_ChangedFilesError(t *testing.T) {
	g := scenarioGraph()
	g.fileErr = errors.New("diff failed")

	_, err := NewPlanner(g).GatherContext(context.Background(), "release/2", "release/1", DefaultContextOptions())
	assert.EqualError(t, err, "diff failed")
}

func TestIntersect_PreservesSourceOrder(t *testing.T) {
	got := intersect([]string{"z", "a", "m", "q"}, []string{"q", "m", "z"})
	assert.Equal(t, []string{"z", "m", "q"}, got)
	assert.Equal(t, []string{}, intersect(nil, []string{"a"}))
}
