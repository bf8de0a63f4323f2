// Package train plans merge-forward trains across release branches and
// reports the divergence between any two of them. It only reads the
// repository; nothing here merges, commits or pushes.
package train

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/RevCBH/mergetrain/internal/git"
	"github.com/RevCBH/mergetrain/internal/logger"
)

// Graph is the read-only view of the repository the planner needs.
// *git.Reader implements it.
type Graph interface {
	BranchExists(ctx context.Context, name string) bool
	CommitCount(ctx context.Context, from, to string) int
	CommitList(ctx context.Context, from, to string) []git.Commit
	ChangedFiles(ctx context.Context, base, branch string) ([]string, error)
	MergeBase(ctx context.Context, a, b string) (string, error)
	CurrentBranch(ctx context.Context) (string, error)
}

// Planner builds merge plans and merge contexts. It keeps no state between
// calls, so identical calls against an unchanged repository return identical
// results.
type Planner struct {
	graph Graph
	log   *slog.Logger
}

// NewPlanner creates a planner over graph.
func NewPlanner(graph Graph) *Planner {
	return &Planner{
		graph: graph,
		log:   logger.With("component", "train"),
	}
}

const (
	summaryNote  = "Summary mode: showing counts and potential conflicts only. Set include_details=true to see commit and file lists."
	truncateNote = "Showing %d of %d source commits and %d of %d target commits. Use max_commits parameter to see more."
	mergeBaseLen = 8
)

// Plan walks targets in order, treating each target as the source of the next
// hop. A source that does not resolve fails with KindSource; otherwise every
// missing target is reported together with KindTargets. Range queries that
// fail produce an empty hop and the walk continues, unless ctx is done.
func (p *Planner) Plan(ctx context.Context, source string, targets []string) (*MergePlan, error) {
	if !p.graph.BranchExists(ctx, source) {
		return nil, &ValidationError{Kind: KindSource, Branches: []string{source}}
	}

	var missing []string
	for _, target := range targets {
		if !p.graph.BranchExists(ctx, target) {
			missing = append(missing, target)
		}
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Kind: KindTargets, Branches: missing}
	}

	current, err := p.graph.CurrentBranch(ctx)
	if err != nil {
		return nil, err
	}

	plan := &MergePlan{
		SourceBranch:   source,
		TargetBranches: append([]string{}, targets...),
		CurrentBranch:  current,
		Merges:         make([]MergeHop, 0, len(targets)),
	}

	from := source
	for _, into := range targets {
		hop := MergeHop{
			IntoBranch:  into,
			FromBranch:  from,
			CommitCount: p.graph.CommitCount(ctx, from, into),
			Commits:     p.graph.CommitList(ctx, from, into),
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p.log.Debug("planned hop", "from", from, "into", into, "commits", hop.CommitCount)
		plan.Merges = append(plan.Merges, hop)
		from = into
	}

	return plan, nil
}

// GatherContext compares mergeBranch (the side being merged in) with
// intoBranch since their merge base.
func (p *Planner) GatherContext(ctx context.Context, intoBranch, mergeBranch string, opts ContextOptions) (*MergeContext, error) {
	if opts.MaxCommits < 0 {
		return nil, fmt.Errorf("max_commits %w: %d", ErrNegativeLimit, opts.MaxCommits)
	}
	if opts.MaxFiles < 0 {
		return nil, fmt.Errorf("max_files %w: %d", ErrNegativeLimit, opts.MaxFiles)
	}

	if !p.graph.BranchExists(ctx, intoBranch) || !p.graph.BranchExists(ctx, mergeBranch) {
		return nil, &ValidationError{Kind: KindPair, Branches: []string{intoBranch, mergeBranch}}
	}

	base, err := p.graph.MergeBase(ctx, intoBranch, mergeBranch)
	if err != nil {
		return nil, err
	}

	sourceCommits := p.graph.CommitList(ctx, mergeBranch, base)
	targetCommits := p.graph.CommitList(ctx, intoBranch, base)

	sourceFiles, err := p.graph.ChangedFiles(ctx, base, mergeBranch)
	if err != nil {
		return nil, err
	}
	targetFiles, err := p.graph.ChangedFiles(ctx, base, intoBranch)
	if err != nil {
		return nil, err
	}

	conflicts := intersect(sourceFiles, targetFiles)

	current, err := p.graph.CurrentBranch(ctx)
	if err != nil {
		return nil, err
	}

	mc := &MergeContext{
		IntoBranch:    intoBranch,
		MergeBranch:   mergeBranch,
		CurrentBranch: current,
		MergeBase:     abbrev(base, mergeBaseLen),
		MergeBaseFull: base,
		Summary: Summary{
			SourceCommitCount: len(sourceCommits),
			TargetCommitCount: len(targetCommits),
			SourceFilesCount:  len(sourceFiles),
			TargetFilesCount:  len(targetFiles),
			ConflictCount:     len(conflicts),
		},
		PotentialConflicts: conflicts,
	}
	p.log.Debug("gathered context", "into", intoBranch, "merge", mergeBranch,
		"base", mc.MergeBase, "conflicts", len(conflicts))

	if !opts.IncludeDetails {
		mc.Note = summaryNote
		return mc, nil
	}

	recentSource := head(sourceCommits, opts.MaxCommits)
	recentTarget := head(targetCommits, opts.MaxCommits)
	mc.ContextDetails = &ContextDetails{
		RecentSourceCommits: recentSource,
		RecentTargetCommits: recentTarget,
		SourceFilesChanged:  splitFiles(sourceFiles, conflicts, opts.MaxFiles),
		TargetFilesChanged:  splitFiles(targetFiles, conflicts, opts.MaxFiles),
	}

	if len(sourceCommits) > opts.MaxCommits || len(targetCommits) > opts.MaxCommits {
		mc.Note = fmt.Sprintf(truncateNote,
			len(recentSource), len(sourceCommits), len(recentTarget), len(targetCommits))
	}

	return mc, nil
}

// intersect returns the members of a that also appear in b, in a's order.
func intersect(a, b []string) []string {
	inB := make(map[string]bool, len(b))
	for _, f := range b {
		inB[f] = true
	}
	out := []string{}
	for _, f := range a {
		if inB[f] {
			out = append(out, f)
		}
	}
	return out
}

func splitFiles(files, conflicts []string, maxFiles int) FilesChanged {
	conflicting := make(map[string]bool, len(conflicts))
	for _, f := range conflicts {
		conflicting[f] = true
	}
	rest := []string{}
	for _, f := range files {
		if !conflicting[f] {
			rest = append(rest, f)
		}
	}
	return FilesChanged{
		Conflicting:    append([]string{}, conflicts...),
		NonConflicting: head(rest, maxFiles),
		Truncated:      len(rest) > maxFiles,
	}
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		s = s[:n]
	}
	return append([]T{}, s...)
}

func abbrev(hash string, n int) string {
	if len(hash) > n {
		return hash[:n]
	}
	return hash
}
