package train

import "github.com/RevCBH/mergetrain/internal/git"

// MergeHop is one step of a merge train: the commits on FromBranch that
// IntoBranch does not have yet.
type MergeHop struct {
	IntoBranch  string       `json:"into_branch"`
	FromBranch  string       `json:"from_branch"`
	CommitCount int          `json:"commit_count"`
	Commits     []git.Commit `json:"commits"`
}

// MergePlan is a linear chain of hops. Hop 0 starts at SourceBranch and every
// later hop starts at the previous hop's IntoBranch.
type MergePlan struct {
	SourceBranch   string   `json:"source_branch"`
	TargetBranches []string `json:"target_branches"`

	// CurrentBranch is the branch checked out when the plan was made, so the
	// caller can return to it afterwards. Empty on a detached HEAD.
	CurrentBranch string `json:"current_branch"`

	Merges []MergeHop `json:"merges"`
}

// Summary holds the counts reported for every context request.
type Summary struct {
	SourceCommitCount int `json:"source_commit_count"`
	TargetCommitCount int `json:"target_commit_count"`
	SourceFilesCount  int `json:"source_files_count"`
	TargetFilesCount  int `json:"target_files_count"`
	ConflictCount     int `json:"conflict_count"`
}

// FilesChanged splits one side's changed files into the potential conflicts
// and a capped list of the rest.
type FilesChanged struct {
	Conflicting    []string `json:"conflicting"`
	NonConflicting []string `json:"non_conflicting"`

	// Truncated is true when the side has more non-conflicting files than MaxFiles.
	Truncated bool `json:"truncated"`
}

// ContextDetails is only populated when ContextOptions.IncludeDetails is set.
type ContextDetails struct {
	RecentSourceCommits []git.Commit `json:"recent_source_commits"`
	RecentTargetCommits []git.Commit `json:"recent_target_commits"`
	SourceFilesChanged  FilesChanged `json:"source_files_changed"`
	TargetFilesChanged  FilesChanged `json:"target_files_changed"`
}

// MergeContext describes how MergeBranch and IntoBranch diverged.
//
// PotentialConflicts lists files changed on both sides since the merge base.
// It is a risk signal only: listed files may merge cleanly, and conflicts can
// still occur in files it does not list (renames, for instance).
type MergeContext struct {
	IntoBranch    string `json:"into_branch"`
	MergeBranch   string `json:"merge_branch"`
	CurrentBranch string `json:"current_branch"`

	// MergeBase is the abbreviated common ancestor; MergeBaseFull the full hash.
	MergeBase     string `json:"merge_base"`
	MergeBaseFull string `json:"-"`

	Summary            Summary  `json:"summary"`
	PotentialConflicts []string `json:"potential_conflicts"`

	*ContextDetails

	Note string `json:"note,omitempty"`
}

// ContextOptions controls how much of the divergence GatherContext reports.
// Both caps are inclusive upper bounds.
type ContextOptions struct {
	IncludeDetails bool
	MaxCommits     int
	MaxFiles       int
}

const (
	DefaultMaxCommits = 10
	DefaultMaxFiles   = 20
)

// DefaultContextOptions returns summary mode with the default caps.
func DefaultContextOptions() ContextOptions {
	return ContextOptions{
		IncludeDetails: false,
		MaxCommits:     DefaultMaxCommits,
		MaxFiles:       DefaultMaxFiles,
	}
}
