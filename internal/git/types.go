package git

import "errors"

var (
	ErrEmptyPath   = errors.New("git: path cannot be empty")
	ErrNotGitRepo  = errors.New("git: path is not a git repository")
	ErrNoMergeBase = errors.New("git: no merge base")
)

// Commit is a single entry of a commit range, newest first in any listing.
type Commit struct {
	// Hash is the abbreviated object name (at least 7 hex characters).
	Hash string `json:"hash"`

	// Message is the subject line only; empty when the commit has none.
	Message string `json:"message"`
}
