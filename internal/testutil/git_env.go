package testutil

import (
	"os"
	"testing"
)

// redirectingGitEnv lists variables that make git act on a repository other
// than the one in the working directory, as happens inside a git hook.
var redirectingGitEnv = []string{
	"GIT_DIR",
	"GIT_WORK_TREE",
	"GIT_INDEX_FILE",
	"GIT_COMMON_DIR",
	"GIT_PREFIX",
	"GIT_NAMESPACE",
	"GIT_OBJECT_DIRECTORY",
	"GIT_ALTERNATE_OBJECT_DIRECTORIES",
	"GIT_CEILING_DIRECTORIES",
}

// IsolateGit unsets redirectingGitEnv for the duration of t and puts back
// whatever was set once t finishes.
func IsolateGit(t testing.TB) {
	t.Helper()
	for _, key := range redirectingGitEnv {
		prev, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
		t.Cleanup(func() { _ = os.Setenv(key, prev) })
	}
}
