// Package vcs detects the version control system around a directory.
package vcs

import (
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Repository kinds reported by Detect.
const (
	JJ  = "jj"
	Git = "git"
)

// Detect returns JJ when dir sits inside a jj workspace, Git when it sits
// inside a git repository and "" otherwise. jj wins for colocated repos.
func Detect(dir string) string {
	if dir == "" {
		return ""
	}
	if hasJJ(dir) {
		return JJ
	}
	if _, err := open(dir); err == nil {
		return Git
	}
	return ""
}

func hasJJ(dir string) bool {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	for {
		if fi, err := os.Stat(filepath.Join(abs, ".jj")); err == nil && fi.IsDir() {
			return true
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return false
		}
		abs = parent
	}
}

func open(dir string) (*git.Repository, error) {
	return git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
}

// Branch returns the branch HEAD points at, including an unborn branch.
// Detached HEAD or no repository yields "".
func Branch(dir string) string {
	repo, err := open(dir)
	if err != nil {
		return ""
	}
	head, err := repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return ""
	}
	if head.Type() != plumbing.SymbolicReference || !head.Target().IsBranch() {
		return ""
	}
	return head.Target().Short()
}

// Note is the extra reminder shown for a repository kind.
func Note(kind string) string {
	if kind == JJ {
		return "Load git-jj skill when using git/vcs commands."
	}
	return ""
}
