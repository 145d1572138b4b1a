package snapshot

import (
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// headHash returns the short HEAD commit hash, or empty when the path is not
// a git repository.
func headHash(repoPath string) string {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return ""
	}
	ref, err := repo.Head()
	if err != nil {
		return ""
	}
	return ref.Hash().String()[:8]
}

// trackedFiles enumerates the files in the HEAD tree. The second return is
// false when the path is not a repository or HEAD cannot be resolved, in
// which case the caller should fall back to a filesystem walk.
func trackedFiles(repoPath string) ([]string, bool) {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return nil, false
	}
	ref, err := repo.Head()
	if err != nil {
		return nil, false
	}
	commit, err := repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, false
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, false
	}

	var files []string
	err = tree.Files().ForEach(func(f *object.File) error {
		files = append(files, f.Name)
		return nil
	})
	if err != nil {
		return nil, false
	}
	return files, true
}
