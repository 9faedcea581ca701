package main

import (
	"os"

	"github.com/spf13/afero"

	"github.com/nullpointr/corvid/repo"
)

// openRepository opens the repository rooted at the current working
// directory, the only layout this CLI ever operates against.
func openRepository() (*repo.Repo, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return repo.Open(afero.NewOsFs(), cwd)
}
