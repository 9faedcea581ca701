package main

import (
	"io"
	"net/http"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/nullpointr/corvid/repo"
)

func newCloneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clone <url> <dir>",
		Short: "clone a remote repository's master branch into dir",
		Args:  cobra.ExactArgs(2),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return cloneCmd(cmd.OutOrStdout(), args[0], args[1])
	}

	return cmd
}

func cloneCmd(out io.Writer, remoteURL, destDir string) error {
	_, err := repo.Clone(afero.NewOsFs(), http.DefaultClient, remoteURL, destDir, out)
	return err
}
