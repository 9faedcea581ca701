package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/nullpointr/corvid/repo"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "create an empty repository",
		Args:  cobra.NoArgs,
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		return initCmd(cmd.OutOrStdout(), afero.NewOsFs(), cwd)
	}

	return cmd
}

func initCmd(out io.Writer, fs afero.Fs, workDir string) error {
	r, err := repo.Init(fs, workDir)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Initialized empty Git repository in %s.\n", r.GitDir)
	return nil
}
