package main

import (
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/nullpointr/corvid/worktree"
)

func newWriteTreeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "write-tree",
		Short: "create a tree object from the current working directory",
		Args:  cobra.NoArgs,
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return writeTreeCmd(cmd.OutOrStdout())
	}

	return cmd
}

func writeTreeCmd(out io.Writer) error {
	r, err := openRepository()
	if err != nil {
		return err
	}

	oid, err := worktree.WriteTree(afero.NewOsFs(), r.Store, r.WorkDir)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, oid)
	return nil
}
