package main

import (
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"github.com/nullpointr/corvid/ginternals"
)

func newLsTreeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls-tree <object>",
		Short: "list the contents of a tree object",
		Args:  cobra.ExactArgs(1),
	}

	nameOnly := cmd.Flags().Bool("name-only", false, "list only filenames instead of the full entry lines")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return lsTreeCmd(cmd.OutOrStdout(), args[0], *nameOnly)
	}

	return cmd
}

func lsTreeCmd(out io.Writer, objectName string, nameOnly bool) error {
	oid, err := ginternals.NewOidFromStr(objectName)
	if err != nil {
		return xerrors.Errorf("not a valid object name %s: %w", objectName, err)
	}

	r, err := openRepository()
	if err != nil {
		return err
	}

	o, err := r.Store.Read(oid)
	if err != nil {
		return err
	}
	tree, err := o.AsTree()
	if err != nil {
		return err
	}

	printTreeEntries(out, tree, nameOnly)
	return nil
}
