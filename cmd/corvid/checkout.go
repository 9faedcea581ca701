package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"github.com/nullpointr/corvid/ginternals"
)

func newCheckoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkout <commit>",
		Short: "materialize a commit's tree and move master to it",
		Args:  cobra.ExactArgs(1),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return checkoutCmd(cmd.OutOrStdout(), args[0])
	}

	return cmd
}

func checkoutCmd(out io.Writer, commitName string) error {
	oid, err := ginternals.NewOidFromStr(commitName)
	if err != nil {
		return xerrors.Errorf("not a valid commit %s: %w", commitName, err)
	}

	r, err := openRepository()
	if err != nil {
		return err
	}

	if err := r.Checkout(oid); err != nil {
		return err
	}

	fmt.Fprintf(out, "HEAD is now at %s.\n", oid)
	return nil
}
