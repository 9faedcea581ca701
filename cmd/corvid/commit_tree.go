package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"github.com/nullpointr/corvid/ginternals"
	"github.com/nullpointr/corvid/ginternals/config"
	"github.com/nullpointr/corvid/ginternals/object"
)

// timeNow is a seam for tests to pin the commit timestamp; production
// code always leaves it as time.Now.
var timeNow = time.Now

func newCommitTreeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commit-tree <tree>",
		Short: "create a commit object from a tree and an optional parent",
		Args:  cobra.ExactArgs(1),
	}

	parent := cmd.Flags().StringP("p", "p", "", "OID of the parent commit")
	message := cmd.Flags().StringP("m", "m", "", "commit message")
	if err := cmd.MarkFlagRequired("m"); err != nil {
		panic(err)
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return commitTreeCmd(cmd.OutOrStdout(), args[0], *parent, *message)
	}

	return cmd
}

func commitTreeCmd(out io.Writer, treeName, parentName, message string) error {
	treeOid, err := ginternals.NewOidFromStr(treeName)
	if err != nil {
		return xerrors.Errorf("not a valid tree %s: %w", treeName, err)
	}

	var parentOid ginternals.Oid
	if parentName != "" {
		parentOid, err = ginternals.NewOidFromStr(parentName)
		if err != nil {
			return xerrors.Errorf("not a valid parent %s: %w", parentName, err)
		}
	}

	r, err := openRepository()
	if err != nil {
		return err
	}

	identity, err := config.LoadIdentity(filepath.Join(r.GitDir, "config"))
	if err != nil {
		return err
	}
	if identity.IsZero() {
		return xerrors.Errorf("no author identity configured in %s/config: %w", r.GitDir, ginternals.ErrInvalidArgument)
	}

	author := object.Signature{
		Name:  identity.Name,
		Email: identity.Email,
		Time:  timeNow(),
	}

	c := object.NewCommit(treeOid, author, &object.CommitOptions{
		Message:  strings.TrimRight(message, "\n") + "\n",
		ParentID: parentOid,
	})

	oid, err := r.Store.Write(c.ToObject())
	if err != nil {
		return err
	}

	fmt.Fprintln(out, oid)
	return nil
}
