package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"github.com/nullpointr/corvid/ginternals"
	"github.com/nullpointr/corvid/ginternals/object"
)

func newCatFileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cat-file <object>",
		Short: "print content, type, or size information about a repository object",
		Args:  cobra.ExactArgs(1),
	}

	prettyPrint := cmd.Flags().BoolP("p", "p", false, "pretty-print the object's content based on its type")
	typeOnly := cmd.Flags().BoolP("t", "t", false, "print the object's type instead of its content")
	sizeOnly := cmd.Flags().BoolP("s", "s", false, "print the object's size instead of its content")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return catFileCmd(cmd.OutOrStdout(), args[0], *prettyPrint, *typeOnly, *sizeOnly)
	}

	return cmd
}

func catFileCmd(out io.Writer, objectName string, prettyPrint, typeOnly, sizeOnly bool) error {
	if !prettyPrint && !typeOnly && !sizeOnly {
		return xerrors.Errorf("one of -p, -t, or -s is required: %w", ginternals.ErrInvalidArgument)
	}

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

	switch {
	case sizeOnly:
		fmt.Fprintln(out, strconv.Itoa(o.Size()))
	case typeOnly:
		fmt.Fprintln(out, o.Type().String())
	case prettyPrint:
		return prettyPrintObject(out, o)
	}
	return nil
}

func prettyPrintObject(out io.Writer, o *object.Object) error {
	switch o.Type() {
	case object.TypeBlob:
		fmt.Fprint(out, string(o.Bytes()))
	case object.TypeTree:
		tree, err := o.AsTree()
		if err != nil {
			return err
		}
		printTreeEntries(out, tree, false)
	case object.TypeCommit:
		c, err := o.AsCommit()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "tree %s\n", c.TreeID())
		if !c.ParentID().IsZero() {
			fmt.Fprintf(out, "parent %s\n", c.ParentID())
		}
		fmt.Fprintf(out, "author %s\n", c.Author())
		fmt.Fprintf(out, "committer %s\n", c.Committer())
		fmt.Fprintln(out)
		fmt.Fprint(out, c.Message())
	case object.TypeTag:
		tag, err := o.AsTag()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "object %s\n", tag.Target())
		fmt.Fprintf(out, "type %s\n", tag.Type())
		fmt.Fprintf(out, "tag %s\n", tag.Name())
		fmt.Fprintf(out, "tagger %s\n", tag.Tagger())
		fmt.Fprintln(out)
		fmt.Fprint(out, tag.Message())
	}
	return nil
}

// printTreeEntries renders tree entries per the "%06o %s %s\t%s\n"
// format shared by `cat-file -p` and `ls-tree`. nameOnly restricts the
// output to just the entry name, one per line, for `ls-tree --name-only`.
func printTreeEntries(out io.Writer, tree *object.Tree, nameOnly bool) {
	for _, e := range tree.Entries() {
		if nameOnly {
			fmt.Fprintln(out, e.Name)
			continue
		}
		fmt.Fprintf(out, "%06o %s %s\t%s\n", e.Mode, e.Mode.ObjectType(), e.ID, e.Name)
	}
}
