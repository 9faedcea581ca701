package main

import (
	"fmt"
	"io"
	"io/ioutil"

	"github.com/spf13/cobra"

	"github.com/nullpointr/corvid/ginternals/object"
)

func newHashObjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash-object <file>",
		Short: "compute a blob's object ID, optionally persisting it",
		Args:  cobra.ExactArgs(1),
	}

	write := cmd.Flags().BoolP("w", "w", false, "write the object into the object store")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return hashObjectCmd(cmd.OutOrStdout(), args[0], *write)
	}

	return cmd
}

func hashObjectCmd(out io.Writer, filePath string, write bool) error {
	content, err := ioutil.ReadFile(filePath)
	if err != nil {
		return err
	}

	o := object.New(object.TypeBlob, content)

	if write {
		r, err := openRepository()
		if err != nil {
			return err
		}
		if _, err := r.Store.Write(o); err != nil {
			return err
		}
	}

	fmt.Fprintln(out, o.ID())
	return nil
}
